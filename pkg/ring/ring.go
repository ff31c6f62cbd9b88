// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ring provides a fixed-capacity FIFO buffer. When full, pushing a
// new item evicts the oldest one.
package ring

// Buffer is a bounded FIFO. The zero value is unusable; use New.
// It is not safe for concurrent use.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest item
	count int
}

// New creates a buffer holding at most capacity items
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends an item, evicting the oldest when the buffer is full.
// It returns true if an item was evicted.
func (b *Buffer[T]) Push(v T) bool {
	if b.count < len(b.items) {
		b.items[(b.head+b.count)%len(b.items)] = v
		b.count++
		return false
	}
	b.items[b.head] = v
	b.head = (b.head + 1) % len(b.items)
	return true
}

// Len returns the number of stored items
func (b *Buffer[T]) Len() int {
	return b.count
}

// Cap returns the buffer capacity
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Oldest returns the first item in FIFO order
func (b *Buffer[T]) Oldest() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	return b.items[b.head], true
}

// Newest returns the most recently pushed item
func (b *Buffer[T]) Newest() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	return b.items[(b.head+b.count-1)%len(b.items)], true
}

// Items returns a copy of the stored items, oldest first
func (b *Buffer[T]) Items() []T {
	out := make([]T, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Reset removes all items
func (b *Buffer[T]) Reset() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.count = 0
}
