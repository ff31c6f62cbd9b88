// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"io"
	"sync"
)

// fakeTransport records written lines and serves read lines from a channel.
// Closing lines makes ReadLine return io.EOF.
type fakeTransport struct {
	mu       sync.Mutex
	written  []string
	writeErr error
	onWrite  func(line string)

	lines chan string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{lines: make(chan string, 64)}
}

func (f *fakeTransport) WriteLine(line string) error {
	f.mu.Lock()
	err := f.writeErr
	hook := f.onWrite
	if err == nil {
		f.written = append(f.written, line)
	}
	f.mu.Unlock()

	if err == nil && hook != nil {
		hook(line)
	}
	return err
}

func (f *fakeTransport) ReadLine() (string, error) {
	line, ok := <-f.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (f *fakeTransport) setWriteErr(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

func (f *fakeTransport) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.written))
	copy(out, f.written)
	return out
}
