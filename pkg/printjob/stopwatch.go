// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import "time"

// Stopwatch is a start/stop elapsed-time timer. Times are passed in so the
// owner controls the clock.
type Stopwatch struct {
	start   time.Time
	stop    time.Time
	running bool
}

// Start resets the stopwatch and starts it at now
func (s *Stopwatch) Start(now time.Time) {
	s.start = now
	s.stop = time.Time{}
	s.running = true
}

// Stop freezes the elapsed time. Stopping a stopped watch does nothing.
func (s *Stopwatch) Stop(now time.Time) {
	if !s.running {
		return
	}
	s.stop = now
	s.running = false
}

// Running reports whether the stopwatch is counting
func (s *Stopwatch) Running() bool {
	return s.running
}

// Elapsed returns the time counted so far
func (s *Stopwatch) Elapsed(now time.Time) time.Duration {
	if s.start.IsZero() {
		return 0
	}
	end := s.stop
	if s.running {
		end = now
	}
	if end.Before(s.start) {
		return 0
	}
	return end.Sub(s.start)
}
