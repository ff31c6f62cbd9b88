// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import (
	"testing"
	"time"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		current, total int64
		want           int
		wantOK         bool
	}{
		{0, 0, 0, false},
		{100, 0, 0, false},
		{0, 5000, 0, true},
		{2500, 5000, 50, true},
		{1, 3, 33, true},
		{2, 3, 67, true},
		{4999, 5000, 100, true},
		{6000, 5000, 100, true},
		{-5, 100, 0, true},
	}

	for _, tt := range tests {
		got, ok := Percentage(tt.current, tt.total)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Percentage(%d, %d) = (%d, %v), want (%d, %v)", tt.current, tt.total, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStateString(t *testing.T) {
	names := map[State]string{
		StateIdle:      "IDLE",
		StatePrinting:  "PRINTING",
		StatePaused:    "PAUSED",
		StateCompleted: "COMPLETED",
		StateAborted:   "ABORTED",
		State(42):      "UNKNOWN",
	}
	for s, want := range names {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestStopwatch(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var s Stopwatch

	if got := s.Elapsed(t0); got != 0 {
		t.Errorf("Elapsed() before start = %s, want 0", got)
	}

	s.Start(t0)
	if got := s.Elapsed(t0.Add(time.Minute)); got != time.Minute {
		t.Errorf("Elapsed() running = %s, want 1m0s", got)
	}

	s.Stop(t0.Add(2 * time.Minute))
	s.Stop(t0.Add(5 * time.Minute))
	if got := s.Elapsed(t0.Add(time.Hour)); got != 2*time.Minute {
		t.Errorf("Elapsed() stopped = %s, want 2m0s", got)
	}
	if s.Running() {
		t.Error("Running() = true after Stop")
	}

	s.Start(t0.Add(time.Hour))
	if got := s.Elapsed(t0.Add(time.Hour + time.Second)); got != time.Second {
		t.Errorf("Elapsed() after restart = %s, want 1s", got)
	}
}
