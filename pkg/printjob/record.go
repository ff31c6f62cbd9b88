// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import (
	"time"

	"github.com/google/uuid"
)

// Record summarizes a finished or aborted job for print history
type Record struct {
	JobID         uuid.UUID
	FileName      string
	FileSizeBytes int64
	StartTime     time.Time
	Duration      time.Duration
	FinalState    State
	CurrentBytes  int64
	TotalBytes    int64
}

// Recorder receives a Record whenever a job reaches a terminal state
type Recorder interface {
	Record(Record) error
}

// RecorderFunc adapts a function to the Recorder interface
type RecorderFunc func(Record) error

// Record calls f(r)
func (f RecorderFunc) Record(r Record) error {
	return f(r)
}
