// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// HistoryCapacity is the number of progress records retained per job
const HistoryCapacity = 100

// ProgressRecord is one byte-progress sample
type ProgressRecord struct {
	BytesPrinted int64
	Timestamp    time.Time
}

// Job is an immutable snapshot of the current print job. Slices are copies
// and may be retained by the caller.
type Job struct {
	ID                 uuid.UUID
	FileName           string
	FileSizeBytes      int64
	CurrentBytes       int64
	TotalBytes         int64
	StartTime          time.Time
	TotalPrintDuration time.Duration
	History            []ProgressRecord
	State              State

	// Firmware-reported remaining time; TimeLeftAt is zero when none was seen
	TimeLeft   time.Duration
	TimeLeftAt time.Time
}

// Percentage returns the rounded completion percentage, or false when the
// total size is unknown
func (j Job) Percentage() (int, bool) {
	return Percentage(j.CurrentBytes, j.TotalBytes)
}

// HasTimeLeft reports whether the firmware reported a remaining time for this job
func (j Job) HasTimeLeft() bool {
	return !j.TimeLeftAt.IsZero()
}

// Percentage computes round(100*current/total) clamped to [0, 100].
// It returns false when total is zero.
func Percentage(current, total int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	pct := math.Round(100 * float64(current) / float64(total))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(pct), true
}
