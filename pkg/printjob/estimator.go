// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import (
	"math"
	"time"
)

// EstimateRemaining returns the remaining print time for a job snapshot.
//
// A firmware time-left report wins when it is newer than the newest progress
// record. Otherwise throughput is measured across the retained history and
// applied to the bytes still to print. The second result is false when no
// estimate is possible: no history, unknown total, flat byte counts, or a
// throughput so low the remaining time does not fit in a Duration.
func EstimateRemaining(j Job) (time.Duration, bool) {
	var newest time.Time
	if n := len(j.History); n > 0 {
		newest = j.History[n-1].Timestamp
	}

	if j.HasTimeLeft() && (len(j.History) == 0 || j.TimeLeftAt.After(newest)) {
		return j.TimeLeft, true
	}

	if len(j.History) < 2 || j.TotalBytes <= 0 {
		return 0, false
	}

	first := j.History[0]
	last := j.History[len(j.History)-1]

	elapsed := last.Timestamp.Sub(first.Timestamp)
	printed := last.BytesPrinted - first.BytesPrinted
	if elapsed <= 0 || printed <= 0 {
		return 0, false
	}

	remaining := j.TotalBytes - j.CurrentBytes
	if remaining <= 0 {
		return 0, true
	}

	bytesPerSecond := float64(printed) / elapsed.Seconds()
	seconds := float64(remaining) / bytesPerSecond
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second), true
}
