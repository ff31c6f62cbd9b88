// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"fmt"
	"time"
)

// Statistics tracks line and command counters for one engine
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalLines      uint64
	EventLines      uint64
	IgnoredLines    uint64
	ListingLines    uint64
	CommandsSent    uint64
	CommandFailures uint64

	// Rates (calculated)
	LineRate  float64 // lines/sec
	EventRate float64 // events/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics(now time.Time) Statistics {
	return Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// CalculateRates calculates line and event rates
func (s *Statistics) CalculateRates(now time.Time) {
	elapsed := now.Sub(s.StartTime).Seconds()
	if elapsed > 0 {
		s.LineRate = float64(s.TotalLines) / elapsed
		s.EventRate = float64(s.EventLines) / elapsed
	}
}

// String returns a formatted statistics summary
func (s Statistics) String() string {
	var eventPercent, ignoredPercent float64
	if s.TotalLines > 0 {
		eventPercent = float64(s.EventLines) * 100.0 / float64(s.TotalLines)
		ignoredPercent = float64(s.IgnoredLines) * 100.0 / float64(s.TotalLines)
	}

	elapsed := s.LastUpdateTime.Sub(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Lines:     %8d\n", s.TotalLines)
	result += fmt.Sprintf("Event Lines:     %8d (%.1f%%)\n", s.EventLines, eventPercent)
	result += fmt.Sprintf("Ignored Lines:   %8d (%.1f%%)\n", s.IgnoredLines, ignoredPercent)

	if s.ListingLines > 0 {
		result += fmt.Sprintf("Listing Lines:   %8d\n", s.ListingLines)
	}

	result += fmt.Sprintf("Commands Sent:   %8d\n", s.CommandsSent)
	if s.CommandFailures > 0 {
		result += fmt.Sprintf("Command Errors:  %8d\n", s.CommandFailures)
	}

	result += fmt.Sprintf("Line Rate:       %8.1f lines/sec\n", s.LineRate)
	result += fmt.Sprintf("Event Rate:      %8.1f events/sec\n", s.EventRate)
	result += "================================\n"

	return result
}
