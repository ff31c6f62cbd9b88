// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Event is a structured telemetry event decoded from one firmware line.
type Event interface {
	eventName() string
}

// ByteProgress reports SD print progress in bytes. Total is zero when the
// firmware does not know the file size.
type ByteProgress struct {
	Current int64
	Total   int64
}

// PrintFinished signals that the firmware finished the SD print.
type PrintFinished struct{}

// TimeLeft is the firmware's own remaining-time estimate (M73).
type TimeLeft struct {
	Remaining time.Duration
}

// CurrentFile names the file the firmware is printing.
type CurrentFile struct {
	Name string
}

// Temperature is a hotend (and optionally bed) temperature report.
type Temperature struct {
	Hotend       float64
	HotendTarget float64
	Bed          float64
	BedTarget    float64
	HasBed       bool
}

func (ByteProgress) eventName() string  { return "BYTE_PROGRESS" }
func (PrintFinished) eventName() string { return "PRINT_FINISHED" }
func (TimeLeft) eventName() string      { return "TIME_LEFT" }
func (CurrentFile) eventName() string   { return "CURRENT_FILE" }
func (Temperature) eventName() string   { return "TEMPERATURE" }

var (
	byteProgressPattern = regexp.MustCompile(`printing byte (\d+)/(\d+)`)
	timeLeftPattern     = regexp.MustCompile(`echo:\s*M73 Time left:\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?\s*;`)
	currentFilePattern  = regexp.MustCompile(`Current file: (.*)`)
	hotendPattern       = regexp.MustCompile(`\bT:\s*(-?\d+(?:\.\d+)?)\s*/\s*(-?\d+(?:\.\d+)?)`)
	bedPattern          = regexp.MustCompile(`\bB:\s*(-?\d+(?:\.\d+)?)\s*/\s*(-?\d+(?:\.\d+)?)`)
)

// ParseLine extracts at most one event from a telemetry line. The first
// matching pattern wins. It returns nil for lines that match nothing.
func ParseLine(line string) Event {
	line = strings.TrimRight(line, "\r\n")

	if m := byteProgressPattern.FindStringSubmatch(line); m != nil {
		current, err1 := strconv.ParseInt(m[1], 10, 64)
		total, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 == nil && err2 == nil {
			return ByteProgress{Current: current, Total: total}
		}
	}

	if strings.Contains(line, markerPrintFinished) {
		return PrintFinished{}
	}

	if m := timeLeftPattern.FindStringSubmatch(line); m != nil {
		if d, ok := durationFromGroups(m[1], m[2], m[3]); ok {
			return TimeLeft{Remaining: d}
		}
	}

	if m := currentFilePattern.FindStringSubmatch(line); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return CurrentFile{Name: name}
		}
	}

	if m := hotendPattern.FindStringSubmatch(line); m != nil {
		t := Temperature{}
		t.Hotend, _ = strconv.ParseFloat(m[1], 64)
		t.HotendTarget, _ = strconv.ParseFloat(m[2], 64)
		if b := bedPattern.FindStringSubmatch(line); b != nil {
			t.Bed, _ = strconv.ParseFloat(b[1], 64)
			t.BedTarget, _ = strconv.ParseFloat(b[2], 64)
			t.HasBed = true
		}
		return t
	}

	return nil
}

// durationFromGroups converts optional hour/minute/second captures; a missing
// group counts as zero. ok is false when the total does not fit in a Duration.
func durationFromGroups(h, m, s string) (d time.Duration, ok bool) {
	for _, part := range []struct {
		value string
		unit  time.Duration
	}{{h, time.Hour}, {m, time.Minute}, {s, time.Second}} {
		if part.value == "" {
			continue
		}
		n, err := strconv.ParseInt(part.value, 10, 64)
		if err != nil || n > math.MaxInt64/int64(part.unit) {
			return 0, false
		}
		add := time.Duration(n) * part.unit
		if d > math.MaxInt64-add {
			return 0, false
		}
		d += add
	}
	return d, true
}

// EventName returns a stable upper-case name for an event, or "UNKNOWN"
func EventName(ev Event) string {
	if ev == nil {
		return "UNKNOWN"
	}
	return ev.eventName()
}
