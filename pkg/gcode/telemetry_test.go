// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"strings"
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "byte progress",
			line: "SD printing byte 1000/5000",
			want: ByteProgress{Current: 1000, Total: 5000},
		},
		{
			name: "byte progress unknown total",
			line: "printing byte 12/0",
			want: ByteProgress{Current: 12, Total: 0},
		},
		{
			name: "byte progress with carriage return",
			line: "printing byte 2500/5000\r\n",
			want: ByteProgress{Current: 2500, Total: 5000},
		},
		{
			name: "print finished",
			line: "Done printing file",
			want: PrintFinished{},
		},
		{
			name: "time left hours and minutes",
			line: "echo: M73 Time left: 1h 30m;",
			want: TimeLeft{Remaining: 90 * time.Minute},
		},
		{
			name: "time left all groups",
			line: "echo: M73 Time left: 2h 5m 7s;",
			want: TimeLeft{Remaining: 2*time.Hour + 5*time.Minute + 7*time.Second},
		},
		{
			name: "time left seconds only",
			line: "echo: M73 Time left: 45s;",
			want: TimeLeft{Remaining: 45 * time.Second},
		},
		{
			name: "time left minutes only",
			line: "echo: M73 Time left: 12m;",
			want: TimeLeft{Remaining: 12 * time.Minute},
		},
		{
			name: "time left empty",
			line: "echo: M73 Time left: ;",
			want: TimeLeft{Remaining: 0},
		},
		{
			name: "current file",
			line: "Current file: BENCHY~1.GCO  ",
			want: CurrentFile{Name: "BENCHY~1.GCO"},
		},
		{
			name: "current file with long name",
			line: "Current file: CUBE.GCO cube with spaces.gcode",
			want: CurrentFile{Name: "CUBE.GCO cube with spaces.gcode"},
		},
		{
			name: "temperature hotend and bed",
			line: "ok T:210.5 /215.0 B:60.1 /60.0 @:127 B@:0",
			want: Temperature{Hotend: 210.5, HotendTarget: 215, Bed: 60.1, BedTarget: 60, HasBed: true},
		},
		{
			name: "temperature hotend only",
			line: " T:25.0 /0.0 @:0",
			want: Temperature{Hotend: 25, HotendTarget: 0},
		},
		{name: "ok", line: "ok", want: nil},
		{name: "empty", line: "", want: nil},
		{name: "busy", line: "echo:busy: processing", want: nil},
		{name: "not sd printing", line: "Not SD printing", want: nil},
		{name: "current file empty", line: "Current file: ", want: nil},
		{name: "malformed progress", line: "printing byte abc/def", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseLine_FirstMatchWins(t *testing.T) {
	// A progress report that also carries the finished marker
	got := ParseLine("printing byte 5000/5000 Done printing file")
	want := ByteProgress{Current: 5000, Total: 5000}
	if got != want {
		t.Errorf("ParseLine() = %#v, want %#v", got, want)
	}
}

func TestParseLine_Overflow(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"byte count", "printing byte 99999999999999999999999/1"},
		{"hours", "echo: M73 Time left: 3000000h;"},
		{"hours beyond int64", "echo: M73 Time left: 99999999999999999999h;"},
		{"sum of groups", "echo: M73 Time left: 2562047h 47m 17s;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLine(tt.line); got != nil {
				t.Errorf("ParseLine(%q) = %#v, want nil", tt.line, got)
			}
		})
	}
}

func TestParseLine_LargestTimeLeft(t *testing.T) {
	got := ParseLine("echo: M73 Time left: 2562047h 47m 16s;")
	want := TimeLeft{Remaining: 2562047*time.Hour + 47*time.Minute + 16*time.Second}
	if got != want {
		t.Errorf("ParseLine() = %#v, want %#v", got, want)
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{ByteProgress{}, "BYTE_PROGRESS"},
		{PrintFinished{}, "PRINT_FINISHED"},
		{TimeLeft{}, "TIME_LEFT"},
		{CurrentFile{}, "CURRENT_FILE"},
		{Temperature{}, "TEMPERATURE"},
		{nil, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := EventName(tt.ev); got != tt.want {
			t.Errorf("EventName(%#v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 45, 123000000, time.UTC)

	tests := []struct {
		name     string
		ev       Event
		contains []string
	}{
		{"progress", ByteProgress{Current: 2500, Total: 5000}, []string{"[12:30:45.123] BYTE_PROGRESS", "2500/5000 (50.0%)"}},
		{"progress unknown", ByteProgress{Current: 10}, []string{"10/unknown"}},
		{"time left", TimeLeft{Remaining: 90 * time.Minute}, []string{"TIME_LEFT", "1h30m0s"}},
		{"file", CurrentFile{Name: "a.gcode"}, []string{"File: a.gcode"}},
		{"temperature", Temperature{Hotend: 200, HotendTarget: 210, Bed: 55, BedTarget: 60, HasBed: true}, []string{"Hotend: 200.0°C / 210.0°C", "Bed: 55.0°C / 60.0°C"}},
		{"finished", PrintFinished{}, []string{"PRINT_FINISHED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEvent(ts, tt.ev)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatEvent() = %q, missing %q", got, want)
				}
			}
		})
	}
}
