// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		code   int
		params []string
		want   string
	}{
		{name: "no parameters", opcode: OpcodeM, code: 420, want: "M420"},
		{name: "single parameter", opcode: OpcodeM, code: 23, params: []string{"cube.gco"}, want: "M23 cube.gco"},
		{name: "multiple parameters", opcode: OpcodeG, code: 1, params: []string{"X10", "Y20", "F3000"}, want: "G1 X10 Y20 F3000"},
		{name: "zero code", opcode: OpcodeG, code: 0, want: "G0"},
		{name: "empty slice", opcode: OpcodeM, code: 25, params: []string{}, want: "M25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.opcode, tt.code, tt.params...)
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
			if s := NewCommand(tt.opcode, tt.code, tt.params...).String(); s != tt.want {
				t.Errorf("Command.String() = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestNewCommand_CopiesParameters(t *testing.T) {
	params := []string{"S1"}
	c := NewCommand(OpcodeM, CodeBedLeveling, params...)
	params[0] = "S0"

	if got := c.String(); got != "M420 S1" {
		t.Errorf("String() = %q after caller mutation, want %q", got, "M420 S1")
	}

	p := c.Params()
	p[0] = "Z10"
	if got := c.String(); got != "M420 S1" {
		t.Errorf("String() = %q after Params() mutation, want %q", got, "M420 S1")
	}
}

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		want     string
		wantName string
	}{
		{"pause", NewPauseCommand(), "M25", "PAUSE_SD_PRINT"},
		{"resume", NewResumeCommand(), "M24", "START_SD_PRINT"},
		{"start", NewStartPrintCommand(), "M24", "START_SD_PRINT"},
		{"select file", NewSelectFileCommand("BENCHY.GCO"), "M23 BENCHY.GCO", "SELECT_SD_FILE"},
		{"abort", NewAbortCommand(), "M524", "ABORT_SD_PRINT"},
		{"bed leveling", NewBedLevelingCommand(), "M420", "BED_LEVELING"},
		{"bed leveling with params", NewBedLevelingCommand("S1", "Z10"), "M420 S1 Z10", "BED_LEVELING"},
		{"list files", NewListFilesCommand(false), "M20", "LIST_SD_FILES"},
		{"list long names", NewListFilesCommand(true), "M20 L", "LIST_SD_FILES"},
		{"attach media", NewAttachMediaCommand(), "M21", "ATTACH_MEDIA"},
		{"release media", NewReleaseMediaCommand(), "M22", "RELEASE_MEDIA"},
		{"progress once", NewProgressReportCommand(0), "M27", "REPORT_SD_STATUS"},
		{"progress interval", NewProgressReportCommand(2), "M27 S2", "REPORT_SD_STATUS"},
		{"current file", NewCurrentFileCommand(), "M27 C", "REPORT_SD_STATUS"},
		{"temperatures", NewTemperatureReportCommand(), "M105", "REPORT_TEMPERATURE"},
		{"temperature auto report", NewTemperatureAutoReportCommand(5), "M155 S5", "AUTO_REPORT_TEMPERATURE"},
		{"firmware info", NewFirmwareInfoCommand(), "M115", "FIRMWARE_INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := FormatCommand(tt.cmd); got != tt.wantName {
				t.Errorf("FormatCommand() = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestFormatCommand_Unknown(t *testing.T) {
	if got := FormatCommand(NewCommand(OpcodeG, 28)); got != "UNKNOWN" {
		t.Errorf("FormatCommand(G28) = %q, want UNKNOWN", got)
	}
	if got := FormatCommand(NewCommand(OpcodeM, 999)); got != "UNKNOWN" {
		t.Errorf("FormatCommand(M999) = %q, want UNKNOWN", got)
	}
}

func TestIsRecognizedOpcode(t *testing.T) {
	for _, op := range []byte{'G', 'M'} {
		if !IsRecognizedOpcode(op) {
			t.Errorf("IsRecognizedOpcode(%q) = false, want true", op)
		}
	}
	for _, op := range []byte{'T', 'g', 'X', 0} {
		if IsRecognizedOpcode(op) {
			t.Errorf("IsRecognizedOpcode(%q) = true, want false", op)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "M420 S1", want: "M420 S1"},
		{in: "  g28  ", want: "G28"},
		{in: "M23 cube.gco", want: "M23 cube.gco"},
		{in: "G1 X10   Y20", want: "G1 X10 Y20"},
		{in: "", wantErr: true},
		{in: "T0", wantErr: true},
		{in: "M", wantErr: true},
		{in: "Mabc", wantErr: true},
		{in: "M-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCommand(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.String() != tt.want {
				t.Errorf("ParseCommand(%q) = %q, want %q", tt.in, c, tt.want)
			}
		})
	}
}
