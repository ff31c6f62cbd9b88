// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import "strconv"

// Command builder functions return Commands ready for encoding.
// Each is a fixed opcode/code pair; parameters are supplied by the caller.

// NewSelectFileCommand creates M23, selecting a file on the SD card for printing.
func NewSelectFileCommand(fileName string) Command {
	return NewCommand(OpcodeM, CodeSelectSDFile, fileName)
}

// NewStartPrintCommand creates M24, which starts or resumes the selected SD print.
func NewStartPrintCommand() Command {
	return NewCommand(OpcodeM, CodeStartSDPrint)
}

// NewResumeCommand creates M24. Marlin uses the same code for start and resume.
func NewResumeCommand(params ...string) Command {
	return NewCommand(OpcodeM, CodeStartSDPrint, params...)
}

// NewPauseCommand creates M25 (pause SD print).
func NewPauseCommand(params ...string) Command {
	return NewCommand(OpcodeM, CodePauseSDPrint, params...)
}

// NewAbortCommand creates M524 (abort SD print).
func NewAbortCommand() Command {
	return NewCommand(OpcodeM, CodeAbortSDPrint)
}

// NewBedLevelingCommand creates M420. Typical parameters are "S1" to enable
// leveling or "Z10" to set the fade height.
func NewBedLevelingCommand(params ...string) Command {
	return NewCommand(OpcodeM, CodeBedLeveling, params...)
}

// NewListFilesCommand creates M20. When longNames is true the "L" flag asks
// the firmware to append long file names to each entry.
func NewListFilesCommand(longNames bool) Command {
	if longNames {
		return NewCommand(OpcodeM, CodeListSDFiles, "L")
	}
	return NewCommand(OpcodeM, CodeListSDFiles)
}

// NewAttachMediaCommand creates M21 (init/attach SD card).
func NewAttachMediaCommand(params ...string) Command {
	return NewCommand(OpcodeM, CodeAttachMedia, params...)
}

// NewReleaseMediaCommand creates M22 (release SD card).
func NewReleaseMediaCommand(params ...string) Command {
	return NewCommand(OpcodeM, CodeReleaseMedia, params...)
}

// NewProgressReportCommand creates M27. With intervalSeconds > 0 the firmware
// reports "printing byte" lines periodically; 0 requests a single report.
func NewProgressReportCommand(intervalSeconds int) Command {
	if intervalSeconds > 0 {
		return NewCommand(OpcodeM, CodeReportSDStatus, "S"+strconv.Itoa(intervalSeconds))
	}
	return NewCommand(OpcodeM, CodeReportSDStatus)
}

// NewCurrentFileCommand creates "M27 C", which reports "Current file: <name>".
func NewCurrentFileCommand() Command {
	return NewCommand(OpcodeM, CodeReportSDStatus, "C")
}

// NewTemperatureReportCommand creates M105.
func NewTemperatureReportCommand() Command {
	return NewCommand(OpcodeM, CodeReportTemperature)
}

// NewTemperatureAutoReportCommand creates M155 S<seconds>. Zero disables it.
func NewTemperatureAutoReportCommand(intervalSeconds int) Command {
	return NewCommand(OpcodeM, CodeAutoReportTemps, "S"+strconv.Itoa(intervalSeconds))
}

// NewFirmwareInfoCommand creates M115.
func NewFirmwareInfoCommand() Command {
	return NewCommand(OpcodeM, CodeFirmwareInfo)
}
