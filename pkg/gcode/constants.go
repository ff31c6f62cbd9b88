// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package gcode encodes outbound G-code commands and decodes the text
// telemetry that Marlin-style firmware emits over a serial link.
//
// Commands are rendered as "<opcode><code> <p1> <p2> ..." without a line
// terminator; the transport appends the newline. Telemetry lines are matched
// against a small set of patterns and turned into typed events. Lines that
// match nothing are not errors.
package gcode

// Opcodes
const (
	OpcodeG = 'G'
	OpcodeM = 'M'
)

// M-codes used to drive an SD print
const (
	CodeListSDFiles       = 20
	CodeAttachMedia       = 21
	CodeReleaseMedia      = 22
	CodeSelectSDFile      = 23
	CodeStartSDPrint      = 24
	CodePauseSDPrint      = 25
	CodeReportSDStatus    = 27
	CodeReportTemperature = 105
	CodeFirmwareInfo      = 115
	CodeAutoReportTemps   = 155
	CodeBedLeveling       = 420
	CodeAbortSDPrint      = 524
)

// Telemetry markers
const (
	markerPrintFinished = "Done printing file"
	markerFileListBegin = "Begin file list"
	markerFileListEnd   = "End file list"
)
