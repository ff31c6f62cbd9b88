// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"fmt"
	"time"
)

// FormatEvent formats a decoded event into a human-readable string
func FormatEvent(ts time.Time, ev Event) string {
	timestamp := ts.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s\n", timestamp, EventName(ev))

	switch e := ev.(type) {
	case ByteProgress:
		if e.Total > 0 {
			result += fmt.Sprintf("  Bytes: %d/%d (%.1f%%)\n", e.Current, e.Total, float64(e.Current)*100/float64(e.Total))
		} else {
			result += fmt.Sprintf("  Bytes: %d/unknown\n", e.Current)
		}
	case TimeLeft:
		result += fmt.Sprintf("  Remaining: %s\n", e.Remaining)
	case CurrentFile:
		result += fmt.Sprintf("  File: %s\n", e.Name)
	case Temperature:
		result += fmt.Sprintf("  Hotend: %.1f°C / %.1f°C\n", e.Hotend, e.HotendTarget)
		if e.HasBed {
			result += fmt.Sprintf("  Bed: %.1f°C / %.1f°C\n", e.Bed, e.BedTarget)
		}
	}

	return result
}

// FormatCommand returns the human-readable name for a known command code
func FormatCommand(c Command) string {
	if c.Opcode() != OpcodeM {
		return "UNKNOWN"
	}
	switch c.Code() {
	case CodeListSDFiles:
		return "LIST_SD_FILES"
	case CodeAttachMedia:
		return "ATTACH_MEDIA"
	case CodeReleaseMedia:
		return "RELEASE_MEDIA"
	case CodeSelectSDFile:
		return "SELECT_SD_FILE"
	case CodeStartSDPrint:
		return "START_SD_PRINT"
	case CodePauseSDPrint:
		return "PAUSE_SD_PRINT"
	case CodeReportSDStatus:
		return "REPORT_SD_STATUS"
	case CodeReportTemperature:
		return "REPORT_TEMPERATURE"
	case CodeFirmwareInfo:
		return "FIRMWARE_INFO"
	case CodeAutoReportTemps:
		return "AUTO_REPORT_TEMPERATURE"
	case CodeBedLeveling:
		return "BED_LEVELING"
	case CodeAbortSDPrint:
		return "ABORT_SD_PRINT"
	default:
		return "UNKNOWN"
	}
}
