// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package printjob tracks the lifecycle of a single SD print: its state
// machine, byte-progress history, elapsed time and remaining-time estimate.
package printjob

// State is the print job state
type State int

// Print states
const (
	StateIdle State = iota
	StatePrinting
	StatePaused
	StateCompleted
	StateAborted
)

// String returns the upper-case state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePrinting:
		return "PRINTING"
	case StatePaused:
		return "PAUSED"
	case StateCompleted:
		return "COMPLETED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the state only leaves via StartPrint or Reset
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateAborted
}

// IsActive reports whether a print is running or paused
func (s State) IsActive() bool {
	return s == StatePrinting || s == StatePaused
}

// Trigger is a command or telemetry signal that may move the state machine
type Trigger int

// Triggers
const (
	TriggerStart Trigger = iota
	TriggerPause
	TriggerResume
	TriggerStop
	TriggerReset
	TriggerFinished
	TriggerProgress
)

// String returns the upper-case trigger name
func (t Trigger) String() string {
	switch t {
	case TriggerStart:
		return "START_PRINT"
	case TriggerPause:
		return "PAUSE"
	case TriggerResume:
		return "RESUME"
	case TriggerStop:
		return "STOP"
	case TriggerReset:
		return "RESET"
	case TriggerFinished:
		return "PRINT_FINISHED"
	case TriggerProgress:
		return "BYTE_PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// transitions is the complete transition table. Pairs missing from it are
// no-ops, except TriggerStart on an active job which is rejected.
var transitions = map[State]map[Trigger]State{
	StateIdle: {
		TriggerStart: StatePrinting,
	},
	StatePrinting: {
		TriggerPause:    StatePaused,
		TriggerStop:     StateAborted,
		TriggerProgress: StatePrinting,
		TriggerFinished: StateCompleted,
	},
	StatePaused: {
		TriggerResume: StatePrinting,
		TriggerStop:   StateAborted,
	},
	StateCompleted: {
		TriggerStart: StatePrinting,
		TriggerReset: StateIdle,
	},
	StateAborted: {
		TriggerStart: StatePrinting,
		TriggerReset: StateIdle,
	},
}

// next looks up the destination state for a trigger
func next(from State, t Trigger) (State, bool) {
	to, ok := transitions[from][t]
	return to, ok
}
