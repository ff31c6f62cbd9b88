// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is returned by Run when the transport stops delivering lines
	ErrDisconnected = errors.New("printer disconnected")

	// ErrNotConnected is returned when no transport is attached
	ErrNotConnected = errors.New("no transport attached")

	// ErrListInProgress is returned when ListFiles is called while another listing runs
	ErrListInProgress = errors.New("file listing already in progress")
)

// CommandError reports a command that could not be written to the transport.
// The state transition it would have triggered was not applied.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
