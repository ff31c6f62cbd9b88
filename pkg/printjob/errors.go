// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import "errors"

// ErrInvalidTransition is returned when a command is rejected in the
// current state, such as starting a print while another one is active.
var ErrInvalidTransition = errors.New("invalid transition")
