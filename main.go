// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Gnomon - G-code printer SD print controller
//
// A CLI tool for starting, following and controlling SD card prints on
// Marlin-style 3D printers over serial or WebSocket.

package main

import (
	"os"

	"github.com/Thermoquad/gnomon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
