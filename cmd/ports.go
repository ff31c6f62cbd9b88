// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsUSBOnly bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports a printer may be attached to",
	Long: `Enumerate the serial ports on this machine.

USB ports show their vendor/product IDs, which identify most printer boards
(for example 2341 for Arduino-based boards, 0483 for STM32 boards).

Examples:
  gnomon ports --usb
  gnomon --port /dev/ttyACM0 probe

Exit codes:
  0 - At least one port found
  1 - No ports found`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().BoolVar(&portsUSBOnly, "usb", false, "Only show USB ports")
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	rows := portRows(ports, portsUSBOnly)
	if len(rows) == 0 {
		fmt.Printf("No serial ports found\n")
		os.Exit(1)
	}

	fmt.Println(renderTable([]string{"Port", "USB", "VID:PID", "Serial", "Product"}, rows, nil))
	return nil
}

func portRows(ports []*enumerator.PortDetails, usbOnly bool) [][]string {
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		if usbOnly && !p.IsUSB {
			continue
		}
		usb, ids := "no", ""
		if p.IsUSB {
			usb = "yes"
			ids = p.VID + ":" + p.PID
		}
		rows = append(rows, []string{p.Name, usb, ids, p.SerialNumber, p.Product})
	}
	return rows
}
