// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/gcode"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the printer connection",
	Long: `Send M115 (firmware info) and log every reply for a fixed duration.

Useful for checking that the connection works and the printer answers before
starting a print.

Exit codes:
  0 - Printer answered
  1 - No reply or connection lost
  2 - Connection error`,
	RunE: runProbe,
}

var probeDuration int

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeDuration, "duration", 5, "Test duration in seconds")
}

func runProbe(cmd *cobra.Command, args []string) error {
	var linesReceived atomic.Int64

	hooks := sessionHooks{
		onLine: func(ts time.Time, line string) {
			linesReceived.Add(1)
			fmt.Printf("[%s] %s\n", ts.Format("15:04:05.000"), line)
		},
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(probeDuration)*time.Second)
	defer cancel()

	s, err := openSession(ctx, hooks, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	fmt.Printf("Printer Connection Test\n")
	fmt.Printf("Connection: %s\n", s.info())
	fmt.Printf("Duration: %d seconds\n\n", probeDuration)

	go func() {
		<-ctx.Done()
		s.closeConn()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- s.engine.Run(ctx) }()

	if err := s.engine.Send(gcode.NewFirmwareInfoCommand()); err != nil {
		fmt.Printf("Result: FAILED (%v)\n", err)
		os.Exit(1)
	}

	err = <-runErr
	fmt.Printf("\n--- Test Results ---\n")
	fmt.Print(s.engine.Stats())

	switch {
	case err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled):
		fmt.Printf("Result: FAILED (%v)\n", err)
		os.Exit(1)
	case linesReceived.Load() == 0:
		fmt.Printf("Result: FAILED (no reply)\n")
		os.Exit(1)
	}

	fmt.Printf("Result: PASSED (printer answered)\n")
	return nil
}
