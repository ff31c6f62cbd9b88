// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/gcode"
)

var (
	monitorEventsOnly    bool
	monitorStatsInterval int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display printer output with decoded telemetry",
	Long: `Continuously display every line the printer sends, with a timestamp.

Lines that carry print telemetry (byte progress, time left, current file,
print finished, temperatures) are followed by their decoded form.

Use --events-only to hide lines that decode to nothing. Line statistics are
printed every --stats-interval seconds (0 disables) and on exit.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorEventsOnly, "events-only", false, "Only show decoded telemetry")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 0, "Statistics update interval (seconds)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hooks := sessionHooks{
		onEvent: func(ts time.Time, ev gcode.Event) {
			fmt.Print(gcode.FormatEvent(ts, ev))
		},
	}
	if !monitorEventsOnly {
		hooks.onLine = func(ts time.Time, line string) {
			fmt.Printf("[%s] %s\n", ts.Format("15:04:05.000"), line)
		}
	}

	s, err := openSession(ctx, hooks, "")
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Gnomon - Printer Monitor\n")
	fmt.Printf("Connection: %s\n", s.info())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	go func() {
		<-ctx.Done()
		s.closeConn()
	}()

	if monitorStatsInterval > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					fmt.Printf("\n%s\n", s.engine.Stats())
				}
			}
		}()
	}

	err = s.engine.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("\n%s", s.engine.Stats())
		return nil
	}
	return err
}
