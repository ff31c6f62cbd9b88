// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/engine"
	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/printjob"
)

var (
	printInterval         int
	printHistoryLog       string
	printAbortOnInterrupt bool
	printShowEvents       bool
)

var printCmd = &cobra.Command{
	Use:   "print <file>",
	Short: "Start an SD print and follow it to the end",
	Long: `Select a file on the SD card, start printing it and show progress until
the print completes or is aborted.

The file size is looked up from the SD listing first so progress can be shown
before the firmware's first status report. Progress lines are printed every
--interval seconds.

Ctrl+C detaches and leaves the printer running, unless --abort-on-interrupt
is given, in which case the print is aborted (M524) first.

When --history-log (or history.path in the config file) is set, finished
and aborted jobs are appended to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().IntVar(&printInterval, "interval", 5, "Progress display interval (seconds)")
	printCmd.Flags().StringVar(&printHistoryLog, "history-log", "", "Append finished jobs to this CBOR file")
	printCmd.Flags().BoolVar(&printAbortOnInterrupt, "abort-on-interrupt", false, "Abort the print on Ctrl+C")
	printCmd.Flags().BoolVar(&printShowEvents, "events", false, "Print decoded telemetry as it arrives")
}

func runPrint(cmd *cobra.Command, args []string) error {
	fileName := args[0]
	if printInterval <= 0 {
		return errors.New("--interval must be positive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hooks sessionHooks
	if printShowEvents {
		hooks.onEvent = func(ts time.Time, ev gcode.Event) {
			fmt.Print(gcode.FormatEvent(ts, ev))
		}
	}

	s, err := openSession(ctx, hooks, printHistoryLog)
	if err != nil {
		return err
	}
	defer s.Close()

	// the ingestion loop outlives ctx so an abort can still be confirmed
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	runErr := make(chan error, 1)
	go func() { runErr <- s.engine.Run(runCtx) }()

	fmt.Printf("Gnomon - SD Print\n")
	fmt.Printf("Connection: %s\n", s.info())

	lookupFileSize(ctx, s.engine, fileName)

	if err := s.engine.StartPrint(fileName); err != nil {
		return err
	}
	if cfg.Engine.TemperatureInterval > 0 {
		if err := s.engine.AutoReportTemperatures(cfg.Engine.TemperatureInterval); err != nil {
			logger.Warn("failed to enable temperature reports", slog.Any("error", err))
		}
	}
	fmt.Printf("Printing %s (Ctrl+C to %s)\n\n", fileName, interruptAction())

	ticker := time.NewTicker(time.Duration(printInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cfg.Engine.ReportInterval == 0 {
				if err := s.engine.RequestProgress(); err != nil {
					logger.Warn("progress request failed", slog.Any("error", err))
				}
			}
			snap := s.engine.Snapshot()
			fmt.Println(progressLine(snap, s.engine))
			if snap.State.IsTerminal() {
				fmt.Println()
				fmt.Println(renderJobSummary(snap))
				return nil
			}

		case err := <-runErr:
			snap := s.engine.Snapshot()
			fmt.Println(renderJobSummary(snap))
			if snap.State.IsTerminal() {
				return nil
			}
			return fmt.Errorf("print %s still %s: %w", snap.FileName, snap.State, err)

		case <-ctx.Done():
			fmt.Println()
			if !printAbortOnInterrupt {
				fmt.Printf("Detached; the printer keeps printing %s\n", fileName)
				return nil
			}
			if err := s.engine.Stop(); err != nil {
				return err
			}
			fmt.Println(renderJobSummary(s.engine.Snapshot()))
			return nil
		}
	}
}

// lookupFileSize lists the SD card so StartPrint can fill in the file size.
// Failure only costs the early percentage.
func lookupFileSize(ctx context.Context, e *engine.Engine, fileName string) {
	listCtx, cancel := context.WithTimeout(ctx, listTimeout())
	defer cancel()

	files, err := e.ListFiles(listCtx)
	if err != nil {
		logger.Warn("SD listing failed; file size unknown until first report",
			slog.String("file", fileName),
			slog.Any("error", err))
		return
	}
	logger.Debug("SD listing", slog.Int("files", len(files)))
}

func interruptAction() string {
	if printAbortOnInterrupt {
		return "abort"
	}
	return "detach"
}

// progressLine renders one status line for a job
func progressLine(j printjob.Job, e *engine.Engine) string {
	eta, ok := e.EstimatedTimeRemaining()
	line := fmt.Sprintf("[%s] %-9s %s  elapsed %s  eta %s",
		time.Now().Format("15:04:05"),
		j.State,
		formatProgress(j),
		formatClock(j.TotalPrintDuration),
		formatETA(eta, ok))

	if temps := e.Temperatures(); len(temps) > 0 {
		t := temps[len(temps)-1]
		line += fmt.Sprintf("  T %.0f/%.0f", t.Hotend, t.HotendTarget)
		if t.HasBed {
			line += fmt.Sprintf("  B %.0f/%.0f", t.Bed, t.BedTarget)
		}
	}
	return line
}
