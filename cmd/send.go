// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/gcode"
)

// sendActions maps action names to command builders. Extra arguments are
// passed as parameters where the command takes any.
var sendActions = map[string]func(params []string) (gcode.Command, error){
	"pause":    func(p []string) (gcode.Command, error) { return gcode.NewPauseCommand(p...), nil },
	"resume":   func(p []string) (gcode.Command, error) { return gcode.NewResumeCommand(p...), nil },
	"abort":    func([]string) (gcode.Command, error) { return gcode.NewAbortCommand(), nil },
	"attach":   func(p []string) (gcode.Command, error) { return gcode.NewAttachMediaCommand(p...), nil },
	"release":  func(p []string) (gcode.Command, error) { return gcode.NewReleaseMediaCommand(p...), nil },
	"level":    func(p []string) (gcode.Command, error) { return gcode.NewBedLevelingCommand(p...), nil },
	"progress": func([]string) (gcode.Command, error) { return gcode.NewProgressReportCommand(0), nil },
	"file":     func([]string) (gcode.Command, error) { return gcode.NewCurrentFileCommand(), nil },
	"temps":    func([]string) (gcode.Command, error) { return gcode.NewTemperatureReportCommand(), nil },
	"info":     func([]string) (gcode.Command, error) { return gcode.NewFirmwareInfoCommand(), nil },
	"raw": func(p []string) (gcode.Command, error) {
		return gcode.ParseCommand(strings.Join(p, " "))
	},
}

var sendWait int

var sendCmd = &cobra.Command{
	Use:   "send <action> [params...]",
	Short: "Send a single command to the printer",
	Long: `Send one command and print the printer's replies for --wait seconds.

Actions:
  pause     M25   pause the SD print
  resume    M24   resume the SD print
  abort     M524  abort the SD print
  attach    M21   attach (initialize) the SD card
  release   M22   release the SD card
  level     M420  bed leveling, e.g. "send level S1"
  progress  M27   report SD print progress
  file      M27 C report the current file
  temps     M105  report temperatures
  info      M115  report firmware info
  raw       any G/M command, e.g. "send raw G28 X"

This command does not track print state; use "print" or "control" for that.`,
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: sendActionNames(),
	RunE:      runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&sendWait, "wait", 2, "Seconds to wait for replies")
}

func sendActionNames() []string {
	names := make([]string, 0, len(sendActions))
	for name := range sendActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildSendCommand resolves an action and its parameters to a command
func buildSendCommand(action string, params []string) (gcode.Command, error) {
	build, ok := sendActions[strings.ToLower(action)]
	if !ok {
		return gcode.Command{}, fmt.Errorf("unknown action %q (valid: %s)", action, strings.Join(sendActionNames(), ", "))
	}
	return build(params)
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := buildSendCommand(args[0], args[1:])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(sendWait)*time.Second)
	defer cancel()

	hooks := sessionHooks{
		onLine: func(ts time.Time, line string) {
			fmt.Printf("[%s] %s\n", ts.Format("15:04:05.000"), line)
		},
	}
	s, err := openSession(ctx, hooks, "")
	if err != nil {
		return err
	}
	defer s.Close()

	go func() {
		<-ctx.Done()
		s.closeConn()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- s.engine.Run(ctx) }()

	if err := s.engine.Send(command); err != nil {
		return err
	}
	fmt.Printf("Sent %s (%s)\n", command, gcode.FormatCommand(command))

	if err := <-runErr; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
