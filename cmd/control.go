// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/engine"
	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/logging"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for running SD prints",
	Long: `Control a printer via an interactive terminal UI.

Features:
  - SD card file list and print start
  - Progress bar, elapsed time and remaining-time estimate
  - Pause, resume and abort (abort asks for confirmation)
  - Temperatures, bed leveling and SD card attach/release
  - Line statistics and event log
  - Automatic reconnection on connection loss; the print job is kept

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	session *session
	p       *tea.Program
	events  chan controlEvent
	ctx     context.Context
}

func runControl(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cm := &connectionManager{
		events: make(chan controlEvent, 100),
		ctx:    ctx,
	}

	hooks := sessionHooks{
		onEvent: func(ts time.Time, ev gcode.Event) {
			select {
			case cm.events <- controlEvent{timestamp: ts, event: ev}:
			default:
			}
		},
	}

	// log output would corrupt the screen
	logger = logging.Discard()

	s, err := openSession(ctx, hooks, "")
	if err != nil {
		return err
	}
	defer s.Close()
	cm.session = s

	m := initialControlModel(cm)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.readerLoop()
	go cm.batchLoop()
	// Send blocks until the program runs
	go cm.sendInitialRequests()

	_, runErr := p.Run()
	cancel()
	s.closeConn()
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

// readerLoop runs the engine's ingestion loop with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		err := cm.session.engine.Run(cm.ctx)
		if cm.ctx.Err() != nil {
			return
		}
		cm.p.Send(connectionLostMsg{err: err})

		if !cm.reconnect() {
			return
		}
	}
}

// batchLoop forwards decoded events to the TUI at a fixed rate
func (cm *connectionManager) batchLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cm.ctx.Done():
			return
		case <-ticker.C:
			var batch controlBatchMsg
		drainLoop:
			for {
				select {
				case ev := <-cm.events:
					batch.events = append(batch.events, ev)
				default:
					break drainLoop
				}
			}
			if len(batch.events) > 0 {
				cm.p.Send(batch)
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() bool {
	cm.session.closeConn()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.ctx.Done():
			return false
		case <-time.After(backoff):
		}

		if err := cm.session.reconnect(cm.ctx); err == nil {
			cm.p.Send(reconnectedMsg{connInfo: cm.session.info()})
			cm.sendInitialRequests()
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// sendInitialRequests asks for the state the TUI shows right away. Failures
// go to the event log.
func (cm *connectionManager) sendInitialRequests() {
	for _, msg := range initialRequests(cm.session.engine, cfg.Engine.TemperatureInterval) {
		cm.p.Send(msg)
	}
}

// initialRequests writes the status requests and returns one result per
// failed request
func initialRequests(e *engine.Engine, temperatureInterval int) []commandResultMsg {
	type request struct {
		action string
		fn     func() error
	}

	var reqs []request
	if temperatureInterval > 0 {
		reqs = append(reqs, request{"Temperature auto-report", func() error {
			return e.AutoReportTemperatures(temperatureInterval)
		}})
	} else {
		reqs = append(reqs, request{"Temperature request", e.RequestTemperatures})
	}
	if e.State().IsActive() {
		reqs = append(reqs,
			request{"Current file request", e.RequestCurrentFile},
			request{"Progress request", e.RequestProgress})
	}

	var failed []commandResultMsg
	for _, r := range reqs {
		if err := r.fn(); err != nil {
			failed = append(failed, commandResultMsg{action: r.action, err: err})
		}
	}
	return failed
}
