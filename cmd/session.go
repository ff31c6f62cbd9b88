// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Thermoquad/gnomon/pkg/engine"
	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/history"
)

// session is one open printer connection with its engine
type session struct {
	mu       sync.Mutex
	conn     Connection
	connInfo string

	dialer  *dialer
	engine  *engine.Engine
	history *history.Writer
}

// sessionHooks receive ingestion callbacks; both are optional
type sessionHooks struct {
	onLine  func(ts time.Time, line string)
	onEvent func(ts time.Time, ev gcode.Event)
}

// openSession connects using the resolved configuration. historyPath
// overrides the configured history log when not empty.
func openSession(ctx context.Context, hooks sessionHooks, historyPath string) (*session, error) {
	d := newDialer(cfg.Connection)
	conn, connInfo, err := d.Open(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{conn: conn, connInfo: connInfo, dialer: d}

	if historyPath == "" {
		historyPath = cfg.History.Path
	}
	opts := engine.Options{
		Logger:         logger,
		ReportInterval: cfg.Engine.ReportInterval,
		LongFilenames:  cfg.Engine.LongFilenames,
		OnLine:         hooks.onLine,
		OnEvent:        hooks.onEvent,
	}
	if historyPath != "" {
		w, err := history.OpenFile(historyPath)
		if err != nil {
			conn.Close()
			return nil, err
		}
		s.history = w
		opts.Recorder = w
		logger.Debug("recording print history", slog.String("path", historyPath))
	}

	s.engine = engine.New(engine.NewLineTransport(conn), opts)
	return s, nil
}

// reconnect replaces the connection and reattaches the engine
func (s *session) reconnect(ctx context.Context) error {
	conn, connInfo, err := s.dialer.Open(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.connInfo = connInfo
	s.mu.Unlock()

	s.engine.Attach(engine.NewLineTransport(conn))
	return nil
}

// info describes the current connection
func (s *session) info() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connInfo
}

// closeConn closes the current connection, unblocking a pending read
func (s *session) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

// listTimeout bounds SD listing requests
func listTimeout() time.Duration {
	return time.Duration(cfg.Engine.ListTimeout) * time.Second
}

// Close closes the connection and the history log
func (s *session) Close() {
	s.closeConn()
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			logger.Warn("failed to close history log", slog.Any("error", err))
		}
	}
}
