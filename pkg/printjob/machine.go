// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package printjob

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/ring"
	"github.com/google/uuid"
)

// Options configures a Machine. All fields are optional.
type Options struct {
	Clock    func() time.Time
	NewID    func() uuid.UUID
	Recorder Recorder
	Logger   *slog.Logger
}

// Transition describes the outcome of a trigger or event
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	Applied bool // false for ignored triggers
}

// Changed reports whether the state moved
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine owns the current job and applies commands and telemetry to it.
// Every transition runs under one lock, so commands and telemetry never
// interleave; Snapshot returns a copy.
type Machine struct {
	mu       sync.RWMutex
	now      func() time.Time
	newID    func() uuid.UUID
	recorder Recorder
	logger   *slog.Logger

	state   State
	timer   Stopwatch
	job     jobState
	history *ring.Buffer[ProgressRecord]
}

type jobState struct {
	id         uuid.UUID
	fileName   string
	fileSize   int64
	current    int64
	total      int64
	start      time.Time
	duration   time.Duration
	timeLeft   time.Duration
	timeLeftAt time.Time
}

// NewMachine creates a machine in the Idle state
func NewMachine(opts Options) *Machine {
	m := &Machine{
		now:      opts.Clock,
		newID:    opts.NewID,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		state:    StateIdle,
		history:  ring.New[ProgressRecord](HistoryCapacity),
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.New
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Start begins a new job. send is called under the machine lock once the
// transition is known to be valid; if it fails the state is unchanged.
// Starting while a job is printing or paused returns ErrInvalidTransition:
// a paused job still owns the printer and can be resumed, so a new start
// must not replace it silently.
func (m *Machine) Start(fileName string, fileSize int64, send func() error) (Transition, error) {
	return m.fire(TriggerStart, send, func(now time.Time) {
		m.job = jobState{
			id:       m.newID(),
			fileName: fileName,
			fileSize: fileSize,
			start:    now,
		}
		m.history.Reset()
		m.timer.Start(now)
	})
}

// Pause moves Printing to Paused. In any other state it is a no-op and
// send is not called.
func (m *Machine) Pause(send func() error) (Transition, error) {
	return m.fire(TriggerPause, send, nil)
}

// Resume moves Paused to Printing without restarting the elapsed timer.
func (m *Machine) Resume(send func() error) (Transition, error) {
	return m.fire(TriggerResume, send, nil)
}

// Stop aborts a printing or paused job. It is a no-op otherwise, so a
// repeated Stop is harmless.
func (m *Machine) Stop(send func() error) (Transition, error) {
	return m.fire(TriggerStop, send, nil)
}

// Reset returns a terminal job to Idle
func (m *Machine) Reset() Transition {
	t, _ := m.fire(TriggerReset, nil, nil)
	return t
}

func (m *Machine) fire(trigger Trigger, send func() error, effect func(now time.Time)) (Transition, error) {
	m.mu.Lock()

	from := m.state
	t := Transition{From: from, To: from, Trigger: trigger}

	to, ok := next(from, trigger)
	if !ok {
		m.mu.Unlock()
		if trigger == TriggerStart && from.IsActive() {
			return t, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, trigger, from)
		}
		return t, nil
	}

	if send != nil {
		if err := send(); err != nil {
			m.mu.Unlock()
			return t, err
		}
	}

	now := m.now()
	if effect != nil {
		effect(now)
	}
	rec := m.enterLocked(to, now)
	t.To = to
	t.Applied = true
	m.mu.Unlock()

	m.logTransition(t)
	m.emit(rec)
	return t, nil
}

// Apply feeds one telemetry event to the machine
func (m *Machine) Apply(ev gcode.Event) Transition {
	m.mu.Lock()

	from := m.state
	t := Transition{From: from, To: from}
	var rec *Record
	now := m.now()

	switch e := ev.(type) {
	case gcode.ByteProgress:
		t.Trigger = TriggerProgress
		if from != StatePrinting {
			break
		}
		current := e.Current
		if current < m.job.current {
			m.logger.Debug("ignoring byte progress regression",
				slog.Int64("current", m.job.current),
				slog.Int64("reported", current))
			break
		}
		if e.Total > 0 && current > e.Total {
			current = e.Total
		}
		m.history.Push(ProgressRecord{BytesPrinted: current, Timestamp: now})
		m.job.current = current
		m.job.total = e.Total
		if e.Total > 0 {
			m.job.fileSize = e.Total
		}
		t.Applied = true
		if pct, ok := Percentage(current, e.Total); ok && pct == 100 {
			rec = m.enterLocked(StateCompleted, now)
			t.To = StateCompleted
		}

	case gcode.PrintFinished:
		t.Trigger = TriggerFinished
		if to, ok := next(from, TriggerFinished); ok {
			rec = m.enterLocked(to, now)
			t.To = to
			t.Applied = true
		}

	case gcode.TimeLeft:
		t.Trigger = TriggerProgress
		if from.IsActive() {
			m.job.timeLeft = e.Remaining
			m.job.timeLeftAt = now
			t.Applied = true
		}

	case gcode.CurrentFile:
		t.Trigger = TriggerProgress
		if from.IsActive() {
			m.job.fileName = e.Name
			t.Applied = true
		}
	}

	m.mu.Unlock()

	if t.Changed() {
		m.logTransition(t)
	}
	m.emit(rec)
	return t
}

// enterLocked sets the new state and finalizes the job on terminal entry.
// It returns the history record to emit, if any.
func (m *Machine) enterLocked(to State, now time.Time) *Record {
	from := m.state
	m.state = to
	if !to.IsTerminal() || from.IsTerminal() {
		return nil
	}

	m.timer.Stop(now)
	m.job.duration = m.timer.Elapsed(now)
	return &Record{
		JobID:         m.job.id,
		FileName:      m.job.fileName,
		FileSizeBytes: m.job.fileSize,
		StartTime:     m.job.start,
		Duration:      m.job.duration,
		FinalState:    to,
		CurrentBytes:  m.job.current,
		TotalBytes:    m.job.total,
	}
}

func (m *Machine) logTransition(t Transition) {
	m.logger.Info("print state changed",
		slog.String("from", t.From.String()),
		slog.String("to", t.To.String()),
		slog.String("trigger", t.Trigger.String()))
}

func (m *Machine) emit(rec *Record) {
	if rec == nil || m.recorder == nil {
		return
	}
	if err := m.recorder.Record(*rec); err != nil {
		m.logger.Warn("failed to record print history",
			slog.String("file", rec.FileName),
			slog.Any("error", err))
	}
}

// Snapshot returns a consistent copy of the current job
func (m *Machine) Snapshot() Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	duration := m.job.duration
	if m.timer.Running() {
		duration = m.timer.Elapsed(m.now())
	}

	return Job{
		ID:                 m.job.id,
		FileName:           m.job.fileName,
		FileSizeBytes:      m.job.fileSize,
		CurrentBytes:       m.job.current,
		TotalBytes:         m.job.total,
		StartTime:          m.job.start,
		TotalPrintDuration: duration,
		History:            m.history.Items(),
		State:              m.state,
		TimeLeft:           m.job.timeLeft,
		TimeLeftAt:         m.job.timeLeftAt,
	}
}

// EstimatedTimeRemaining estimates the remaining time of the current job
func (m *Machine) EstimatedTimeRemaining() (time.Duration, bool) {
	return EstimateRemaining(m.Snapshot())
}
