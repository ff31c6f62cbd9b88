// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package engine drives one printer connection: it turns caller intents into
// G-code commands, feeds firmware telemetry into the print job state machine
// and exposes read-only snapshots for user interfaces.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/printjob"
	"github.com/Thermoquad/gnomon/pkg/ring"
)

// TemperatureHistoryCapacity bounds the retained temperature samples
const TemperatureHistoryCapacity = 100

// Options configures an Engine. All fields are optional.
type Options struct {
	Logger   *slog.Logger
	Recorder printjob.Recorder
	Clock    func() time.Time

	// ReportInterval enables periodic "printing byte" reports (M27 S<n>)
	// after a print starts. Zero leaves reporting to the firmware default.
	ReportInterval int

	// LongFilenames requests long names when listing the SD card (M20 L)
	LongFilenames bool

	// OnLine is called from the ingestion loop for every received line,
	// before it is parsed
	OnLine func(ts time.Time, line string)

	// OnEvent is called from the ingestion loop for every decoded event
	OnEvent func(ts time.Time, ev gcode.Event)
}

// TemperatureSample is a temperature report with its arrival time
type TemperatureSample struct {
	Time time.Time
	gcode.Temperature
}

// Engine owns the print job for a single connection
type Engine struct {
	machine *printjob.Machine
	logger  *slog.Logger
	now     func() time.Time
	opts    Options

	// writeMu serializes writes and guards transport
	writeMu   sync.Mutex
	transport Transport

	// mu guards the fields below
	mu            sync.Mutex
	temps         *ring.Buffer[TemperatureSample]
	files         []gcode.FileEntry
	listing       *gcode.FileListParser
	listDone      chan struct{}
	mediaAttached bool
	stats         Statistics
}

// New creates an engine writing to and reading from t. t may be nil and
// attached later with Attach.
func New(t Transport, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Engine{
		machine: printjob.NewMachine(printjob.Options{
			Clock:    now,
			Recorder: opts.Recorder,
			Logger:   logger,
		}),
		logger:        logger,
		now:           now,
		opts:          opts,
		transport:     t,
		temps:         ring.New[TemperatureSample](TemperatureHistoryCapacity),
		mediaAttached: true,
		stats:         NewStatistics(now()),
	}
}

// Attach replaces the transport, typically after the connection layer
// reconnected. The current job is kept.
func (e *Engine) Attach(t Transport) {
	e.writeMu.Lock()
	e.transport = t
	e.writeMu.Unlock()
}

func (e *Engine) currentTransport() Transport {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.transport
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// Send writes a raw command. It does not touch the job state.
func (e *Engine) Send(cmd gcode.Command) error {
	line := cmd.String()

	e.writeMu.Lock()
	err := ErrNotConnected
	if e.transport != nil {
		err = e.transport.WriteLine(line)
	}
	e.writeMu.Unlock()

	e.mu.Lock()
	if err != nil {
		e.stats.CommandFailures++
	} else {
		e.stats.CommandsSent++
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("command write failed",
			slog.String("command", line),
			slog.Any("error", err))
		return &CommandError{Command: line, Err: err}
	}

	e.logger.Debug("command sent",
		slog.String("command", line),
		slog.String("name", gcode.FormatCommand(cmd)))
	return nil
}

// StartPrint selects fileName on the SD card and starts printing it.
// It is rejected with printjob.ErrInvalidTransition while a job is active,
// and returns a *CommandError if the commands could not be written.
func (e *Engine) StartPrint(fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return fmt.Errorf("start print: empty file name")
	}

	size := e.lookupFileSize(fileName)
	_, err := e.machine.Start(fileName, size, func() error {
		if err := e.Send(gcode.NewSelectFileCommand(fileName)); err != nil {
			return err
		}
		return e.Send(gcode.NewStartPrintCommand())
	})
	if err != nil {
		return fmt.Errorf("start print %s: %w", fileName, err)
	}

	if e.opts.ReportInterval > 0 {
		if err := e.Send(gcode.NewProgressReportCommand(e.opts.ReportInterval)); err != nil {
			e.logger.Warn("failed to enable progress reports", slog.Any("error", err))
		}
	}
	return nil
}

// Pause pauses the active print. It is a no-op unless printing.
func (e *Engine) Pause() error {
	if _, err := e.machine.Pause(func() error { return e.Send(gcode.NewPauseCommand()) }); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

// Resume resumes a paused print. It is a no-op unless paused.
func (e *Engine) Resume() error {
	if _, err := e.machine.Resume(func() error { return e.Send(gcode.NewResumeCommand()) }); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	return nil
}

// Stop aborts the active print. Confirmation is the caller's job.
// Stopping an already stopped job does nothing.
func (e *Engine) Stop() error {
	if _, err := e.machine.Stop(func() error { return e.Send(gcode.NewAbortCommand()) }); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Reset returns a completed or aborted job to Idle
func (e *Engine) Reset() {
	e.machine.Reset()
}

// BedLevel sends M420 with the given parameters
func (e *Engine) BedLevel(params ...string) error {
	return e.Send(gcode.NewBedLevelingCommand(params...))
}

// AttachMedia initializes the SD card (M21)
func (e *Engine) AttachMedia() error {
	if err := e.Send(gcode.NewAttachMediaCommand()); err != nil {
		return err
	}
	e.mu.Lock()
	e.mediaAttached = true
	e.mu.Unlock()
	return nil
}

// ReleaseMedia releases the SD card (M22) so it can be removed safely
func (e *Engine) ReleaseMedia() error {
	if err := e.Send(gcode.NewReleaseMediaCommand()); err != nil {
		return err
	}
	e.mu.Lock()
	e.mediaAttached = false
	e.mu.Unlock()
	return nil
}

// MediaAttached reports the media state set by the last attach or release
func (e *Engine) MediaAttached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mediaAttached
}

// RequestProgress asks for a single "printing byte" report (M27)
func (e *Engine) RequestProgress() error {
	return e.Send(gcode.NewProgressReportCommand(0))
}

// RequestCurrentFile asks for a "Current file:" report (M27 C)
func (e *Engine) RequestCurrentFile() error {
	return e.Send(gcode.NewCurrentFileCommand())
}

// RequestTemperatures asks for a temperature report (M105)
func (e *Engine) RequestTemperatures() error {
	return e.Send(gcode.NewTemperatureReportCommand())
}

// AutoReportTemperatures enables temperature reports every intervalSeconds (M155)
func (e *Engine) AutoReportTemperatures(intervalSeconds int) error {
	return e.Send(gcode.NewTemperatureAutoReportCommand(intervalSeconds))
}

//////////////////////////////////////////////////////////////
// SD listing
//////////////////////////////////////////////////////////////

// ListFiles sends M20 and waits for the ingestion loop to collect the
// listing. Run must be active, or the call waits until ctx is done.
func (e *Engine) ListFiles(ctx context.Context) ([]gcode.FileEntry, error) {
	e.mu.Lock()
	if e.listing != nil {
		e.mu.Unlock()
		return nil, ErrListInProgress
	}
	p := &gcode.FileListParser{}
	done := make(chan struct{})
	e.listing = p
	e.listDone = done
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		if e.listing == p {
			e.listing = nil
			e.listDone = nil
		}
		e.mu.Unlock()
	}()

	if err := e.Send(gcode.NewListFilesCommand(e.opts.LongFilenames)); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("list files: %w", ctx.Err())
	}

	e.mu.Lock()
	entries := p.Entries()
	e.files = entries
	e.mu.Unlock()

	e.logger.Debug("sd listing received", slog.Int("files", len(entries)))
	return entries, nil
}

// Files returns the most recent SD listing
func (e *Engine) Files() []gcode.FileEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]gcode.FileEntry, len(e.files))
	copy(out, e.files)
	return out
}

func (e *Engine) lookupFileSize(fileName string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range e.files {
		if strings.EqualFold(f.Name, fileName) || (f.LongName != "" && f.LongName == fileName) {
			return f.Size
		}
	}
	return 0
}

//////////////////////////////////////////////////////////////
// Telemetry ingestion
//////////////////////////////////////////////////////////////

// Run reads lines from the attached transport until it fails or ctx is
// cancelled. A transport failure returns an error wrapping ErrDisconnected;
// the job state is left as it was. Closing the transport unblocks a pending
// read.
func (e *Engine) Run(ctx context.Context) error {
	t := e.currentTransport()
	if t == nil {
		return ErrNotConnected
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := t.ReadLine()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.logger.Warn("transport disconnected",
				slog.String("state", e.machine.State().String()),
				slog.Any("error", err))
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}

		e.HandleLine(line)
	}
}

// HandleLine processes one line of firmware output
func (e *Engine) HandleLine(line string) {
	now := e.now()
	line = strings.TrimRight(line, "\r\n")
	if e.opts.OnLine != nil {
		e.opts.OnLine(now, line)
	}

	e.mu.Lock()
	e.stats.TotalLines++
	e.stats.LastUpdateTime = now

	if e.listing != nil {
		consumed, done := e.listing.Feed(line)
		if done {
			close(e.listDone)
			e.listing = nil
			e.listDone = nil
		}
		if consumed {
			e.stats.ListingLines++
			e.mu.Unlock()
			return
		}
	}

	ev := gcode.ParseLine(line)
	if ev == nil {
		e.stats.IgnoredLines++
		e.mu.Unlock()
		return
	}
	e.stats.EventLines++
	if temp, ok := ev.(gcode.Temperature); ok {
		e.temps.Push(TemperatureSample{Time: now, Temperature: temp})
	}
	e.mu.Unlock()

	e.machine.Apply(ev)

	if e.opts.OnEvent != nil {
		e.opts.OnEvent(now, ev)
	}
}

//////////////////////////////////////////////////////////////
// Read side
//////////////////////////////////////////////////////////////

// Snapshot returns an immutable copy of the current job
func (e *Engine) Snapshot() printjob.Job {
	return e.machine.Snapshot()
}

// State returns the current job state
func (e *Engine) State() printjob.State {
	return e.machine.State()
}

// EstimatedTimeRemaining returns the remaining print time, or false when
// it cannot be estimated yet
func (e *Engine) EstimatedTimeRemaining() (time.Duration, bool) {
	return e.machine.EstimatedTimeRemaining()
}

// Temperatures returns the retained temperature samples, oldest first
func (e *Engine) Temperatures() []TemperatureSample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.temps.Items()
}

// Stats returns a copy of the line statistics with rates calculated
func (e *Engine) Stats() Statistics {
	e.mu.Lock()
	s := e.stats
	e.mu.Unlock()
	s.CalculateRates(e.now())
	return s
}
