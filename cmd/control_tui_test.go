// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Thermoquad/gnomon/pkg/engine"
	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/printjob"
)

type recordingTransport struct {
	mu       sync.Mutex
	written  []string
	writeErr error
}

func (r *recordingTransport) WriteLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	r.written = append(r.written, line)
	return nil
}

func (r *recordingTransport) ReadLine() (string, error) {
	select {}
}

func (r *recordingTransport) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.written) == 0 {
		return ""
	}
	return r.written[len(r.written)-1]
}

func newTestControlModel(t *testing.T) (controlModel, *engine.Engine, *recordingTransport) {
	t.Helper()
	tr := &recordingTransport{}
	e := engine.New(tr, engine.Options{})
	cm := &connectionManager{session: &session{engine: e, connInfo: "test"}}
	return initialControlModel(cm), e, tr
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command, feeding its message back
func press(t *testing.T, m controlModel, key string) controlModel {
	t.Helper()
	next, cmd := m.Update(keyMsg(key))
	m = next.(controlModel)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = m.Update(msg)
			m = next.(controlModel)
		}
	}
	return m
}

func TestControlModel_StartFromList(t *testing.T) {
	m, e, tr := newTestControlModel(t)

	next, _ := m.Update(filesMsg{files: []gcode.FileEntry{{Name: "CUBE.GCO", Size: 2048}}})
	m = next.(controlModel)
	if m.listing {
		t.Error("listing flag should clear")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(controlModel)
	if cmd == nil {
		t.Fatal("enter should start a print")
	}
	next, _ = m.Update(cmd())
	m = next.(controlModel)

	if e.State() != printjob.StatePrinting {
		t.Fatalf("state = %s, want PRINTING", e.State())
	}
	if m.snapshot.FileName != "CUBE.GCO" {
		t.Errorf("snapshot file = %q", m.snapshot.FileName)
	}
	if tr.last() != "M24" {
		t.Errorf("last write = %q, want M24", tr.last())
	}
}

func TestControlModel_StopNeedsConfirmation(t *testing.T) {
	m, e, tr := newTestControlModel(t)
	if err := e.StartPrint("a.gcode"); err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(controlTickMsg{})
	m = next.(controlModel)

	m = press(t, m, "s")
	if !m.confirmStop {
		t.Fatal("stop should ask for confirmation")
	}
	m = press(t, m, "n")
	if m.confirmStop || e.State() != printjob.StatePrinting {
		t.Fatalf("declined stop: confirm=%v state=%s", m.confirmStop, e.State())
	}

	m = press(t, m, "s")
	m = press(t, m, "y")
	if e.State() != printjob.StateAborted {
		t.Fatalf("state = %s, want ABORTED", e.State())
	}
	if tr.last() != "M524" {
		t.Errorf("last write = %q, want M524", tr.last())
	}
	if m.snapshot.State != printjob.StateAborted {
		t.Errorf("model state = %s", m.snapshot.State)
	}

	m = press(t, m, "x")
	if e.State() != printjob.StateIdle {
		t.Errorf("after reset state = %s, want IDLE", e.State())
	}
}

func TestControlModel_PauseResume(t *testing.T) {
	m, e, tr := newTestControlModel(t)
	if err := e.StartPrint("a.gcode"); err != nil {
		t.Fatal(err)
	}

	m = press(t, m, "p")
	if e.State() != printjob.StatePaused || tr.last() != "M25" {
		t.Fatalf("after p: state=%s last=%q", e.State(), tr.last())
	}
	m = press(t, m, "r")
	if e.State() != printjob.StatePrinting || tr.last() != "M24" {
		t.Fatalf("after r: state=%s last=%q", e.State(), tr.last())
	}
	_ = m
}

func TestControlModel_ConnectionLostBlocksCommands(t *testing.T) {
	m, e, tr := newTestControlModel(t)
	if err := e.StartPrint("a.gcode"); err != nil {
		t.Fatal(err)
	}
	before := tr.last()

	next, _ := m.Update(connectionLostMsg{})
	m = next.(controlModel)
	m = press(t, m, "p")

	if e.State() != printjob.StatePrinting || tr.last() != before {
		t.Errorf("command sent while disconnected: state=%s last=%q", e.State(), tr.last())
	}

	next, _ = m.Update(reconnectedMsg{connInfo: "Serial: /dev/ttyACM0 @ 115200 baud"})
	m = next.(controlModel)
	if m.connectionLost || m.connInfo != "Serial: /dev/ttyACM0 @ 115200 baud" {
		t.Errorf("reconnect not applied: %+v", m.connInfo)
	}
}

func TestControlModel_MediaKeys(t *testing.T) {
	m, e, tr := newTestControlModel(t)

	m = press(t, m, "e")
	if e.MediaAttached() || m.mediaAttached || tr.last() != "M22" {
		t.Errorf("release: engine=%v model=%v last=%q", e.MediaAttached(), m.mediaAttached, tr.last())
	}
	m = press(t, m, "a")
	if !e.MediaAttached() || !m.mediaAttached || tr.last() != "M21" {
		t.Errorf("attach: engine=%v model=%v last=%q", e.MediaAttached(), m.mediaAttached, tr.last())
	}
	press(t, m, "b")
	if tr.last() != "M420 S1" {
		t.Errorf("level: last=%q", tr.last())
	}
}

func TestControlModel_EventLogBounded(t *testing.T) {
	m, _, _ := newTestControlModel(t)
	for i := 0; i < maxLogEntries+10; i++ {
		m.addLogEntry("entry", false)
	}
	if len(m.eventLog) != maxLogEntries {
		t.Errorf("log length = %d, want %d", len(m.eventLog), maxLogEntries)
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}

func TestInitialRequests(t *testing.T) {
	t.Run("idle polls temperatures", func(t *testing.T) {
		tr := &recordingTransport{}
		e := engine.New(tr, engine.Options{})
		if failed := initialRequests(e, 0); len(failed) != 0 {
			t.Fatalf("failed = %v, want none", failed)
		}
		if got := strings.Join(tr.written, ","); got != "M105" {
			t.Errorf("written = %q, want M105", got)
		}
	})

	t.Run("active job asks for file and progress", func(t *testing.T) {
		tr := &recordingTransport{}
		e := engine.New(tr, engine.Options{})
		if err := e.StartPrint("a.gcode"); err != nil {
			t.Fatalf("StartPrint: %v", err)
		}
		tr.written = nil
		initialRequests(e, 3)
		if got := strings.Join(tr.written, ","); got != "M155 S3,M27 C,M27" {
			t.Errorf("written = %q", got)
		}
	})

	t.Run("write failures are reported", func(t *testing.T) {
		tr := &recordingTransport{}
		e := engine.New(tr, engine.Options{})
		if err := e.StartPrint("a.gcode"); err != nil {
			t.Fatalf("StartPrint: %v", err)
		}
		tr.writeErr = errors.New("port gone")

		failed := initialRequests(e, 0)
		if len(failed) != 3 {
			t.Fatalf("len(failed) = %d, want 3", len(failed))
		}
		for _, msg := range failed {
			if msg.action == "" || !errors.Is(msg.err, tr.writeErr) {
				t.Errorf("result = %+v", msg)
			}
		}

		m, _, _ := newTestControlModel(t)
		next, _ := m.Update(failed[0])
		m = next.(controlModel)
		last := m.eventLog[len(m.eventLog)-1]
		if !last.isError || !strings.Contains(last.message, "Temperature request failed") {
			t.Errorf("log entry = %+v", last)
		}
	})
}
