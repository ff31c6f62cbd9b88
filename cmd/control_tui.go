// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/gnomon/pkg/engine"
	"github.com/Thermoquad/gnomon/pkg/gcode"
	"github.com/Thermoquad/gnomon/pkg/printjob"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	maxLogEntries = 100
	logHeight     = 8
	leftWidth     = 34
)

// Focus states
const (
	focusFileList = iota
	focusFileInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// eventLogEntry is one line of the event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// fileItem is an SD card file in the file list
type fileItem struct {
	entry gcode.FileEntry
}

// Implement list.Item interface
func (f fileItem) Title() string { return f.entry.DisplayName() }
func (f fileItem) Description() string {
	return fmt.Sprintf("%s  %s", f.entry.Name, formatBytes(f.entry.Size))
}
func (f fileItem) FilterValue() string { return f.entry.DisplayName() }

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	connMgr  *connectionManager
	engine   *engine.Engine
	connInfo string

	// Widgets
	fileList     list.Model
	fileInput    textinput.Model
	progressBar  progress.Model
	focusedField int

	// Engine view, refreshed on tick and on events
	snapshot      printjob.Job
	eta           time.Duration
	etaOK         bool
	lastTemp      *engine.TemperatureSample
	stats         engine.Statistics
	mediaAttached bool

	eventLog []eventLogEntry

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
	confirmStop    bool
	listing        bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlEvent struct {
	timestamp time.Time
	event     gcode.Event
}

type controlBatchMsg struct {
	events []controlEvent
}

type connectionLostMsg struct {
	err error
}

type reconnectedMsg struct {
	connInfo string
}

type filesMsg struct {
	files []gcode.FileEntry
	err   error
}

type commandResultMsg struct {
	action string
	err    error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager) controlModel {
	ti := textinput.New()
	ti.Placeholder = "FILE.GCO"
	ti.CharLimit = 64
	ti.Width = leftWidth - 4

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	fileList := list.New([]list.Item{}, delegate, leftWidth-2, 10)
	fileList.Title = "SD Card"
	fileList.SetShowStatusBar(false)
	fileList.SetShowHelp(false)
	fileList.SetFilteringEnabled(false)

	m := controlModel{
		connMgr:      connMgr,
		engine:       connMgr.session.engine,
		connInfo:     connMgr.session.info(),
		fileList:     fileList,
		fileInput:    ti,
		progressBar:  progress.New(progress.WithDefaultGradient()),
		focusedField: focusFileList,
		eventLog:     make([]eventLogEntry, 0),
		width:        80,
		height:       24,
	}
	m.refresh()
	m.listing = true
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(controlTickCmd(), listFilesCmd(m.engine))
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			m.fileList, _ = m.fileList.Update(msg)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()

	case controlTickMsg:
		m.refresh()
		if m.cfgPollsProgress() && m.snapshot.State == printjob.StatePrinting && !m.connectionLost {
			return m, tea.Batch(controlTickCmd(), m.runCmd("progress request", m.engine.RequestProgress, false))
		}
		return m, controlTickCmd()

	case controlBatchMsg:
		for _, ev := range msg.events {
			m.logEvent(ev)
		}
		m.refresh()

	case filesMsg:
		m.listing = false
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("SD listing failed: %v", msg.err), true)
			break
		}
		m.setFiles(msg.files)
		m.addLogEntry(fmt.Sprintf("SD listing: %d file(s)", len(msg.files)), false)

	case commandResultMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		} else if msg.action != "" {
			m.addLogEntry(msg.action, false)
		}
		m.refresh()

	case connectionLostMsg:
		m.connectionLost = true
		m.confirmStop = false
		m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry(fmt.Sprintf("Reconnected; job %s kept", m.snapshot.State), false)
	}

	var cmd tea.Cmd
	if m.focusedField == focusFileInput {
		m.fileInput, cmd = m.fileInput.Update(msg)
	}
	return m, cmd
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmStop {
		m.confirmStop = false
		if key == "y" || key == "Y" {
			return m, m.runCmd("Abort sent (M524)", m.engine.Stop, true)
		}
		m.addLogEntry("Abort cancelled", false)
		return m, nil
	}

	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	case "enter":
		return m, m.startSelected()
	}

	if m.focusedField == focusFileInput {
		var cmd tea.Cmd
		m.fileInput, cmd = m.fileInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "p":
		return m, m.runCmd("Pause sent (M25)", m.engine.Pause, true)
	case "r":
		return m, m.runCmd("Resume sent (M24)", m.engine.Resume, true)
	case "s":
		if m.snapshot.State.IsActive() && !m.connectionLost {
			m.confirmStop = true
		}
	case "x":
		e := m.engine
		return m, m.runCmd("Job reset", func() error { e.Reset(); return nil }, false)
	case "l":
		return m, m.requestListing()
	case "b":
		return m, m.runCmd("Bed leveling enabled (M420 S1)", func() error { return m.engine.BedLevel("S1") }, true)
	case "a":
		return m, m.runCmd("SD card attached (M21)", m.engine.AttachMedia, true)
	case "e":
		return m, m.runCmd("SD card released (M22)", m.engine.ReleaseMedia, true)
	case "t":
		return m, m.runCmd("", m.engine.RequestTemperatures, true)
	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Header
	s.WriteString(titleStyle.Render("GNOMON CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch", connStatus)))
	s.WriteString("\n\n")

	// Layout: left panel (files) | right panel (job)
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 30 {
		rightWidth = 30
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusFileList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	filePanel := listStyle.Render(m.renderFilePanel())
	jobPanel := boxStyle.Width(rightWidth).Render(m.renderJobPanel(rightWidth - 4))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, filePanel, " ", jobPanel))
	s.WriteString("\n")

	s.WriteString(m.renderStatisticsBar())
	s.WriteString("\n")

	s.WriteString(m.renderEventLog())
	s.WriteString("\n")

	if m.confirmStop {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Abort printing %s? (y/n)", m.snapshot.FileName)))
	} else {
		s.WriteString(headerStyle.Render("Enter=start p=pause r=resume s=abort x=reset l=list b=level a=attach e=release t=temps"))
	}
	s.WriteString("\n")

	return s.String()
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("12"))
)

// stateStyle colors a print state
func stateStyle(s printjob.State) lipgloss.Style {
	switch s {
	case printjob.StatePrinting:
		return statsValueStyle
	case printjob.StatePaused:
		return warningStyle
	case printjob.StateAborted:
		return errorStyle
	default:
		return statsLabelStyle
	}
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderFilePanel() string {
	var s strings.Builder
	if m.listing {
		s.WriteString(warningStyle.Render("Listing SD card..."))
		s.WriteString("\n")
	}
	if len(m.fileList.Items()) == 0 && !m.listing {
		s.WriteString(headerStyle.Render("No files (l=list)"))
		s.WriteString("\n")
	} else {
		s.WriteString(m.fileList.View())
		s.WriteString("\n")
	}
	s.WriteString(statsLabelStyle.Render("File: "))
	if m.focusedField == focusFileInput {
		s.WriteString(m.fileInput.View())
	} else {
		val := m.fileInput.Value()
		if val == "" {
			val = m.fileInput.Placeholder
		}
		s.WriteString(fmt.Sprintf("[%s]", val))
	}
	return s.String()
}

func (m controlModel) renderJobPanel(width int) string {
	var s strings.Builder
	j := m.snapshot

	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("State:"), stateStyle(j.State).Render(j.State.String())))

	if j.State == printjob.StateIdle && j.FileName == "" {
		s.WriteString(headerStyle.Render("No print job"))
		s.WriteString("\n\n")
	} else {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("File:"), j.FileName))
		s.WriteString(fmt.Sprintf("%s %s\n\n", statsLabelStyle.Render("Progress:"), formatProgress(j)))

		m.progressBar.Width = width
		pct, _ := j.Percentage()
		s.WriteString(m.progressBar.ViewAs(float64(pct) / 100))
		s.WriteString("\n\n")

		s.WriteString(fmt.Sprintf("%s %s  %s %s\n",
			statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatClock(j.TotalPrintDuration)),
			statsLabelStyle.Render("Remaining:"), statsValueStyle.Render(formatETA(m.eta, m.etaOK))))
	}

	temps := headerStyle.Render("no report")
	if t := m.lastTemp; t != nil {
		temps = statsValueStyle.Render(fmt.Sprintf("%.1f°C / %.1f°C", t.Hotend, t.HotendTarget))
		if t.HasBed {
			temps += "  " + statsLabelStyle.Render("Bed:") + " " +
				statsValueStyle.Render(fmt.Sprintf("%.1f°C / %.1f°C", t.Bed, t.BedTarget))
		}
	}
	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Hotend:"), temps))

	media := statsValueStyle.Render("attached")
	if !m.mediaAttached {
		media = warningStyle.Render("released")
	}
	s.WriteString(fmt.Sprintf("%s %s", statsLabelStyle.Render("SD card:"), media))

	return s.String()
}

func (m controlModel) renderStatisticsBar() string {
	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Lines:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalLines)),
		statsLabelStyle.Render("Events:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.EventLines)),
		statsLabelStyle.Render("Sent:"), func() string {
			if m.stats.CommandFailures > 0 {
				return errorStyle.Render(fmt.Sprintf("%d (%d failed)", m.stats.CommandsSent, m.stats.CommandFailures))
			}
			return statsValueStyle.Render(fmt.Sprintf("%d", m.stats.CommandsSent))
		}(),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f lines/s", m.stats.LineRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog() string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
		return boxStyle.Width(m.width - 4).Render(s.String())
	}

	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}
	for _, entry := range m.eventLog[startIdx:] {
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyle
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}

	return boxStyle.Width(m.width - 4).Render(strings.TrimRight(s.String(), "\n"))
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

// refresh copies the engine's read side into the model
func (m *controlModel) refresh() {
	prev := m.snapshot.State
	m.snapshot = m.engine.Snapshot()
	m.eta, m.etaOK = m.engine.EstimatedTimeRemaining()
	m.stats = m.engine.Stats()
	m.mediaAttached = m.engine.MediaAttached()
	if temps := m.engine.Temperatures(); len(temps) > 0 {
		last := temps[len(temps)-1]
		m.lastTemp = &last
	}
	if m.snapshot.State != prev {
		m.addLogEntry(fmt.Sprintf("State: %s -> %s", prev, m.snapshot.State), m.snapshot.State == printjob.StateAborted)
	}
}

func (m *controlModel) logEvent(ev controlEvent) {
	switch e := ev.event.(type) {
	case gcode.PrintFinished:
		m.addLogEntryAt(ev.timestamp, "Firmware reports print finished", false)
	case gcode.TimeLeft:
		m.addLogEntryAt(ev.timestamp, fmt.Sprintf("Firmware time left: %s", formatClock(e.Remaining)), false)
	case gcode.CurrentFile:
		m.addLogEntryAt(ev.timestamp, fmt.Sprintf("Current file: %s", e.Name), false)
	}
}

func (m *controlModel) setFiles(files []gcode.FileEntry) {
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = fileItem{entry: f}
	}
	m.fileList.SetItems(items)
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// runCmd runs an engine call off the UI goroutine. Calls that write to the
// printer are refused while the connection is down.
func (m *controlModel) runCmd(action string, fn func() error, needsConn bool) tea.Cmd {
	if needsConn && m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return nil
	}
	return func() tea.Msg {
		return commandResultMsg{action: action, err: fn()}
	}
}

// requestListing starts an SD listing unless one is running
func (m *controlModel) requestListing() tea.Cmd {
	if m.listing || m.connectionLost {
		return nil
	}
	m.listing = true
	return listFilesCmd(m.engine)
}

func listFilesCmd(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout())
		defer cancel()
		files, err := e.ListFiles(ctx)
		return filesMsg{files: files, err: err}
	}
}

// startSelected starts the typed file name, or the selected list entry
func (m *controlModel) startSelected() tea.Cmd {
	name := strings.TrimSpace(m.fileInput.Value())
	if m.focusedField == focusFileList || name == "" {
		item, ok := m.fileList.SelectedItem().(fileItem)
		if !ok {
			m.addLogEntry("No file selected", true)
			return nil
		}
		name = item.entry.Name
	}

	e := m.engine
	return m.runCmd(fmt.Sprintf("Started %s (M23, M24)", name), func() error {
		return e.StartPrint(name)
	}, true)
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

// cfgPollsProgress reports whether the TUI must ask for progress itself
func (m *controlModel) cfgPollsProgress() bool {
	return cfg.Engine.ReportInterval == 0
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.addLogEntryAt(time.Now(), message, isError)
}

func (m *controlModel) addLogEntryAt(ts time.Time, message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: ts,
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

func (m *controlModel) toggleFocus() {
	if m.focusedField == focusFileList {
		m.focusedField = focusFileInput
		m.fileInput.Focus()
	} else {
		m.focusedField = focusFileList
		m.fileInput.Blur()
	}
}

func (m *controlModel) updateSizes() {
	listHeight := m.height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.fileList.SetSize(leftWidth-2, listHeight)
}
