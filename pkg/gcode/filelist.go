// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"strconv"
	"strings"
)

// FileEntry is one file reported by M20
type FileEntry struct {
	Name     string // 8.3 name used with M23
	Size     int64
	LongName string // only present with "M20 L"
}

// DisplayName returns the long name when the firmware reported one
func (f FileEntry) DisplayName() string {
	if f.LongName != "" {
		return f.LongName
	}
	return f.Name
}

// FileListParser collects the entries between "Begin file list" and
// "End file list". It is not safe for concurrent use.
type FileListParser struct {
	active  bool
	done    bool
	entries []FileEntry
}

// Feed processes one line. It returns consumed=true when the line belonged
// to the listing and done=true once the end marker has been seen.
func (p *FileListParser) Feed(line string) (consumed, done bool) {
	line = strings.TrimSpace(line)

	switch {
	case p.done:
		return false, true
	case line == markerFileListBegin:
		p.active = true
		p.entries = p.entries[:0]
		return true, false
	case !p.active:
		return false, false
	case line == markerFileListEnd:
		p.active = false
		p.done = true
		return true, true
	case line == "" || line == "ok":
		return true, false
	}

	p.entries = append(p.entries, parseFileEntry(line))
	return true, false
}

// Entries returns the files collected so far
func (p *FileListParser) Entries() []FileEntry {
	out := make([]FileEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Done reports whether the end marker has been seen
func (p *FileListParser) Done() bool {
	return p.done
}

func parseFileEntry(line string) FileEntry {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return FileEntry{Name: line}
	}
	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return FileEntry{Name: line}
	}
	return FileEntry{
		Name:     fields[0],
		Size:     size,
		LongName: strings.Join(fields[2:], " "),
	}
}

// ParseFileList extracts the listing from a complete block of M20 output.
func ParseFileList(lines []string) []FileEntry {
	var p FileListParser
	for _, l := range lines {
		if _, done := p.Feed(l); done {
			break
		}
	}
	return p.Entries()
}
