// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"reflect"
	"testing"
)

func TestParseFileList(t *testing.T) {
	lines := []string{
		"echo:busy: processing",
		"Begin file list",
		"BENCHY~1.GCO 1843290 3DBenchy.gcode",
		"CUBE.GCO 5000",
		"NOSIZE.GCO",
		"End file list",
		"ok",
		"AFTER.GCO 10",
	}

	got := ParseFileList(lines)
	want := []FileEntry{
		{Name: "BENCHY~1.GCO", Size: 1843290, LongName: "3DBenchy.gcode"},
		{Name: "CUBE.GCO", Size: 5000},
		{Name: "NOSIZE.GCO"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFileList() = %#v, want %#v", got, want)
	}
}

func TestFileListParser_Feed(t *testing.T) {
	var p FileListParser

	if consumed, done := p.Feed("ok T:20.0 /0.0"); consumed || done {
		t.Errorf("Feed(before begin) = (%v, %v), want (false, false)", consumed, done)
	}
	if consumed, done := p.Feed("Begin file list"); !consumed || done {
		t.Errorf("Feed(begin) = (%v, %v), want (true, false)", consumed, done)
	}
	if consumed, _ := p.Feed("A.GCO 1"); !consumed {
		t.Error("Feed(entry) not consumed")
	}
	if consumed, done := p.Feed("End file list"); !consumed || !done {
		t.Errorf("Feed(end) = (%v, %v), want (true, true)", consumed, done)
	}
	if !p.Done() {
		t.Error("Done() = false after end marker")
	}
	if consumed, _ := p.Feed("B.GCO 2"); consumed {
		t.Error("Feed(after end) consumed a line")
	}
	if n := len(p.Entries()); n != 1 {
		t.Errorf("len(Entries()) = %d, want 1", n)
	}
}

func TestFileEntry_DisplayName(t *testing.T) {
	if got := (FileEntry{Name: "A.GCO", LongName: "alpha.gcode"}).DisplayName(); got != "alpha.gcode" {
		t.Errorf("DisplayName() = %q, want alpha.gcode", got)
	}
	if got := (FileEntry{Name: "A.GCO"}).DisplayName(); got != "A.GCO" {
		t.Errorf("DisplayName() = %q, want A.GCO", got)
	}
}
