// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type rwPair struct {
	io.Reader
	io.Writer
}

func TestLineTransport_ReadLine(t *testing.T) {
	in := strings.NewReader("ok\r\nprinting byte 1/2\nno newline")
	tr := NewLineTransport(rwPair{Reader: in, Writer: io.Discard})

	for _, want := range []string{"ok", "printing byte 1/2", "no newline"} {
		got, err := tr.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("line = %q, want %q", got, want)
		}
	}

	if _, err := tr.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
}

func TestLineTransport_WriteLine(t *testing.T) {
	var out bytes.Buffer
	tr := NewLineTransport(rwPair{Reader: strings.NewReader(""), Writer: &out})

	if err := tr.WriteLine("M23 a.gcode"); err != nil {
		t.Fatal(err)
	}
	if err := tr.WriteLine("M24"); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "M23 a.gcode\nM24\n" {
		t.Errorf("output = %q", got)
	}
}
