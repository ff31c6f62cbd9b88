// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// Transport is the line-oriented link to the printer. The connection layer
// owns it; the engine only writes commands and reads lines.
type Transport interface {
	// WriteLine sends one command. The transport adds the line terminator.
	WriteLine(line string) error
	// ReadLine blocks until a line arrives. Any error means the link is gone.
	ReadLine() (string, error)
}

// LineTransport adapts a byte stream (serial port, WebSocket, pipe) to Transport
type LineTransport struct {
	r   *bufio.Reader
	w   io.Writer
	wmu sync.Mutex
}

// NewLineTransport wraps rw. Reads are buffered; writes are not.
func NewLineTransport(rw io.ReadWriter) *LineTransport {
	return &LineTransport{
		r: bufio.NewReader(rw),
		w: rw,
	}
}

// WriteLine writes line followed by '\n'
func (t *LineTransport) WriteLine(line string) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()

	_, err := io.WriteString(t.w, line+"\n")
	return err
}

// ReadLine returns the next line without its "\r\n" or "\n" terminator.
// A final unterminated line is returned before io.EOF.
func (t *LineTransport) ReadLine() (string, error) {
	s, err := t.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
