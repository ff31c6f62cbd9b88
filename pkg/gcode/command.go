// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a single G-code command: an opcode letter, a numeric code and
// an ordered list of parameter tokens.
type Command struct {
	opcode byte
	code   int
	params []string
}

// NewCommand creates a command. The parameter slice is copied.
func NewCommand(opcode byte, code int, params ...string) Command {
	var p []string
	if len(params) > 0 {
		p = make([]string, len(params))
		copy(p, params)
	}
	return Command{opcode: opcode, code: code, params: p}
}

// Opcode returns the command letter
func (c Command) Opcode() byte {
	return c.opcode
}

// Code returns the numeric code
func (c Command) Code() int {
	return c.code
}

// Params returns a copy of the parameter tokens
func (c Command) Params() []string {
	if len(c.params) == 0 {
		return nil
	}
	p := make([]string, len(c.params))
	copy(p, c.params)
	return p
}

// String renders the command in wire format (without a line terminator)
func (c Command) String() string {
	return Encode(c.opcode, c.code, c.params...)
}

// Encode renders "<opcode><code>" followed by each parameter separated by a
// single space. No trailing space is emitted when there are no parameters.
func Encode(opcode byte, code int, params ...string) string {
	var b strings.Builder
	b.WriteByte(opcode)
	b.WriteString(strconv.Itoa(code))
	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	return b.String()
}

// IsRecognizedOpcode reports whether op is an opcode this package renders
func IsRecognizedOpcode(op byte) bool {
	return op == OpcodeG || op == OpcodeM
}

// ParseCommand parses a single command line such as "M420 S1" or "g28".
// The opcode letter is case-insensitive; parameters are split on whitespace.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	head := fields[0]
	op := strings.ToUpper(head[:1])[0]
	if !IsRecognizedOpcode(op) {
		return Command{}, fmt.Errorf("unrecognized opcode in %q", head)
	}

	code, err := strconv.Atoi(head[1:])
	if err != nil || code < 0 {
		return Command{}, fmt.Errorf("invalid command code in %q", head)
	}

	return NewCommand(op, code, fields[1:]...), nil
}
