// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package history stores finished print jobs as a CBOR sequence: one
// self-delimiting CBOR item per record, appended as jobs end.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/Thermoquad/gnomon/pkg/printjob"
)

// formatVersion is written with every entry
const formatVersion = 1

// ErrUnsupportedVersion is returned for entries written by a newer format
var ErrUnsupportedVersion = errors.New("unsupported history entry version")

// entry is the on-disk form of printjob.Record. Integer keys keep entries
// small and match the field numbering used on the wire.
type entry struct {
	Version      uint8  `cbor:"0,keyasint"`
	JobID        []byte `cbor:"1,keyasint"`
	FileName     string `cbor:"2,keyasint"`
	FileSize     int64  `cbor:"3,keyasint"`
	StartUnixMs  int64  `cbor:"4,keyasint"`
	DurationMs   int64  `cbor:"5,keyasint"`
	FinalState   uint8  `cbor:"6,keyasint"`
	CurrentBytes int64  `cbor:"7,keyasint"`
	TotalBytes   int64  `cbor:"8,keyasint"`
}

func toEntry(r printjob.Record) entry {
	return entry{
		Version:      formatVersion,
		JobID:        r.JobID[:],
		FileName:     r.FileName,
		FileSize:     r.FileSizeBytes,
		StartUnixMs:  r.StartTime.UnixMilli(),
		DurationMs:   r.Duration.Milliseconds(),
		FinalState:   uint8(r.FinalState),
		CurrentBytes: r.CurrentBytes,
		TotalBytes:   r.TotalBytes,
	}
}

func (e entry) record() (printjob.Record, error) {
	if e.Version != formatVersion {
		return printjob.Record{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, e.Version)
	}

	var id uuid.UUID
	if len(e.JobID) > 0 {
		parsed, err := uuid.FromBytes(e.JobID)
		if err != nil {
			return printjob.Record{}, fmt.Errorf("invalid job id: %w", err)
		}
		id = parsed
	}

	state := printjob.State(e.FinalState)
	if !state.IsTerminal() {
		return printjob.Record{}, fmt.Errorf("invalid final state: %d", e.FinalState)
	}

	return printjob.Record{
		JobID:         id,
		FileName:      e.FileName,
		FileSizeBytes: e.FileSize,
		StartTime:     time.UnixMilli(e.StartUnixMs).UTC(),
		Duration:      time.Duration(e.DurationMs) * time.Millisecond,
		FinalState:    state,
		CurrentBytes:  e.CurrentBytes,
		TotalBytes:    e.TotalBytes,
	}, nil
}

// Writer appends records to an io.Writer. It implements printjob.Recorder
// and is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	c   io.Closer
}

// NewWriter creates a Writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: cbor.NewEncoder(w)}
}

// OpenFile opens path for appending, creating it if needed
func OpenFile(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	w := NewWriter(f)
	w.c = f
	return w, nil
}

// Record appends r
func (w *Writer) Record(r printjob.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(toEntry(r)); err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	return nil
}

// Close closes the underlying file when the Writer was created by OpenFile
func (w *Writer) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

// Reader decodes records written by Writer
type Reader struct {
	dec *cbor.Decoder
}

// NewReader creates a Reader on r
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF after the last one
func (r *Reader) Next() (printjob.Record, error) {
	var e entry
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return printjob.Record{}, io.EOF
		}
		return printjob.Record{}, fmt.Errorf("decode history entry: %w", err)
	}
	return e.record()
}

// ReadAll decodes every record in r
func ReadAll(r io.Reader) ([]printjob.Record, error) {
	hr := NewReader(r)
	var out []printjob.Record
	for {
		rec, err := hr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// ReadFile decodes every record in the file at path
func ReadFile(path string) ([]printjob.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}
