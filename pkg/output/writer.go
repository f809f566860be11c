// Package output writes ranked records as gzip-compressed JSON.
package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/pat/pkg/rank"
	"github.com/klauspost/compress/gzip"
)

// Mode selects how records are persisted.
type Mode string

const (
	// ModeLines writes one JSON document per record, one per line.
	ModeLines Mode = "lines"
	// ModeLast keeps only the final record and writes it as a single document.
	ModeLast Mode = "last"
)

// ParseMode validates a mode name. An empty name selects ModeLines.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLines:
		return ModeLines, nil
	case ModeLast:
		return ModeLast, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (expected %q or %q)", s, ModeLines, ModeLast)
	}
}

// Writer persists ranked outputs to a compressed file. Records go to a
// temporary file next to the destination, which only replaces the
// destination when Close succeeds.
type Writer struct {
	mode    Mode
	path    string
	file    *os.File
	gz      *gzip.Writer
	buf     *bufio.Writer
	enc     *json.Encoder
	last    *rank.Output
	written int
}

// Create prepares a writer for path. An existing file at path is left
// untouched until Close.
func Create(path string, mode Mode) (*Writer, error) {
	file, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create output %s: %w", path, err)
	}
	gz := gzip.NewWriter(file)
	buf := bufio.NewWriter(gz)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &Writer{mode: mode, path: path, file: file, gz: gz, buf: buf, enc: enc}, nil
}

const tempPattern = ".patrank-*.json.gz"

// Write stores out. In ModeLast only the latest record is retained until Close.
func (w *Writer) Write(out rank.Output) error {
	if w.mode == ModeLast {
		w.last = &out
		return nil
	}
	if err := w.enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode %q: %w", out.SurfaceForm, err)
	}
	w.written++
	return nil
}

// Written returns the number of records encoded so far.
func (w *Writer) Written() int {
	return w.written
}

// Close flushes pending data and moves the finished file to its destination.
// On failure the destination is unchanged and the temporary file removed.
func (w *Writer) Close() error {
	if err := w.finish(); err != nil {
		return errors.Join(err, w.Abort())
	}
	if err := os.Chmod(w.file.Name(), 0644); err != nil {
		return errors.Join(fmt.Errorf("failed to set output permissions: %w", err), w.Abort())
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		return errors.Join(fmt.Errorf("failed to move output to %s: %w", w.path, err), w.Abort())
	}
	return nil
}

func (w *Writer) finish() error {
	if w.mode == ModeLast && w.last != nil {
		if err := w.enc.Encode(w.last); err != nil {
			return fmt.Errorf("failed to encode %q: %w", w.last.SurfaceForm, err)
		}
		w.written++
		w.last = nil
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return w.file.Close()
}

// Abort discards everything written so far. The destination is left as it
// was before Create.
func (w *Writer) Abort() error {
	w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary output: %w", err)
	}
	return nil
}
