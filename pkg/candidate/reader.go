package candidate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ErrMalformedRecord is returned for input lines that are not a valid record.
var ErrMalformedRecord = errors.New("malformed candidate record")

// Reader yields records from a gzip-compressed, line-delimited JSON stream.
// It is forward-only and cannot be restarted.
type Reader struct {
	file   io.Closer
	gz     *gzip.Reader
	reader *bufio.Reader
	line   int
}

// Open opens a compressed candidates file.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates %s: %w", path, err)
	}
	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("candidates %s: %w", path, err)
	}
	r.file = file
	return r, nil
}

// NewReader wraps a compressed stream. Closing the Reader does not close r.
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return &Reader{
		gz:     gz,
		reader: bufio.NewReaderSize(gz, 64*1024),
	}, nil
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (*Record, error) {
	for {
		data, err := r.reader.ReadBytes('\n')
		if len(data) == 0 && err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read line %d: %w", r.line+1, err)
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read line %d: %w", r.line+1, err)
		}
		r.line++

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w at line %d: %v", ErrMalformedRecord, r.line, err)
		}
		return &rec, nil
	}
}

// Line returns the 1-based line number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// All returns the remaining records as a sequence. Iteration stops after the
// first error, which is yielded with a nil record.
func (r *Reader) All() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the decompressor and the underlying file, if Open created it.
func (r *Reader) Close() error {
	err := r.gz.Close()
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
