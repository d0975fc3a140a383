package census

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/klauspost/compress/zstd"
)

// Recorder appends census records to a CSV file, optionally zstd-compressed.
// A nil *Recorder is valid and discards everything.
type Recorder struct {
	mu            sync.Mutex
	f             *os.File
	enc           *zstd.Encoder
	w             io.Writer
	headerWritten bool
	written       int
}

// NewRecorder creates the CSV file at path. Returns nil if path is empty
// (census disabled).
func NewRecorder(path string, compress bool) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating census directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating census file: %w", err)
	}

	rec := &Recorder{f: f, w: f}
	if compress {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating census encoder: %w", err)
		}
		rec.enc = enc
		rec.w = enc
	}
	return rec, nil
}

// Write appends one record. The header row goes out with the first record.
func (r *Recorder) Write(rec Record) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return fmt.Errorf("census recorder is closed")
	}

	records := []Record{rec}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing census: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
			return fmt.Errorf("writing census: %w", err)
		}
	}
	r.written++
	return nil
}

// Written returns how many records were written.
func (r *Recorder) Written() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Path returns the file path, or "" for a nil recorder.
func (r *Recorder) Path() string {
	if r == nil || r.f == nil {
		return ""
	}
	return r.f.Name()
}

// Close flushes the encoder and closes the file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	if r.enc != nil {
		firstErr = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.f = nil
	}
	r.w = nil
	return firstErr
}

// ReadFile loads every record from a census file written by Recorder.
func ReadFile(path string, compressed bool) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening census file: %w", err)
	}
	defer f.Close()

	var in io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating census decoder: %w", err)
		}
		defer dec.Close()
		in = dec
	}

	var records []Record
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, fmt.Errorf("reading census: %w", err)
	}
	return records, nil
}
