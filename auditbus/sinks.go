// FILE: auditbus/sinks.go
// Package auditbus – Sink implementations: an in-memory ring for tests and
// replay, and a file-per-day JSON-lines sink for a hosted shard.
package auditbus

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemorySink keeps every record it receives, in order, capped at Capacity
// (0 means unbounded — the default for tests).
type MemorySink struct {
	mu       sync.Mutex
	Capacity int
	records  []Record
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Write(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	if m.Capacity > 0 && len(m.records) > m.Capacity {
		m.records = m.records[len(m.records)-m.Capacity:]
	}
	return nil
}

// Records returns a copy of everything retained so far, in emission order.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// FileSink appends one JSON line per record to <dir>/<YYYY-MM-DD>.jsonl,
// rolling to a new file at the UTC date boundary. Rotation beyond that (e.g.
// by trading-day calendar, compression, shipping) is the collaborator's
// responsibility per the persisted-state contract.
type FileSink struct {
	mu  sync.Mutex
	dir string

	openDate string
	file     *os.File
}

// NewFileSink ensures dir exists and returns a sink that will lazily open
// the day's file on first write.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("auditbus: create audit dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (f *FileSink) Write(r Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	date := r.TS.UTC().Format("2006-01-02")
	if date != f.openDate || f.file == nil {
		if f.file != nil {
			_ = f.file.Close()
		}
		path := filepath.Join(f.dir, date+".jsonl")
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("auditbus: open %s: %w", path, err)
		}
		f.file = file
		f.openDate = date
	}

	_, err := f.file.WriteString(r.MarshalCanonical() + "\n")
	return err
}

// Close releases the currently open file handle, if any.
func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
