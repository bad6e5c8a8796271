// Package writer dispatches parsed records to per-line-code output sinks.
package writer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/NickCrews/feco3/record"
)

// RecordWriter writes records of a single schema to some sink.
type RecordWriter interface {
	WriteRecord(rec *record.Record) error
	Finish() error
}

// RecordWriterFactory creates a RecordWriter for a given schema, on demand.
type RecordWriterFactory interface {
	MakeWriter(schema *record.RecordSchema) (RecordWriter, error)
}

// MultiRecordWriter is a RecordWriter that fans out to one underlying
// writer per distinct schema code, created lazily via factory.
type MultiRecordWriter struct {
	factory RecordWriterFactory

	mu      sync.Mutex
	writers map[string]RecordWriter
}

// NewMultiRecordWriter constructs a MultiRecordWriter backed by factory.
func NewMultiRecordWriter(factory RecordWriterFactory) *MultiRecordWriter {
	return &MultiRecordWriter{factory: factory, writers: map[string]RecordWriter{}}
}

// WriteRecord looks up (or lazily creates) the writer for rec.Schema.Code
// and forwards rec to it. The lock is held across the forwarded write, not
// just the lookup: BatchDriver may run several filings' pipelines
// concurrently against one shared MultiRecordWriter, and two goroutines
// landing on the same line code would otherwise race inside the
// underlying writer (e.g. CSVWriter's header-written flag and its
// unsynchronized csv.Writer buffer).
func (m *MultiRecordWriter) WriteRecord(rec *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, err := m.getWriterLocked(rec.Schema)
	if err != nil {
		return err
	}
	return w.WriteRecord(rec)
}

// getWriterLocked must be called with m.mu held.
func (m *MultiRecordWriter) getWriterLocked(schema *record.RecordSchema) (RecordWriter, error) {
	if w, ok := m.writers[schema.Code]; ok {
		return w, nil
	}
	w, err := m.factory.MakeWriter(schema)
	if err != nil {
		return nil, err
	}
	m.writers[schema.Code] = w
	return w, nil
}

// Finish calls Finish on every writer created so far, in schema-code sorted
// order (for deterministic test output), joining any errors encountered.
func (m *MultiRecordWriter) Finish() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := make([]string, 0, len(m.writers))
	for code := range m.writers {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var errs []error
	for _, code := range codes {
		if err := m.writers[code].Finish(); err != nil {
			errs = append(errs, fmt.Errorf("writer %q: %w", code, err))
		}
	}
	return errors.Join(errs...)
}

// NormFormName replaces '/' with '-', since some form names are not valid
// file name components.
func NormFormName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
