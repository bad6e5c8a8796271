package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/record"
)

// CSVWriter writes one schema's records to a delimited text sink, emitting
// a field-name header row on the first WriteRecord call.
type CSVWriter struct {
	w                io.Writer
	csv              *csv.Writer
	schema           *record.RecordSchema
	hasWrittenHeader bool
	closer           io.Closer
}

// NewCSVWriter wraps w. If w also implements io.Closer, it is closed on
// Finish.
func NewCSVWriter(w io.Writer, schema *record.RecordSchema) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.UseCRLF = false
	closer, _ := w.(io.Closer)
	return &CSVWriter{w: w, csv: cw, schema: schema, closer: closer}
}

func (w *CSVWriter) maybeWriteHeader() error {
	if w.hasWrittenHeader {
		return nil
	}
	w.hasWrittenHeader = true
	names := make([]string, len(w.schema.Fields))
	for i, f := range w.schema.Fields {
		names[i] = f.Name
	}
	return w.csv.Write(names)
}

// WriteRecord renders rec's values positionally, tolerating a field count
// that doesn't match the schema (csv.Writer places no restriction on
// write, unlike the flexible-read contract of package linereader).
func (w *CSVWriter) WriteRecord(rec *record.Record) error {
	if err := w.maybeWriteHeader(); err != nil {
		return fmt.Errorf("writer: write header: %w", err)
	}
	row := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		row[i] = v.String()
	}
	return w.csv.Write(row)
}

// Finish flushes the underlying csv.Writer and closes w's sink if it is an
// io.Closer.
func (w *CSVWriter) Finish() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// FileWriterFactory creates one CSVWriter per schema, each writing to
// "<baseDir>/<normalized schema code>.csv".
type FileWriterFactory struct {
	BaseDir string
}

// MakeWriter implements RecordWriterFactory.
func (f *FileWriterFactory) MakeWriter(schema *record.RecordSchema) (RecordWriter, error) {
	if err := os.MkdirAll(f.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("writer: create base dir %q: %w", f.BaseDir, err)
	}
	formName := NormFormName(schema.Code)
	path := filepath.Join(f.BaseDir, formName+".csv")
	logrus.WithField("path", path).Debug("writer: creating file writer")

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("writer: create %q: %w", path, err)
	}
	return NewCSVWriter(file, schema), nil
}
