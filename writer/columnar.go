package writer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/record"
)

// Batch is a column-major buffer of parsed values: one []Value per schema
// field, all the same length. This is the shape ColumnarSink consumes;
// actual columnar encoding (Parquet, Arrow, or anything else) is entirely
// the sink implementation's concern — this module never encodes a batch
// itself, mirroring writers/parquet.rs and writers/arrow.rs with their
// Arrow-specific encoding stripped out.
type Batch struct {
	Schema  *record.RecordSchema
	Columns [][]record.Value
}

// ColumnarSink receives completed batches for a single schema. Callers
// supply a concrete implementation (a real Parquet/Arrow writer, an
// in-memory test double, etc.) — this package only manages batching.
type ColumnarSink interface {
	WriteBatch(b Batch) error
	Close() error
}

// BatchingWriter accumulates records into column-major batches of a fixed
// capacity, flushing full batches (and any partial batch left on Finish)
// to a ColumnarSink.
type BatchingWriter struct {
	sink     ColumnarSink
	schema   *record.RecordSchema
	capacity int

	columns [][]record.Value
	n       int
}

// NewBatchingWriter constructs a BatchingWriter over schema with the given
// batch capacity, flushing completed batches to sink.
func NewBatchingWriter(sink ColumnarSink, schema *record.RecordSchema, capacity int) *BatchingWriter {
	if capacity <= 0 {
		capacity = 1
	}
	return &BatchingWriter{
		sink:     sink,
		schema:   schema,
		capacity: capacity,
		columns:  make([][]record.Value, len(schema.Fields)),
	}
}

// WriteRecord appends rec's values into the current batch column-by-column,
// flushing when the batch reaches capacity.
func (w *BatchingWriter) WriteRecord(rec *record.Record) error {
	for i := range w.columns {
		var v record.Value
		if i < len(rec.Values) {
			v = rec.Values[i]
		} else {
			// rec is short (literal-policy record with a shorter value
			// list than the schema): pad with the absent variant so every
			// column in the batch stays the same length.
			v, _ = w.schema.Fields[i].Typ.Parse(nil)
		}
		w.columns[i] = append(w.columns[i], v)
	}
	w.n++
	if w.n >= w.capacity {
		return w.flush()
	}
	return nil
}

func (w *BatchingWriter) flush() error {
	if w.n == 0 {
		return nil
	}
	logrus.WithFields(logrus.Fields{"schema": w.schema.Code, "rows": w.n}).Debug("writer: flushing columnar batch")
	if err := w.sink.WriteBatch(Batch{Schema: w.schema, Columns: w.columns}); err != nil {
		return fmt.Errorf("writer: flush batch for %q: %w", w.schema.Code, err)
	}
	w.columns = make([][]record.Value, len(w.schema.Fields))
	w.n = 0
	return nil
}

// Finish flushes any partial batch and closes the sink.
func (w *BatchingWriter) Finish() error {
	if err := w.flush(); err != nil {
		return err
	}
	return w.sink.Close()
}

// BatchingWriterFactory creates one BatchingWriter per schema, all sharing
// the same batch capacity and a caller-supplied function to open a sink
// for a schema.
type BatchingWriterFactory struct {
	Capacity int
	NewSink  func(schema *record.RecordSchema) (ColumnarSink, error)
}

// MakeWriter implements RecordWriterFactory.
func (f *BatchingWriterFactory) MakeWriter(schema *record.RecordSchema) (RecordWriter, error) {
	sink, err := f.NewSink(schema)
	if err != nil {
		return nil, fmt.Errorf("writer: open columnar sink for %q: %w", schema.Code, err)
	}
	return NewBatchingWriter(sink, schema, f.Capacity), nil
}
