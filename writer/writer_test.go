package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickCrews/feco3/record"
)

func schemaFor(code string, fieldNames ...string) *record.RecordSchema {
	fields := make([]record.FieldSchema, len(fieldNames))
	for i, n := range fieldNames {
		fields[i] = record.FieldSchema{Name: n, Typ: record.String}
	}
	return &record.RecordSchema{Code: code, Fields: fields}
}

func strValue(s string) record.Value {
	return record.StringValue(&s)
}

type nopCloser struct{ *strings.Builder }

func (nopCloser) Close() error { return nil }

func TestCSVWriter_WritesHeaderOnce(t *testing.T) {
	var buf strings.Builder
	schema := schemaFor("SA17", "filer_committee_id_number", "amount")
	w := NewCSVWriter(nopCloser{&buf}, schema)

	rec := &record.Record{Schema: schema, LineCode: "SA17", Values: []record.Value{strValue("C1"), strValue("1000.00")}}
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.Finish())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "filer_committee_id_number"))
	assert.Equal(t, 3, strings.Count(out, "\n")) // header + 2 rows
}

type stubWriter struct {
	writes  int
	finishN int
}

func (s *stubWriter) WriteRecord(*record.Record) error { s.writes++; return nil }
func (s *stubWriter) Finish() error                     { s.finishN++; return nil }

type stubFactory struct {
	made map[string]*stubWriter
}

func (f *stubFactory) MakeWriter(schema *record.RecordSchema) (RecordWriter, error) {
	if f.made == nil {
		f.made = map[string]*stubWriter{}
	}
	w := &stubWriter{}
	f.made[schema.Code] = w
	return w, nil
}

func TestMultiRecordWriter_DispatchesBySchemaCode(t *testing.T) {
	factory := &stubFactory{}
	m := NewMultiRecordWriter(factory)

	sa17 := schemaFor("SA17", "a")
	sf := schemaFor("SF", "a")

	require.NoError(t, m.WriteRecord(&record.Record{Schema: sa17}))
	require.NoError(t, m.WriteRecord(&record.Record{Schema: sa17}))
	require.NoError(t, m.WriteRecord(&record.Record{Schema: sf}))

	assert.Equal(t, 2, factory.made["SA17"].writes)
	assert.Equal(t, 1, factory.made["SF"].writes)

	require.NoError(t, m.Finish())
	assert.Equal(t, 1, factory.made["SA17"].finishN)
	assert.Equal(t, 1, factory.made["SF"].finishN)
}

func TestNormFormName(t *testing.T) {
	assert.Equal(t, "SA11-A", NormFormName("SA11/A"))
}

type memSink struct {
	batches []Batch
	closed  bool
}

func (m *memSink) WriteBatch(b Batch) error { m.batches = append(m.batches, b); return nil }
func (m *memSink) Close() error             { m.closed = true; return nil }

func TestBatchingWriter_FlushesOnCapacity(t *testing.T) {
	schema := schemaFor("SA17", "a", "b")
	sink := &memSink{}
	w := NewBatchingWriter(sink, schema, 2)

	rec := &record.Record{Schema: schema, Values: []record.Value{strValue("x"), strValue("y")}}
	require.NoError(t, w.WriteRecord(rec))
	assert.Empty(t, sink.batches, "should not flush before capacity reached")
	require.NoError(t, w.WriteRecord(rec))
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0].Columns[0], 2)
}

func TestBatchingWriter_FinishFlushesPartialBatch(t *testing.T) {
	schema := schemaFor("SA17", "a", "b")
	sink := &memSink{}
	w := NewBatchingWriter(sink, schema, 10)

	rec := &record.Record{Schema: schema, Values: []record.Value{strValue("x"), strValue("y")}}
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.Finish())

	require.Len(t, sink.batches, 1)
	assert.True(t, sink.closed)
}

func TestBatchingWriter_PadsShortRecords(t *testing.T) {
	schema := schemaFor("SA17", "a", "b", "c")
	sink := &memSink{}
	w := NewBatchingWriter(sink, schema, 1)

	rec := &record.Record{Schema: schema, Values: []record.Value{strValue("x")}}
	require.NoError(t, w.WriteRecord(rec))
	require.Len(t, sink.batches, 1)
	for _, col := range sink.batches[0].Columns {
		assert.Len(t, col, 1)
	}
	assert.True(t, sink.batches[0].Columns[1][0].IsAbsent())
}
