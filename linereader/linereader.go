// Package linereader provides a lazy, finite sequence of raw field vectors
// over a delimited byte stream. It is the minimal core of
// Carlodf-cetl/transform's csvDecoder/csvRowIterator, stripped of header
// inference and multi-source boundary handling: a .FEC filing has no header
// row of its own (delimiter detection already happened in package header)
// and is always a single source.
package linereader

import (
	"encoding/csv"
	"io"
)

// Reader yields one raw field vector at a time from an underlying delimited
// byte stream. It is not safe for concurrent use, and is not restartable:
// once Next returns false, the Reader is exhausted.
type Reader struct {
	csv *csv.Reader
	err error
}

// New constructs a Reader over src, splitting on delimiter. Lines may have
// differing field counts (FieldsPerRecord = -1): the schema-driven line
// parser (package lineparse), not this reader, is responsible for
// reconciling a raw field count against a resolved schema.
func New(src io.Reader, delimiter byte) *Reader {
	r := csv.NewReader(src)
	r.Comma = rune(delimiter)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = false
	// Real .FEC filings carry bare '"' in free-text fields (filer-entered
	// names, memo text) that isn't part of a quoted field; encoding/csv's
	// strict quoting rules reject those unless LazyQuotes tolerates them.
	r.LazyQuotes = true
	return &Reader{csv: r}
}

// Next reads the next raw field vector. It returns (fields, true) on
// success, or (nil, false) at end of stream or after an I/O/format error;
// call Err to distinguish the two. Once Next returns false, it will keep
// returning false — a corrupt line does not cause the Reader to silently
// resume past it.
func (r *Reader) Next() ([]string, bool) {
	if r.err != nil {
		return nil, false
	}
	fields, err := r.csv.Read()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return nil, false
	}
	return fields, true
}

// Err returns the first non-EOF error encountered, or nil if the stream was
// exhausted cleanly.
func (r *Reader) Err() error {
	return r.err
}
