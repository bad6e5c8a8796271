// Package connector wraps an opener.Opener's stream with byte-offset
// position tracking, for error context and for pipeline.BatchDriver's
// sequencing of multiple filings.
//
// Carlodf-cetl's connector package multiplexes N openers into one
// io.ReadCloser via a pipe-fed goroutine, since its ETL loads treat a
// directory of sources as a single logical stream. A .FEC filing is never
// multiple sources internally — BatchDriver sequences whole filings one at
// a time, each through its own Pipeline — so this package only needs the
// single-source half of that idea: a reader that knows which source it is
// and how far into it the caller has read.
package connector

import "io"

// SrcMeta identifies a byte source and a position within it.
type SrcMeta struct {
	Name       string
	ByteOffset int64
}

// CountingReader wraps a single io.Reader, tracking how many bytes have
// been read from it. It implements io.Reader; callers that also need to
// close the underlying source should retain their own io.Closer reference.
type CountingReader struct {
	r      io.Reader
	name   string
	offset int64
}

// NewCountingReader wraps r, reporting name as the source identity in
// Current().
func NewCountingReader(name string, r io.Reader) *CountingReader {
	return &CountingReader{r: r, name: name}
}

// Read proxies to the underlying reader, advancing the tracked offset by
// however many bytes were actually read, even when Read also returns an
// error (so partial reads still count).
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.offset += int64(n)
	return n, err
}

// Current returns a snapshot of the source name and bytes read so far.
func (c *CountingReader) Current() SrcMeta {
	return SrcMeta{Name: c.name, ByteOffset: c.offset}
}
