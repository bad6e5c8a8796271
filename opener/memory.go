package opener

import (
	"bytes"
	"context"
	"io"
)

// InMemorySource is an Opener over an in-memory byte slice, for tests and
// synthetic pipelines where writing a temp file would be unnecessary
// ceremony.
type InMemorySource struct {
	// Data is returned by Open(), wrapped in a fresh reader each call so
	// multiple Open calls are independent.
	Data []byte
	// SourceName is the identity returned by Name().
	SourceName string
}

// Open returns ctx.Err() if ctx is already canceled; otherwise it succeeds,
// returning a reader over a copy of the Data slice header (not the
// underlying bytes; callers must not mutate Data concurrently with a read).
func (s InMemorySource) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// Name returns SourceName.
func (s InMemorySource) Name() string {
	return s.SourceName
}
