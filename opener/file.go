package opener

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// File is an Opener backed by a single regular filesystem file. It opens
// lazily: construction never touches the filesystem, so a bad path only
// surfaces as an error from Open.
type File struct {
	Path string
}

// NewFile constructs a File opener for exactly the given path, with no
// glob expansion: one .FEC filing is one file, not a pattern to resolve to
// many (contrast Carlodf-cetl's RegularFileOpenerFactory, which globs a
// spec into a slice of Openers for a directory-of-CSVs ETL load).
func NewFile(path string) File {
	return File{Path: filepath.Clean(path)}
}

// newFileFactory adapts NewFile to the Factory signature, accepting a bare
// path or a "file://" URI.
func newFileFactory(spec string) (Opener, error) {
	path, err := fileSpecToPath(spec)
	if err != nil {
		return nil, err
	}
	return NewFile(path), nil
}

func fileSpecToPath(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if !strings.HasPrefix(strings.ToLower(spec), "file://") {
		return spec, nil
	}
	u, err := url.Parse(spec)
	if err != nil {
		return "", err
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	return filepath.FromSlash(path), nil
}

// Open checks ctx for cancellation, then opens the underlying file.
// os.Open itself is not cancellable once begun; checking ctx first only
// gives a fast short-circuit for an already-canceled context.
func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return os.Open(f.Path)
}

// Name returns the cleaned filesystem path, the stable identity of this
// source.
func (f File) Name() string {
	return f.Path
}
