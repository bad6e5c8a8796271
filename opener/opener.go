// Package opener resolves a byte source specification — a filesystem path,
// a file:// URI, or an in-memory buffer for tests — to an io.ReadCloser.
//
// Unlike Carlodf-cetl's opener package, which resolves one spec to a *slice*
// of Openers (globbing "/data/*.csv" into one Opener per match, for a single
// multi-file ETL load), a .FEC filing is always exactly one source: FromSpec
// resolves to exactly one Opener, and batch sequencing across filings is
// pipeline.BatchDriver's job, one spec at a time.
package opener

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Opener lazily resolves a single named byte source.
type Opener interface {
	// Open returns a readable stream for the source. Callers own the
	// returned ReadCloser and must Close it.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name is the stable identity of this source, used in log fields and
	// as a connector.SrcMeta.Name.
	Name() string
}

// Factory constructs an Opener from a source specification string.
//
// The spec format depends on the scheme. For example:
//
//	file opener: "file:///path/to/filing.fec" or a bare "/local/path.fec"
//
// Factory is registered by scheme via RegisterOpener.
type Factory func(spec string) (Opener, error)

// scheme identifies the access mechanism a spec string names.
type scheme string

const (
	schemeUnknown scheme = "unknown"
	schemeFile    scheme = "file"
)

var (
	registryMu sync.RWMutex
	registry   = map[scheme]Factory{}
)

// RegisterOpener associates a scheme with a Factory. Call this from an
// init() in the package implementing the opener. Registration is global
// for the process lifetime; registering the same scheme twice is an error.
func RegisterOpener(s scheme, f Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[s]; ok {
		return fmt.Errorf("opener: scheme %q already registered", s)
	}
	registry[s] = f
	return nil
}

// FromSpec resolves a source specification string to an Opener by
// inferring its scheme: "file://" URIs and bare paths both resolve via
// schemeFile; anything else is an error.
func FromSpec(spec string) (Opener, error) {
	s := detectScheme(spec)
	if s == schemeUnknown {
		return nil, fmt.Errorf("opener: unknown scheme for %q", spec)
	}
	registryMu.RLock()
	f, ok := registry[s]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("opener: no opener registered for scheme %q (spec %q)", s, spec)
	}
	return f(spec)
}

func detectScheme(spec string) scheme {
	trimmed := strings.ToLower(strings.TrimSpace(spec))
	switch {
	case strings.HasPrefix(trimmed, "file://"):
		return schemeFile
	case !strings.Contains(trimmed, "://"):
		return schemeFile
	default:
		return schemeUnknown
	}
}

func init() {
	if err := RegisterOpener(schemeFile, newFileFactory); err != nil {
		panic(err)
	}
}
