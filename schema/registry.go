// Package schema resolves a (version, line code) pair to the ordered field
// list that governs how that line's raw fields are parsed.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/record"
)

//go:embed mappings.json
var mappingsJSON []byte

// mappingEntry and versionEntry mirror mappings.json's shape: an ordered
// JSON array (not a JSON object) because first-match-wins ordering, both
// across line-code patterns and across version patterns within one line
// code (see the F3X entry's 8.x-specific fields vs. its fallback), must
// survive decoding. A JSON object's key order is not preserved by
// encoding/json, so the table is authored as an array of
// {code, versions} objects instead.
//
// Each version entry's fields list carries the line code's own column name
// first (e.g. "form_type"), matching mappings.json's documentation value —
// it is not an actual schema field, since the line code is already split
// off into Record.LineCode before the remaining raw fields are parsed
// against the schema. load skips it, mirroring lookup.rs's
// `fields.iter().skip(1)`.
type mappingEntry struct {
	Code     string          `json:"code"`
	Versions []versionSource `json:"versions"`
}

type versionSource struct {
	Pattern string   `json:"pattern"`
	Fields  []string `json:"fields"`
}

type versionEntry struct {
	pattern *regexp.Regexp
	fields  []string
}

type lineCodeEntry struct {
	pattern  *regexp.Regexp
	versions []versionEntry
}

// FieldTyper assigns a ValueType to a field name. The default typer treats
// every field as String, mirroring the original Rust source's own
// "TODO: look up the types in types.json" placeholder: mappings.json
// carries only field names, not types, so a schema consumer that needs
// non-string coercion must supply its own typer.
type FieldTyper func(lineCode, fieldName string) record.ValueType

// DefaultFieldTyper types every field as record.String.
func DefaultFieldTyper(_, _ string) record.ValueType { return record.String }

var (
	loadOnce sync.Once
	table    []lineCodeEntry
	loadErr  error

	cacheMu sync.Mutex
	cache   = map[[2]string]*record.RecordSchema{}
)

func load() {
	var entries []mappingEntry
	if err := json.Unmarshal(mappingsJSON, &entries); err != nil {
		loadErr = fmt.Errorf("schema: decode mappings.json: %w", err)
		return
	}
	out := make([]lineCodeEntry, 0, len(entries))
	for _, e := range entries {
		re, err := regexp.Compile("(?i)" + e.Code)
		if err != nil {
			loadErr = fmt.Errorf("schema: compile line code pattern %q: %w", e.Code, err)
			return
		}
		vs := make([]versionEntry, 0, len(e.Versions))
		for _, v := range e.Versions {
			vre, err := regexp.Compile("(?i)" + v.Pattern)
			if err != nil {
				loadErr = fmt.Errorf("schema: compile version pattern %q: %w", v.Pattern, err)
				return
			}
			fields := v.Fields
			if len(fields) > 0 {
				fields = fields[1:]
			}
			vs = append(vs, versionEntry{pattern: vre, fields: fields})
		}
		out = append(out, lineCodeEntry{pattern: re, versions: vs})
	}
	table = out
}

// Error reports a (version, line code) pair with no matching schema.
type Error struct {
	Version  string
	LineCode string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: no schema for line code %q at version %q", e.LineCode, e.Version)
}

// Resolve looks up the schema for lineCode at version, trying line-code
// patterns then version patterns in document order and returning the first
// match. A nil typer defaults to DefaultFieldTyper. Resolved schemas are
// memoized: repeated calls for the same (version, lineCode) return the
// identical *record.RecordSchema pointer, so schema identity can stand in
// for schema equality.
//
// The memoization key is (version, lineCode) only; typer is not part of
// it. The pipeline only ever calls Resolve with a nil typer, so this never
// matters in practice, but a caller mixing a custom FieldTyper with the
// default one for the same (version, lineCode) will silently get whichever
// typer resolved it first.
func Resolve(version, lineCode string, typer FieldTyper) (*record.RecordSchema, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	if typer == nil {
		typer = DefaultFieldTyper
	}

	key := [2]string{version, lineCode}
	cacheMu.Lock()
	if s, ok := cache[key]; ok {
		cacheMu.Unlock()
		return s, nil
	}
	cacheMu.Unlock()

	for _, codeEntry := range table {
		if !codeEntry.pattern.MatchString(lineCode) {
			continue
		}
		for _, v := range codeEntry.versions {
			if !v.pattern.MatchString(version) {
				continue
			}
			fields := make([]record.FieldSchema, len(v.fields))
			for i, name := range v.fields {
				fields[i] = record.FieldSchema{Name: name, Typ: typer(lineCode, name)}
			}
			s := &record.RecordSchema{Code: lineCode, Fields: fields}

			cacheMu.Lock()
			if existing, ok := cache[key]; ok {
				cacheMu.Unlock()
				return existing, nil
			}
			cache[key] = s
			cacheMu.Unlock()

			logrus.WithFields(logrus.Fields{"version": version, "line_code": lineCode}).
				Debug("schema: resolved")
			return s, nil
		}
	}
	return nil, &Error{Version: version, LineCode: lineCode}
}
