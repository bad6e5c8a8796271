// Package lineparse turns a raw delimited field vector into a
// schema-typed record.Record, under one of two coercion policies.
package lineparse

import (
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/record"
	"github.com/NickCrews/feco3/schema"
)

// Parser parses one raw line of a .FEC file against the schema resolved
// for the filing's version and the line's own record type code.
type Parser interface {
	Parse(version string, raw []string) (*record.Record, error)
}

// RecordParseError reports a malformed line.
type RecordParseError struct {
	Message string
}

func (e *RecordParseError) Error() string { return fmt.Sprintf("lineparse: %s", e.Message) }

// valuesFunc is the extension point the Rust source expresses as
// LineParser::parse_values: given a resolved schema and the raw fields
// remaining after the line code, produce the typed value list.
type valuesFunc func(schema *record.RecordSchema, raw []string) ([]record.Value, error)

// parseLine is the shared driver both policies embed (the Go equivalent of
// LineParser::parse_line's default trait method): split off the line code,
// resolve its schema, and delegate the per-policy coercion to fn.
func parseLine(version string, raw []string, fn valuesFunc) (*record.Record, error) {
	if len(raw) == 0 {
		return nil, &RecordParseError{Message: "empty line, no line code"}
	}
	for i, f := range raw {
		if !utf8.ValidString(f) {
			return nil, &RecordParseError{Message: fmt.Sprintf("field %d is not valid UTF-8", i)}
		}
	}
	lineCode := raw[0]
	rest := raw[1:]

	sch, err := schema.Resolve(version, lineCode, nil)
	if err != nil {
		return nil, err
	}

	values, err := fn(sch, rest)
	if err != nil {
		return nil, err
	}
	return &record.Record{Schema: sch, LineCode: lineCode, Values: values}, nil
}

// LiteralParser fails if a line carries more raw fields than its schema
// has, and leaves a record short when the schema has unused trailing
// fields.
type LiteralParser struct{}

func (LiteralParser) Parse(version string, raw []string) (*record.Record, error) {
	return parseLine(version, raw, literalValues)
}

func literalValues(sch *record.RecordSchema, raw []string) ([]record.Value, error) {
	values := make([]record.Value, 0, len(raw))
	for i, rawValue := range raw {
		if i >= len(sch.Fields) {
			return nil, &RecordParseError{Message: "too many values"}
		}
		field := sch.Fields[i]
		v, err := field.Typ.Parse(fieldOrNil(rawValue))
		if err != nil {
			return nil, &RecordParseError{Message: fmt.Sprintf("field %q: %v", field.Name, err)}
		}
		values = append(values, v)
	}
	if extra := len(sch.Fields) - len(raw); extra > 0 {
		logrus.WithField("extra_schema_fields", extra).Warn("lineparse: schema has unused trailing fields")
	}
	return values, nil
}

// CoercingParser never fails structurally: extra raw fields become String
// values, missing schema fields pad with the absent variant of their type,
// and a field that fails to coerce becomes absent rather than an error.
type CoercingParser struct{}

func (CoercingParser) Parse(version string, raw []string) (*record.Record, error) {
	return parseLine(version, raw, coercingValues)
}

func coercingValues(sch *record.RecordSchema, raw []string) ([]record.Value, error) {
	values := make([]record.Value, 0, max(len(raw), len(sch.Fields)))
	for i, rawValue := range raw {
		if i >= len(sch.Fields) {
			s := rawValue
			values = append(values, record.StringValue(&s))
			continue
		}
		field := sch.Fields[i]
		v, err := field.Typ.Parse(fieldOrNil(rawValue))
		if err != nil {
			logrus.WithFields(logrus.Fields{"field": field.Name, "raw": rawValue}).
				Debug("lineparse: coercion failed, emitting absent value")
			v, err = field.Typ.Parse(nil)
			if err != nil {
				return nil, &RecordParseError{Message: fmt.Sprintf("field %q: %v", field.Name, err)}
			}
		}
		values = append(values, v)
	}
	if extra := len(raw) - len(sch.Fields); extra > 0 {
		logrus.WithField("extra_values", extra).Debug("lineparse: line has more values than schema, kept as String")
	}
	for i := len(raw); i < len(sch.Fields); i++ {
		field := sch.Fields[i]
		v, err := field.Typ.Parse(nil)
		if err != nil {
			return nil, &RecordParseError{Message: fmt.Sprintf("field %q: %v", field.Name, err)}
		}
		values = append(values, v)
	}
	if want := max(len(raw), len(sch.Fields)); len(values) != want {
		panic(fmt.Sprintf("lineparse: coercing policy invariant violated: %d values, wanted %d", len(values), want))
	}
	return values, nil
}

func fieldOrNil(s string) *string {
	return &s
}
