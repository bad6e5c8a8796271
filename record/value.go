// Package record defines the typed value model and the record/schema types
// that the rest of this module's pipeline resolves, parses, and writes.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// ValueType is the parallel tag enum for Value: it names a field's target
// type without carrying a value.
type ValueType int

const (
	String ValueType = iota
	Integer
	Float
	Date
	Boolean
)

func (t ValueType) String() string {
	switch t {
	case String:
		return "String"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Date:
		return "Date"
	case Boolean:
		return "Boolean"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value is a tagged union over {String, Integer, Float, Date, Boolean}.
// Exactly one of the typed pointer fields is meaningful, selected by Typ;
// a nil pointer for that field means the value is absent (the source field
// was empty, or coercion failed under the lenient policy).
type Value struct {
	Typ  ValueType
	Str  *string
	Int  *int64
	Flt  *float64
	Dt   *civil.Date
	Bool *bool
}

func StringValue(s *string) Value { return Value{Typ: String, Str: s} }
func IntValue(i *int64) Value     { return Value{Typ: Integer, Int: i} }
func FloatValue(f *float64) Value { return Value{Typ: Float, Flt: f} }
func DateValue(d *civil.Date) Value {
	return Value{Typ: Date, Dt: d}
}
func BoolValue(b *bool) Value { return Value{Typ: Boolean, Bool: b} }

// IsAbsent reports whether the value's payload is absent.
func (v Value) IsAbsent() bool {
	switch v.Typ {
	case String:
		return v.Str == nil
	case Integer:
		return v.Int == nil
	case Float:
		return v.Flt == nil
	case Date:
		return v.Dt == nil
	case Boolean:
		return v.Bool == nil
	default:
		return true
	}
}

// String renders the value's natural lexical form for downstream text
// encoders. An absent value always renders as the empty string.
func (v Value) String() string {
	switch v.Typ {
	case String:
		if v.Str == nil {
			return ""
		}
		return *v.Str
	case Integer:
		if v.Int == nil {
			return ""
		}
		return strconv.FormatInt(*v.Int, 10)
	case Float:
		if v.Flt == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Flt, 'g', -1, 64)
	case Date:
		if v.Dt == nil {
			return ""
		}
		return v.Dt.String()
	case Boolean:
		if v.Bool == nil {
			return ""
		}
		return strconv.FormatBool(*v.Bool)
	default:
		return ""
	}
}

// Equal reports structural equality. String comparisons are case-sensitive.
func (v Value) Equal(other Value) bool {
	if v.Typ != other.Typ {
		return false
	}
	if v.IsAbsent() != other.IsAbsent() {
		return false
	}
	if v.IsAbsent() {
		return true
	}
	switch v.Typ {
	case String:
		return *v.Str == *other.Str
	case Integer:
		return *v.Int == *other.Int
	case Float:
		return *v.Flt == *other.Flt
	case Date:
		return v.Dt.String() == other.Dt.String()
	case Boolean:
		return *v.Bool == *other.Bool
	default:
		return false
	}
}

// ParseError reports a raw string that failed to coerce to a ValueType.
type ParseError struct {
	Typ ValueType
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Raw, e.Typ, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse is the only site where string->typed coercion occurs. An absent or
// whitespace-only raw yields the absent variant of t. Otherwise raw is
// trimmed and parsed with the conventional syntax for t; failure returns a
// *ParseError.
//
// Date is asymmetric by design: Parse expects strict YYYYMMDD, while
// Value.String renders YYYY-MM-DD. parse(stringify(x)) therefore does not
// round-trip for Date; every other type's parse/stringify pair does.
func (t ValueType) Parse(raw *string) (Value, error) {
	if raw == nil {
		return t.absent(), nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return t.absent(), nil
	}
	switch t {
	case String:
		s := trimmed
		return StringValue(&s), nil
	case Integer:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Typ: t, Raw: trimmed, Err: err}
		}
		return IntValue(&i), nil
	case Float:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, &ParseError{Typ: t, Raw: trimmed, Err: err}
		}
		return FloatValue(&f), nil
	case Date:
		d, err := parseDate(trimmed)
		if err != nil {
			return Value{}, &ParseError{Typ: t, Raw: trimmed, Err: err}
		}
		return DateValue(&d), nil
	case Boolean:
		b, err := parseStrictBool(trimmed)
		if err != nil {
			return Value{}, &ParseError{Typ: t, Raw: trimmed, Err: err}
		}
		return BoolValue(&b), nil
	default:
		return Value{}, &ParseError{Typ: t, Raw: trimmed, Err: fmt.Errorf("unknown value type")}
	}
}

// absent returns the absent variant of t.
func (t ValueType) absent() Value {
	switch t {
	case String:
		return StringValue(nil)
	case Integer:
		return IntValue(nil)
	case Float:
		return FloatValue(nil)
	case Date:
		return DateValue(nil)
	case Boolean:
		return BoolValue(nil)
	default:
		return Value{Typ: t}
	}
}

// parseDate expects exactly YYYYMMDD.
func parseDate(raw string) (civil.Date, error) {
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// parseStrictBool accepts only the lowercase tokens true/false, unlike the
// looser strconv.ParseBool (which also accepts "1", "T", "TRUE", ...).
func parseStrictBool(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("not a strict boolean literal: %q", raw)
	}
}
