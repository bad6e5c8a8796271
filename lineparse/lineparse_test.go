package lineparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralParser_Success(t *testing.T) {
	raw := []string{"SA17", "C00101766", "CONTRIBUTOR ORG", "1000.00", "", ""}
	rec, err := LiteralParser{}.Parse("8.3", raw)
	require.NoError(t, err)
	assert.Equal(t, "SA17", rec.LineCode)
	v, ok := rec.GetValue("filer_committee_id_number")
	require.True(t, ok)
	assert.Equal(t, "C00101766", v.String())
}

func TestLiteralParser_TooManyValues(t *testing.T) {
	raw := []string{"SF", "C1", "payee", "date", "amount", "committee", "memo", "text", "one", "extra too many"}
	_, err := LiteralParser{}.Parse("8.3", raw)
	require.Error(t, err)
}

func TestLiteralParser_FewerValuesThanSchema(t *testing.T) {
	raw := []string{"SF", "C1"}
	rec, err := LiteralParser{}.Parse("8.3", raw)
	require.NoError(t, err)
	assert.Len(t, rec.Values, 1)
	assert.Greater(t, len(rec.Schema.Fields), len(rec.Values))
}

func TestLiteralParser_SchemaMiss(t *testing.T) {
	raw := []string{"ZZZ", "a", "b"}
	_, err := LiteralParser{}.Parse("8.3", raw)
	require.Error(t, err)
}

func TestLiteralParser_EmptyLine(t *testing.T) {
	_, err := LiteralParser{}.Parse("8.3", []string{})
	require.Error(t, err)
}

func TestCoercingParser_PadsMissingFields(t *testing.T) {
	raw := []string{"SF", "C1"}
	rec, err := CoercingParser{}.Parse("8.3", raw)
	require.NoError(t, err)
	assert.Equal(t, len(rec.Schema.Fields), len(rec.Values))
	last, ok := rec.GetValue("memo_text_description")
	require.True(t, ok)
	assert.True(t, last.IsAbsent())
}

func TestCoercingParser_ExtrasBecomeStrings(t *testing.T) {
	raw := make([]string, 0)
	raw = append(raw, "SF", "C1", "payee", "20240101", "1000.00", "D1", "X", "memo text", "yes", "unexpected extra field")
	rec, err := CoercingParser{}.Parse("8.3", raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw)-1, len(rec.Values))
	extra := rec.Values[len(rec.Values)-1]
	assert.Equal(t, "unexpected extra field", extra.String())
}

func TestCoercingParser_NeverStructurallyErrors(t *testing.T) {
	raw := []string{"SA17", "C1", "org", "not-a-valid-date-but-field-is-string-anyway"}
	_, err := CoercingParser{}.Parse("8.3", raw)
	require.NoError(t, err)
}

func TestCoercingParser_SchemaMissStillErrors(t *testing.T) {
	_, err := CoercingParser{}.Parse("8.3", []string{"ZZZ", "a"})
	require.Error(t, err)
}
