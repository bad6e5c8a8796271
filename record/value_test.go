package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTypeParse_Absent(t *testing.T) {
	for _, typ := range []ValueType{String, Integer, Float, Date, Boolean} {
		v, err := typ.Parse(nil)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent(), "nil raw should be absent for %s", typ)

		blank := "   "
		v, err = typ.Parse(&blank)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent(), "whitespace-only raw should be absent for %s", typ)
	}
}

func TestValueTypeParse_String(t *testing.T) {
	raw := "  hello  "
	v, err := String.Parse(&raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String())
}

func TestValueTypeParse_Integer(t *testing.T) {
	raw := "42"
	v, err := Integer.Parse(&raw)
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	bad := "not-a-number"
	_, err = Integer.Parse(&bad)
	require.Error(t, err)
}

func TestValueTypeParse_Float(t *testing.T) {
	for _, raw := range []string{"3.14", "1e10", "-2.5e-3"} {
		r := raw
		v, err := Float.Parse(&r)
		require.NoError(t, err)
		assert.False(t, v.IsAbsent())
	}
}

func TestValueTypeParse_Date(t *testing.T) {
	raw := "20240102"
	v, err := Date.Parse(&raw)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v.String())

	bad := "2024-01-02" // wrong input format
	_, err = Date.Parse(&bad)
	require.Error(t, err)
}

func TestValueTypeParse_Boolean_Strict(t *testing.T) {
	for _, raw := range []string{"true", "false"} {
		r := raw
		v, err := Boolean.Parse(&r)
		require.NoError(t, err)
		assert.Equal(t, raw, v.String())
	}
	for _, raw := range []string{"TRUE", "True", "1", "T", "yes"} {
		r := raw
		_, err := Boolean.Parse(&r)
		require.Error(t, err, "strconv.ParseBool would accept %q but this policy must not", raw)
	}
}

func TestValueEqual(t *testing.T) {
	a, b := "x", "x"
	v1 := StringValue(&a)
	v2 := StringValue(&b)
	assert.True(t, v1.Equal(v2))

	v3 := StringValue(nil)
	v4 := StringValue(nil)
	assert.True(t, v3.Equal(v4))
	assert.False(t, v1.Equal(v3))
}

// TestValueRoundTrip covers the round-trip invariant for types whose parse
// input format and String() output format coincide. Date is intentionally
// exempted: input is strict YYYYMMDD, output is YYYY-MM-DD, by design (see
// DESIGN.md), so parse(stringify(x)) fails for Date specifically: the
// rendered YYYY-MM-DD is not valid Parse input.
func TestValueRoundTrip(t *testing.T) {
	cases := []struct {
		typ ValueType
		raw string
	}{
		{String, "hello"},
		{Integer, "42"},
		{Boolean, "true"},
	}
	for _, c := range cases {
		raw := c.raw
		v, err := c.typ.Parse(&raw)
		require.NoError(t, err)
		rendered := v.String()
		v2, err := c.typ.Parse(&rendered)
		require.NoError(t, err)
		assert.True(t, v.Equal(v2))
	}

	absent := ""
	v, err := String.Parse(&absent)
	require.NoError(t, err)
	assert.True(t, v.IsAbsent())
	rendered := v.String()
	assert.Equal(t, "", rendered)
}
