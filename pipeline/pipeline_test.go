package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickCrews/feco3/lineparse"
	"github.com/NickCrews/feco3/record"
)

func sampleFiling() string {
	return strings.Join([]string{
		"HDR,8.3,NGP8",
		"F3X,C00101766,CONTINENTAL AIRLINES PAC,Q1,20240101,20240331,20240401",
		"SA17,C00101766,SOME ORG,1000.00,,",
		"SA17,C00101766,ANOTHER ORG,2000.00,,",
	}, "\n") + "\n"
}

func TestPipeline_GetHeader(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	h, err := p.GetHeader()
	require.NoError(t, err)
	assert.Equal(t, "8.3", h.FECVersion)
	assert.Equal(t, "NGP8", h.SoftwareName)
}

func TestPipeline_GetHeader_Memoized(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	h1, err := p.GetHeader()
	require.NoError(t, err)
	h2, err := p.GetHeader()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, HeaderReady, p.state)
}

func TestPipeline_GetCover(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	c, err := p.GetCover()
	require.NoError(t, err)
	assert.Equal(t, "F3X", c.FormType)
	assert.Equal(t, "C00101766", c.FilerCommitteeID)
	assert.Equal(t, CoverReady, p.state)
}

func TestPipeline_NextLine_ThenExhausted(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	_, err := p.GetCover()
	require.NoError(t, err)

	rec, err := p.NextLine()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "SA17", rec.LineCode)

	rec, err = p.NextLine()
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec, err = p.NextLine()
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, Exhausted, p.state)
}

func TestPipeline_NextLine_DrivesThroughCoverAutomatically(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	rec, err := p.NextLine()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "SA17", rec.LineCode)
	assert.GreaterOrEqual(t, p.state, CoverReady)
}

type collectingWriter struct {
	codes []string
}

func (c *collectingWriter) WriteRecord(rec *record.Record) error {
	c.codes = append(c.codes, rec.LineCode)
	return nil
}
func (c *collectingWriter) Finish() error { return nil }

func TestPipeline_Process(t *testing.T) {
	p := New(strings.NewReader(sampleFiling()), lineparse.CoercingParser{})
	w := &collectingWriter{}
	require.NoError(t, p.Process(w))
	assert.Equal(t, []string{"SA17", "SA17"}, w.codes)
}
