package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectByVersion(t *testing.T) {
	cases := map[string]string{
		"":       "3",
		"2.0":    "2.0",
		"2.0.7":  "2.0",
		"2.1":    "2.1",
		"2.9.1":  "2.1",
		"3":      "3",
		"v3.2":   "3",
		"12.0.0": "3",
	}
	for in, want := range cases {
		p, err := Select(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, p.Version, "sheet version %q", in)
	}
}

func TestSelectRejectsBadVersions(t *testing.T) {
	_, err := Select("1.9")
	assert.Error(t, err)

	_, err = Select("three")
	assert.Error(t, err)
}

func TestProfilesAreValid(t *testing.T) {
	for _, v := range Versions() {
		p, err := Select(v)
		require.NoError(t, err)
		assert.NoError(t, p.Validate())
		assert.Equal(t, 20, p.CellsPerRow(), "profile %s", v)
	}
}

func TestV2CalibrationMatchesPrintedUnits(t *testing.T) {
	p := V20()
	// A row measured at 1640x120 px has 10 px per unit.
	assert.InDelta(t, 80, p.GlyphWidth(1640), 1e-9)
	assert.InDelta(t, 100, p.GlyphHeight(120), 1e-9)
	assert.InDelta(t, 20, p.LeftPadding(1640), 1e-9)
	assert.InDelta(t, 10, p.TopPadding(120), 1e-9)

	// The cartouche shift is half a unit: glyph width / 16 on v2 sheets.
	assert.InDelta(t, 5, p.CartoucheShift(80), 1e-9)
	assert.Equal(t, 5, p.EdgeTrim(80))
	assert.Equal(t, 1, p.EdgeTrim(3))
}
