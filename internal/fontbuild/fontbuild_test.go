package fontbuild

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

func TestFeaturesLongestFirst(t *testing.T) {
	slots := []config.GlyphSlot{
		{Name: "a_tp", Codepoint: 0xF1900, Ligature: []string{"a"}},
		{},
		{Name: "pona", Codepoint: 0xF1954, Ligature: []string{"p", "o", "n", "a"}},
		{Name: "ike", Codepoint: 0xF190D, Ligature: []string{"i", "k", "e"}},
		{Name: "period", Codepoint: '.'},
	}
	lines := strings.Split(strings.TrimSpace(Features(slots)), "\n")

	assert.Equal(t, []string{
		"lookup single_tokens {",
		"  sub a by a_tp;",
		"} single_tokens;",
		"",
		"feature liga {",
		"  sub p o n a space by pona;",
		"  sub p o n a by pona;",
		"  sub i k e space by ike;",
		"  sub i k e by ike;",
		"  sub a space by a_tp;",
		"  lookup single_tokens;",
		"} liga;",
	}, lines)
}

func TestFeaturesWithoutSingleTokens(t *testing.T) {
	fea := Features([]config.GlyphSlot{
		{Name: "ike", Codepoint: 0xF190D, Ligature: []string{"i", "k", "e"}},
	})
	assert.NotContains(t, fea, "lookup")
	assert.Equal(t, "feature liga {\n  sub i k e space by ike;\n  sub i k e by ike;\n} liga;\n", fea)
}

func TestCentering(t *testing.T) {
	assert.True(t, CenterVertical(0xF1954))
	assert.True(t, CenterHorizontal(0xF1954))
	assert.True(t, CenterVertical('a'))
	assert.False(t, CenterVertical('k'))
	assert.True(t, CenterHorizontal('k'))
	assert.False(t, CenterHorizontal('K'))
	assert.True(t, CenterVertical(':'))
	assert.False(t, CenterVertical(0xF1990), "cartouche sits on the baseline")
}

func TestDescriptorCoversNamedSlots(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	meta := config.Metadata{}.Resolve(cfg)

	dir := t.TempDir()
	d := NewDescriptor(cfg, meta, "/svg", "/work/MyFont.fea", "/out/MyFont.ttf")
	require.Len(t, d.Glyphs, cfg.NamedSlots())
	assert.Equal(t, Advance, d.Advance)
	assert.Equal(t, VerticalAdvance, d.VAdvance)

	byName := map[string]GlyphEntry{}
	for _, g := range d.Glyphs {
		byName[g.Name] = g
	}
	assert.True(t, byName["cartouche-extension"].ZeroWidth)
	assert.True(t, byName["underscore"].ZeroWidth)
	assert.False(t, byName["pona"].ZeroWidth)
	assert.Equal(t, filepath.Join("/svg", "pona", "pona.svg"), byName["pona"].SVG)

	path := filepath.Join(dir, "MyFont.json")
	require.NoError(t, d.Write(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Descriptor
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "MyFont", back.Family)
	assert.Contains(t, back.Spacing, Spacing{Codepoint: ' ', Width: SpaceWidth})
}

func TestUniqueOutput(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "MyFont.ttf"), UniqueOutput(dir, "MyFont"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "MyFont.ttf"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "MyFont (1).ttf"), UniqueOutput(dir, "MyFont.ttf"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "MyFont (1).ttf"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "MyFont (1) (1).ttf"), UniqueOutput(dir, "MyFont"))
}

func TestMissingCompilerIsFatal(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	c := NewCompiler(t.TempDir())
	c.Executable = "fontforge-that-does-not-exist"

	_, err = c.Build(cfg, config.Metadata{}.Resolve(cfg), t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrMissingTool))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not a font"), 0644))
	_, err := Verify(path, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrIO))
}

func TestPreviewListsGlyphs(t *testing.T) {
	slots := []config.GlyphSlot{
		{Name: "pona", Codepoint: 0xF1954, Ligature: []string{"p", "o", "n", "a"}},
		{Name: "tawa-rot45"},
	}
	path := filepath.Join(t.TempDir(), "Mine.html")
	require.NoError(t, WritePreview(path, "Mine.ttf", "Mine", slots))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "U+F1954")
	assert.Contains(t, html, "p o n a")
	assert.Contains(t, html, "tawa-rot45")
	assert.Contains(t, html, "font-family: 'Mine'")
}
