package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphsheet/internal/failure"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Rows)
	assert.Equal(t, 20, cfg.Cols)
	assert.Equal(t, 200, cfg.Threshold)
	assert.Len(t, cfg.Slots, 225)
	assert.Equal(t, 180, cfg.BaseCells())

	first := cfg.Slots[0]
	assert.Equal(t, "a_tp", first.Name)
	assert.Equal(t, rune(0xF1900), first.Codepoint)
	assert.Equal(t, []string{"a"}, first.Ligature)
	assert.Equal(t, "r0c0", first.Cell)

	akesi := cfg.Slots[1]
	assert.Equal(t, []string{"a", "k", "e", "s", "i"}, akesi.Ligature)

	assert.Equal(t, "cartouche-extension", cfg.Slots[180].Name)
	assert.Equal(t, rune(0xF1992), cfg.Slots[180].Codepoint)
	assert.Equal(t, "a", cfg.Slots[181].Name)
	assert.Equal(t, "ni-rot45", cfg.Slots[204].Name)
	assert.Equal(t, "lukin-rot315", cfg.Slots[224].Name)

	// Unused cells of the last rows stay unnamed.
	assert.False(t, cfg.Slots[179].Named())
	assert.Equal(t, "r8c19", cfg.Slots[179].Cell)
}

func TestDefaultLayoutAnchors(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	l := cfg.Layout

	assert.Equal(t, "cartouche-open", cfg.Slots[l.CartoucheOpen.Index(cfg.Cols)].Name)
	assert.Equal(t, "cartouche-close", cfg.Slots[l.CartoucheClose.Index(cfg.Cols)].Name)
	assert.Equal(t, "o_tp", cfg.Slots[l.VowelO.Index(cfg.Cols)].Name)
	assert.Equal(t, "n_tp", cfg.Slots[l.LetterN.Index(cfg.Cols)].Name)

	w, ok := l.Letter('w')
	require.True(t, ok)
	assert.Equal(t, "w", cfg.Slots[w.Index(cfg.Cols)].Name)

	for _, d := range l.Directional {
		assert.Equal(t, d.Base, cfg.Slots[d.Anchor().Index(cfg.Cols)].Name)
	}
	assert.True(t, l.Exempt(6, 0))
	assert.True(t, l.Exempt(6, 15))
	assert.False(t, l.Exempt(6, 2))
}

func TestLoadYAMLWithoutLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.yaml")
	doc := `
rows: 9
cols: 20
threshold_value: 180
glyphs:
  - name: pona
    codepoint: "U+F1960"
    ligature: p o n a
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	// 1 slot cannot cover 180 cells.
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
}

func TestLoadRejectsDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, failure.ErrIO))
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	cfg.Slots[170].Name = "pona"
	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
	assert.Contains(t, err.Error(), "slot 170")
}

func TestValidateRejectsPathNames(t *testing.T) {
	for _, name := range []string{"../x", "a/b", ".hidden", "two words"} {
		assert.Error(t, ValidateName(name), name)
	}
	assert.NoError(t, ValidateName("ni-rot90"))
}

func TestParseCodepoint(t *testing.T) {
	for in, want := range map[string]rune{
		"":        0,
		"61":      'a',
		"0x5f":    '_',
		"U+F1900": 0xF1900,
	} {
		got, err := ParseCodepoint(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCodepoint("zz")
	assert.Error(t, err)
	_, err = ParseCodepoint("d800")
	assert.Error(t, err)
}

// writeDocument stores the default document, altered by edit, as JSON.
func writeDocument(t *testing.T, edit func(doc map[string]any)) string {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(defaultDocument, &doc))
	edit(doc)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sheet.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDocumentCustomListIsApplied(t *testing.T) {
	path := writeDocument(t, func(doc map[string]any) {
		doc["custom"] = []any{map[string]any{"slot": 26, "name": "pona"}}
	})
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []CustomName{{Slot: 26, Name: "pona"}}, cfg.Custom)
	require.Equal(t, "kili", cfg.Slots[26].Name)

	require.NoError(t, cfg.Customize(nil))
	assert.Equal(t, 26, cfg.IndexOf("pona"))
	assert.Equal(t, rune(0xF1954), cfg.Slots[26].Codepoint)
	assert.Equal(t, -1, cfg.IndexOf("kili"))
	assert.False(t, cfg.Slots[84].Named())
}

func TestCommandLineRequestsFollowDocument(t *testing.T) {
	path := writeDocument(t, func(doc map[string]any) {
		doc["custom"] = []any{map[string]any{"slot": 26, "name": "pona"}}
	})
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.Customize([]CustomName{{Slot: 27, Name: "pona"}}))
	assert.Equal(t, 27, cfg.IndexOf("pona"))
	assert.False(t, cfg.Slots[26].Named())
}

func TestValidateCountsSynthesizedSlots(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Layout.SynthesizedCells())
	assert.Equal(t, cfg.BaseCells()+45, len(cfg.Slots))

	path := writeDocument(t, func(doc map[string]any) {
		glyphs := doc["glyphs"].([]any)
		doc["glyphs"] = glyphs[:len(glyphs)-1]
	})
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
	assert.Contains(t, err.Error(), "224 glyph slots")
}
