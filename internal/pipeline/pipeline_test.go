package pipeline

import (
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphsheet/internal/config"
	"glyphsheet/internal/diag"
	"glyphsheet/internal/failure"
	"glyphsheet/internal/profile"
	"glyphsheet/internal/testsheet"
)

func writeSheet(t *testing.T, spec testsheet.Spec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	require.NoError(t, imaging.Save(spec.Draw(), path))
	return path
}

func TestRunWritesGlyphTree(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	sheetPath := writeSheet(t, testsheet.Default(profile.V20(), cfg.Rows, cfg.Cols, 4))

	out := t.TempDir()
	work := t.TempDir()
	report, err := Run(Options{
		Sheet:    sheetPath,
		Output:   out,
		Work:     work,
		Metadata: config.Metadata{SheetVersion: "2.0"},
		PNGOnly:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "2.0", report.Profile)
	assert.Equal(t, cfg.Rows, report.Rows)
	assert.Equal(t, len(cfg.Slots), report.Cells)
	assert.Len(t, report.Glyphs.Glyphs, cfg.NamedSlots())
	assert.False(t, report.Spread.Skewed(), "a synthetic sheet is square-on")
	require.Len(t, report.Drift, cfg.Rows)
	for _, d := range report.Drift {
		assert.Zero(t, d.Slope)
	}
	assert.FileExists(t, filepath.Join(out, "a", "a.png"))
	assert.FileExists(t, filepath.Join(out, "pona", "pona.png"))
	assert.FileExists(t, filepath.Join(out, "tawa-rot45", "tawa-rot45.png"))

	// Caller-supplied working directories survive and hold the snapshots.
	for _, name := range []string{diag.GrayFile, diag.ClosedFile, diag.CellsFile} {
		assert.FileExists(t, filepath.Join(work, name))
	}
}

func TestRunRenamesWithCustomRequests(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	sheetPath := writeSheet(t, testsheet.Default(profile.V20(), cfg.Rows, cfg.Cols, 4))

	out := t.TempDir()
	slot := cfg.IndexOf("kili")
	_, err = Run(Options{
		Sheet:    sheetPath,
		Output:   out,
		Metadata: config.Metadata{SheetVersion: "2.0"},
		Custom:   []config.CustomName{{Slot: slot, Name: "pona"}},
		PNGOnly:  true,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "pona", "pona.png"))
	assert.NoDirExists(t, filepath.Join(out, "kili"))
}

func TestRunRejectsDirectorySheet(t *testing.T) {
	_, err := Run(Options{Sheet: t.TempDir(), Output: t.TempDir(), PNGOnly: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
}

func TestRunRejectsDirectoryConfig(t *testing.T) {
	_, err := Run(Options{Sheet: "sheet.png", Output: t.TempDir(), ConfigPath: t.TempDir(), PNGOnly: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
}

func TestRunMissingRowsWritesNothing(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	spec := testsheet.Default(profile.V20(), cfg.Rows, cfg.Cols, 4)
	spec.Skip = func(row int) bool { return row == 4 }
	sheetPath := writeSheet(t, spec)

	out := t.TempDir()
	_, err = Run(Options{Sheet: sheetPath, Output: out, Metadata: config.Metadata{SheetVersion: "2.0"}, PNGOnly: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrGeometry))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRejectsUnsupportedVersion(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	sheetPath := writeSheet(t, testsheet.Default(profile.V20(), cfg.Rows, cfg.Cols, 4))

	_, err = Run(Options{Sheet: sheetPath, Output: t.TempDir(), Metadata: config.Metadata{SheetVersion: "1.4"}, PNGOnly: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
}

// singleGlyphConfig writes a document for the default grid where only
// the cell at row 0, column 0 and the composites copied from it are named.
func singleGlyphConfig(t *testing.T, names map[string]string) string {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)

	glyphs := make([]map[string]string, len(cfg.Slots))
	for i, s := range cfg.Slots {
		glyphs[i] = map[string]string{"cell": s.Cell}
		if name, ok := names[s.Cell]; ok {
			glyphs[i]["name"] = name
		}
	}
	data, err := json.Marshal(map[string]any{
		"rows":   cfg.Rows,
		"cols":   cfg.Cols,
		"glyphs": glyphs,
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "single.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRunSingleMarkLandsInA(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	spec := testsheet.Default(profile.V20(), cfg.Rows, cfg.Cols, 4)
	spec.Mark = func(row, col int) testsheet.Mark {
		return testsheet.Mark{Blank: row != 0 || col != 0}
	}
	sheetPath := writeSheet(t, spec)

	// latin-a and upper-A are both copied from the vowel cell at r0c0.
	configPath := singleGlyphConfig(t, map[string]string{
		"r0c0":    "a",
		"latin-a": "latin-a",
		"upper-A": "upper-A",
	})

	out := t.TempDir()
	report, err := Run(Options{
		Sheet:      sheetPath,
		Output:     out,
		ConfigPath: configPath,
		Metadata:   config.Metadata{SheetVersion: "2.0"},
		PNGOnly:    true,
	})
	require.NoError(t, err)
	assert.Len(t, report.Glyphs.Glyphs, 3)
	assert.Equal(t, len(cfg.Slots)-3, report.Glyphs.Discarded)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var dirs []string
	for _, e := range entries {
		assert.True(t, e.IsDir(), e.Name())
		dirs = append(dirs, e.Name())
	}
	assert.ElementsMatch(t, []string{"a", "latin-a", "upper-A"}, dirs)

	for _, name := range dirs {
		img, err := imaging.Open(filepath.Join(out, name, name+".png"))
		require.NoError(t, err)
		assert.True(t, hasInk(img), "%s holds the mark", name)
	}
}

func hasInk(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				return true
			}
		}
	}
	return false
}
