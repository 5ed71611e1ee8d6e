package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"glyphsheet/internal/grid"
	"glyphsheet/internal/profile"
	"glyphsheet/internal/sheet"
	"glyphsheet/internal/testsheet"
)

func TestRecorderWritesNumberedSnapshots(t *testing.T) {
	dir := t.TempDir()
	rec, err := New(dir)
	require.NoError(t, err)

	spec := testsheet.Default(profile.V20(), 2, 20, 2)
	img, err := sheet.FromImage(spec.Draw(), "synthetic.png")
	require.NoError(t, err)
	defer img.Close()

	stages := sheet.Preprocess(img.Mat, 200)
	defer stages.Close()
	require.NoError(t, rec.Stages(stages))

	rows, err := grid.DetectRows(stages.Closed, 2)
	require.NoError(t, err)
	cals, err := grid.Calibrate(rows, spec.Profile)
	require.NoError(t, err)
	cells, err := (&grid.Extractor{Sheet: img, Cols: 20, Threshold: 200}).Extract(cals)
	require.NoError(t, err)
	require.NoError(t, rec.Cells(img.Mat, cals, cells))

	for _, name := range []string{GrayFile, ThresholdFile, ClosedFile, CellsFile} {
		assert.FileExists(t, rec.Path(name))
	}
}

func TestNilRecorderIsDisabled(t *testing.T) {
	rec, err := New("")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, rec.Stages(nil))
	m := gocv.NewMat()
	defer m.Close()
	assert.NoError(t, rec.Cells(m, nil, nil))
}
