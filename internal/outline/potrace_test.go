package outline

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"glyphsheet/internal/failure"
	"glyphsheet/internal/profile"
)

func TestMissingTracerIsFatal(t *testing.T) {
	tr := New(profile.V3())
	tr.Executable = "potrace-that-does-not-exist"

	_, err := tr.Trace(filepath.Join(t.TempDir(), "a.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrMissingTool))
	assert.Contains(t, err.Error(), "potrace-that-does-not-exist")
}

func TestBitmapIsBilevelAtTraceResolution(t *testing.T) {
	dir := t.TempDir()
	src := imaging.New(32, 40, color.White)
	src = imaging.Paste(src, imaging.New(16, 40, color.Gray{Y: 120}), image.Pt(0, 0))
	pngPath := filepath.Join(dir, "a.png")
	require.NoError(t, imaging.Save(src, pngPath))

	tr := New(profile.V20())
	bmpPath := filepath.Join(dir, "a.bmp")
	require.NoError(t, tr.Bitmap(pngPath, bmpPath))

	f, err := os.Open(bmpPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 100, 125), img.Bounds())
	r, _, _, _ := img.At(10, 60).RGBA()
	assert.Zero(t, r, "gray ink becomes black")
	r, _, _, _ = img.At(90, 60).RGBA()
	assert.Equal(t, uint32(0xffff), r, "paper stays white")
}
