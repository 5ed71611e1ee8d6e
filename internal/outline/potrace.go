// Package outline drives the external potrace tracer that turns each
// glyph raster into an SVG outline.
package outline

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"

	"glyphsheet/internal/failure"
	"glyphsheet/internal/profile"
)

// DefaultThreshold separates ink from paper in the tracer input; any
// channel below it makes the pixel black.
const DefaultThreshold = 200

var bilevel = color.Palette{color.Black, color.White}

// Tracer converts glyph PNGs into SVG outlines.
type Tracer struct {
	Executable string // looked up on PATH
	Width      int    // raster size handed to potrace
	Height     int
	Threshold  uint8

	path string // resolved executable
}

// New returns a potrace driver at the profile's trace resolution.
func New(p profile.Profile) *Tracer {
	return &Tracer{
		Executable: "potrace",
		Width:      p.TraceWidth,
		Height:     p.TraceHeight,
		Threshold:  DefaultThreshold,
	}
}

// Locate resolves the executable. A missing tracer is fatal for the run.
func (t *Tracer) Locate() error {
	if t.path != "" {
		return nil
	}
	path, err := exec.LookPath(t.Executable)
	if err != nil {
		return failure.MissingTool(t.Executable, fmt.Errorf("potrace is either not installed or not on PATH: %w", err))
	}
	t.path = path
	return nil
}

// Bitmap writes the 1-bit BMP potrace reads: the glyph resized to the
// trace resolution and thresholded to pure black and white.
func (t *Tracer) Bitmap(pngPath, bmpPath string) error {
	src, err := imaging.Open(pngPath)
	if err != nil {
		return failure.IO("read glyph", pngPath, err)
	}
	resized := imaging.Resize(src, t.Width, t.Height, imaging.Lanczos)

	out := image.NewPaletted(resized.Bounds(), bilevel)
	for y := 0; y < resized.Bounds().Dy(); y++ {
		for x := 0; x < resized.Bounds().Dx(); x++ {
			c := resized.NRGBAAt(x, y)
			if c.R >= t.Threshold && c.G >= t.Threshold && c.B >= t.Threshold {
				out.SetColorIndex(x, y, 1)
			}
		}
	}

	f, err := os.Create(bmpPath)
	if err != nil {
		return failure.IO("write bitmap", bmpPath, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, out); err != nil {
		return failure.IO("write bitmap", bmpPath, err)
	}
	return nil
}

// Trace converts one glyph PNG to an SVG next to it and returns the SVG
// path.
func (t *Tracer) Trace(pngPath string) (string, error) {
	if err := t.Locate(); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(pngPath, filepath.Ext(pngPath))
	bmpPath, svgPath := base+".bmp", base+".svg"

	if err := t.Bitmap(pngPath, bmpPath); err != nil {
		return "", err
	}

	cmd := exec.Command(t.path, bmpPath, "--backend", "svg", "--output", svgPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", failure.IO("trace glyph", pngPath,
			fmt.Errorf("%s: %w: %s", t.Executable, err, strings.TrimSpace(stderr.String())))
	}
	return svgPath, nil
}

// TraceAll traces every PNG in order and returns the SVG paths.
func (t *Tracer) TraceAll(pngPaths []string) ([]string, error) {
	if err := t.Locate(); err != nil {
		return nil, err
	}
	svgs := make([]string, 0, len(pngPaths))
	for i, p := range pngPaths {
		svg, err := t.Trace(p)
		if err != nil {
			return nil, err
		}
		svgs = append(svgs, svg)
		if (i+1)%20 == 0 {
			logrus.Debugf("Traced %d/%d glyphs", i+1, len(pngPaths))
		}
	}
	logrus.Infof("Traced %d glyph outlines", len(svgs))
	return svgs, nil
}
