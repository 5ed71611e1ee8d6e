package grid

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"glyphsheet/pkg/geometry"
)

// Cell is one cropped scan area. Base cells come from the printed grid;
// synthesized cells have Row and Col set to -1.
type Cell struct {
	Key    string        // manifest key, e.g. "r3c5" or "ni-rot90"
	Row    int           // -1 if synthesized
	Col    int           // -1 if synthesized
	Rect   geometry.Rect // crop rectangle on the sheet
	Pixels *image.NRGBA  // owned copy of the crop
	Drift  float64       // horizontal correction applied, in pixels
	Exempt bool          // excluded from drift correction
}

// BaseKey is the manifest key of the cell at row, col.
func BaseKey(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}

// Synthesized reports whether the cell was derived from other cells.
func (c *Cell) Synthesized() bool {
	return c.Row < 0
}

// Clone returns a deep copy under a new key. The pixel buffer is never
// shared between cells.
func (c *Cell) Clone(key string) *Cell {
	out := *c
	out.Key = key
	out.Row, out.Col = -1, -1
	if c.Pixels != nil {
		out.Pixels = imaging.Clone(c.Pixels)
	}
	return &out
}

// Size returns the pixel dimensions of the crop.
func (c *Cell) Size() image.Point {
	if c.Pixels == nil {
		return image.Point{}
	}
	return c.Pixels.Bounds().Size()
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s (%.1f,%.1f %.1fx%.1f drift %+.2f)",
		c.Key, c.Rect.X, c.Rect.Y, c.Rect.Width, c.Rect.Height, c.Drift)
}
