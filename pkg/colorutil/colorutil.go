// Package colorutil provides shared color utilities for the glyph sheet tools.
package colorutil

import (
	"image/color"
)

// Overlay colors used by the diagnostic snapshots.
var (
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Paper is the fill used wherever synthesized glyph pixels have no
// source, e.g. the corners exposed by rotating a cell.
var Paper = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
