// Package testsheet draws synthetic glyph sheets for tests: row borders,
// gray guide squares and square ink marks at known positions.
package testsheet

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"glyphsheet/internal/profile"
)

// Mark describes the ink drawn into one cell.
type Mark struct {
	Blank  bool
	Offset float64 // horizontal shift from the cell center, in pixels
	Size   float64 // side of the square in grid units; 0 means 3
}

// Spec describes a synthetic sheet.
type Spec struct {
	Profile profile.Profile
	Rows    int
	Cols    int
	Scale   int // pixels per grid unit
	Margin  int // grid units around the rows
	RowGap  int // grid units between rows
	Mark    func(row, col int) Mark
	Skip    func(row int) bool // rows that are left off the page
}

// Default returns a spec for a full sheet at the given scale with an ink
// mark centered in every cell.
func Default(p profile.Profile, rows, cols, scale int) Spec {
	return Spec{Profile: p, Rows: rows, Cols: cols, Scale: scale, Margin: 4, RowGap: 2}
}

// Size returns the image size in pixels.
func (s Spec) Size() (int, int) {
	w := (2*s.Margin + int(s.Profile.RowWidthUnits)) * s.Scale
	h := (2*s.Margin + s.Rows*int(s.Profile.RowHeightUnits) + (s.Rows-1)*s.RowGap) * s.Scale
	return w, h
}

// RowRect returns the outer pixel bounds of a row border.
func (s Spec) RowRect(row int) image.Rectangle {
	x0 := s.Margin * s.Scale
	y0 := (s.Margin + row*(int(s.Profile.RowHeightUnits)+s.RowGap)) * s.Scale
	return image.Rect(x0, y0,
		x0+int(s.Profile.RowWidthUnits)*s.Scale,
		y0+int(s.Profile.RowHeightUnits)*s.Scale)
}

// CellRect returns the nominal scan area of a cell in pixels.
func (s Spec) CellRect(row, col int) image.Rectangle {
	r := s.RowRect(row)
	x := r.Min.X + int(s.Profile.HorPaddingUnits)*s.Scale + col*int(s.Profile.ScanWidthUnits)*s.Scale
	y := r.Min.Y + int(s.Profile.VerPaddingUnits)*s.Scale
	return image.Rect(x, y,
		x+int(s.Profile.ScanWidthUnits)*s.Scale,
		y+int(s.Profile.ScanHeightUnits)*s.Scale)
}

// Draw renders the sheet.
func (s Spec) Draw() *image.NRGBA {
	w, h := s.Size()
	img := imaging.New(w, h, color.White)

	line := max(1, s.Scale/2)
	for row := 0; row < s.Rows; row++ {
		if s.Skip != nil && s.Skip(row) {
			continue
		}
		img = outline(img, s.RowRect(row), line)

		for col := 0; col < s.Cols; col++ {
			cell := s.CellRect(row, col)
			vis := int(s.Profile.VisibleUnits) * s.Scale
			guide := image.Rect(0, 0, vis, vis).Add(image.Pt(
				cell.Min.X+(cell.Dx()-vis)/2,
				cell.Min.Y+(cell.Dy()-vis)/2))
			img = fill(img, guide, color.Gray{Y: 225})

			m := Mark{}
			if s.Mark != nil {
				m = s.Mark(row, col)
			}
			if m.Blank {
				continue
			}
			size := m.Size
			if size == 0 {
				size = 3
			}
			side := int(math.Round(size * float64(s.Scale)))
			cx := float64(cell.Min.X) + float64(cell.Dx())/2 + m.Offset
			cy := float64(cell.Min.Y) + float64(cell.Dy())/2
			x0 := int(math.Round(cx - float64(side)/2))
			y0 := int(math.Round(cy - float64(side)/2))
			img = fill(img, image.Rect(x0, y0, x0+side, y0+side), color.Black)
		}
	}
	return img
}

func fill(dst *image.NRGBA, r image.Rectangle, c color.Color) *image.NRGBA {
	if r.Empty() {
		return dst
	}
	return imaging.Paste(dst, imaging.New(r.Dx(), r.Dy(), c), r.Min)
}

func outline(dst *image.NRGBA, r image.Rectangle, t int) *image.NRGBA {
	dst = fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), color.Black)
	dst = fill(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), color.Black)
	dst = fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), color.Black)
	return fill(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), color.Black)
}
