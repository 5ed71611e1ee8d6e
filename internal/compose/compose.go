// Package compose derives the composite and variant glyphs that are not
// drawn as cells of their own: the cartouche extension, Latin letter and
// punctuation aliases, and rotated directional forms.
package compose

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
	"glyphsheet/internal/grid"
	"glyphsheet/internal/profile"
	"glyphsheet/pkg/colorutil"
	"glyphsheet/pkg/geometry"
)

// Uppercase letters copied from their lowercase cells, in append order.
const Uppercase = config.Uppercase

// RotationStep is the angle between directional variants, in degrees.
const RotationStep = 45

// Manifest keys of synthesized cells.
const (
	KeyCartoucheExtension = "cartouche-extension"
	KeyBracketLeft        = "bracketleft"
	KeyUnderscore         = "underscore"
	KeyBracketRight       = "bracketright"
	KeyPeriod             = "period"
	KeyColon              = "colon"
)

// LatinKey is the manifest key of a lowercase Latin alias.
func LatinKey(letter rune) string {
	return "latin-" + string(letter)
}

// UpperKey is the manifest key of an uppercase Latin alias.
func UpperKey(letter rune) string {
	return "upper-" + string(letter)
}

// RotationKey is the manifest key of a directional variant.
func RotationKey(base string, angle int) string {
	return fmt.Sprintf("%s-rot%d", base, angle)
}

// Cropper copies a rectangle of the sheet.
type Cropper func(geometry.Rect) (*image.NRGBA, error)

// Synthesizer appends derived cells after the base grid.
type Synthesizer struct {
	Profile profile.Profile
	Layout  config.Layout
	Rows    int
	Cols    int
	Crop    Cropper
}

// Count returns how many cells Synthesize appends for the layout.
func Count(l config.Layout) int {
	return l.SynthesizedCells()
}

// Synthesize appends the derived cells to the base cells in a fixed
// order and returns the complete manifest. Every appended cell owns its
// pixels. The cartouche cells and their bracket copies are trimmed in
// place.
func (s *Synthesizer) Synthesize(base []*grid.Cell) (*Manifest, error) {
	if len(base) != s.Rows*s.Cols {
		return nil, failure.Configf("synthesize glyphs", "got %d cells for a %dx%d grid", len(base), s.Rows, s.Cols)
	}
	m := &Manifest{Cells: make([]*grid.Cell, 0, len(base)+Count(s.Layout))}
	m.Cells = append(m.Cells, base...)

	open, err := s.at(base, s.Layout.CartoucheOpen)
	if err != nil {
		return nil, err
	}
	closing, err := s.at(base, s.Layout.CartoucheClose)
	if err != nil {
		return nil, err
	}

	extension, err := s.cartoucheExtension(open, closing)
	if err != nil {
		return nil, err
	}
	m.Cells = append(m.Cells, extension)

	for _, v := range s.Layout.Vowels() {
		c, err := s.at(base, v.Anchor)
		if err != nil {
			return nil, err
		}
		m.Cells = append(m.Cells, c.Clone(LatinKey(v.Letter)))
	}

	for _, upper := range Uppercase {
		lower := []rune(strings.ToLower(string(upper)))[0]
		a, ok := s.Layout.Letter(lower)
		if !ok {
			return nil, failure.Configf("synthesize glyphs", "layout has no cell for letter %q", lower)
		}
		c, err := s.at(base, a)
		if err != nil {
			return nil, err
		}
		m.Cells = append(m.Cells, c.Clone(UpperKey(upper)))
	}

	middot, err := s.at(base, s.Layout.Middot)
	if err != nil {
		return nil, err
	}
	colon, err := s.at(base, s.Layout.Colon)
	if err != nil {
		return nil, err
	}
	bracketLeft := open.Clone(KeyBracketLeft)
	underscore := extension.Clone(KeyUnderscore)
	bracketRight := closing.Clone(KeyBracketRight)
	m.Cells = append(m.Cells,
		bracketLeft,
		underscore,
		bracketRight,
		middot.Clone(KeyPeriod),
		colon.Clone(KeyColon),
	)

	for _, d := range s.Layout.Directional {
		c, err := s.at(base, d.Anchor())
		if err != nil {
			return nil, err
		}
		for angle := RotationStep; angle < 360; angle += RotationStep {
			v := c.Clone(RotationKey(d.Base, angle))
			v.Pixels = Rotate(c.Pixels, angle, d.Mirrored(angle))
			m.Cells = append(m.Cells, v)
		}
	}

	glyph := closing.Size()
	underscore.Pixels = imaging.Resize(underscore.Pixels, glyph.X, glyph.Y, imaging.NearestNeighbor)
	underscore.Rect = underscore.Rect.WithWidth(float64(glyph.X))

	trim := s.Profile.EdgeTrim
	TrimRight(open, trim(open.Size().X))
	TrimRight(bracketLeft, trim(bracketLeft.Size().X))
	TrimLeft(closing, trim(closing.Size().X))
	TrimLeft(bracketRight, trim(bracketRight.Size().X))
	TrimRight(underscore, trim(underscore.Size().X))

	logrus.Debugf("Synthesized %d cells after %d base cells", len(m.Cells)-len(base), len(base))
	return m, nil
}

// cartoucheExtension takes the 1 px column at the left edge of the
// closing cartouche, then moves both cartouche cells inward to match the
// shifted gray boxes printed for them.
func (s *Synthesizer) cartoucheExtension(open, closing *grid.Cell) (*grid.Cell, error) {
	strip := geometry.NewRect(closing.Rect.X, closing.Rect.Y, 1, closing.Rect.Height)
	pixels, err := s.Crop(strip)
	if err != nil {
		return nil, err
	}
	ext := &grid.Cell{Key: KeyCartoucheExtension, Row: -1, Col: -1, Rect: strip, Pixels: pixels}

	shift := s.Profile.CartoucheShift(open.Rect.Width)
	if err := s.recrop(open, open.Rect.Translate(shift, 0)); err != nil {
		return nil, err
	}
	shift = s.Profile.CartoucheShift(closing.Rect.Width)
	if err := s.recrop(closing, closing.Rect.Translate(-shift, 0)); err != nil {
		return nil, err
	}
	return ext, nil
}

func (s *Synthesizer) recrop(c *grid.Cell, rect geometry.Rect) error {
	pixels, err := s.Crop(rect)
	if err != nil {
		if fe, ok := err.(*failure.Error); ok {
			return fe.WithCell(c.Row, c.Col)
		}
		return err
	}
	c.Rect = rect
	c.Pixels = pixels
	return nil
}

// at returns the base cell under a layout anchor.
func (s *Synthesizer) at(base []*grid.Cell, a config.Anchor) (*grid.Cell, error) {
	if a.Row < 0 || a.Row >= s.Rows || a.Col < 0 || a.Col >= s.Cols {
		return nil, failure.Configf("synthesize glyphs", "layout cell %s is outside the grid", a)
	}
	c := base[a.Index(s.Cols)]
	if c.Row != a.Row || c.Col != a.Col {
		return nil, failure.Configf("synthesize glyphs", "cell %s found at position of %s", c.Key, a)
	}
	return c, nil
}

// Rotate turns img counter-clockwise by angle degrees, mirroring it first
// if asked. Exposed corners are paper white and the result keeps the
// source size, centered.
func Rotate(img *image.NRGBA, angle int, mirror bool) *image.NRGBA {
	src := image.Image(img)
	if mirror {
		src = imaging.FlipH(img)
	}
	rotated := imaging.Rotate(src, float64(angle), colorutil.Paper)
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), colorutil.Paper)
	return imaging.PasteCenter(canvas, rotated)
}

// TrimRight drops n pixel columns from the right edge of the cell.
func TrimRight(c *grid.Cell, n int) {
	b := c.Pixels.Bounds()
	if n <= 0 || n >= b.Dx() {
		return
	}
	c.Pixels = imaging.Crop(c.Pixels, image.Rect(b.Min.X, b.Min.Y, b.Max.X-n, b.Max.Y))
	c.Rect = c.Rect.WithWidth(c.Rect.Width - float64(n))
}

// TrimLeft drops n pixel columns from the left edge of the cell.
func TrimLeft(c *grid.Cell, n int) {
	b := c.Pixels.Bounds()
	if n <= 0 || n >= b.Dx() {
		return
	}
	c.Pixels = imaging.Crop(c.Pixels, image.Rect(b.Min.X+n, b.Min.Y, b.Max.X, b.Max.Y))
	c.Rect = c.Rect.Translate(float64(n), 0).WithWidth(c.Rect.Width - float64(n))
}
