package config

import (
	"fmt"
)

// Anchor is a cell position on the printed grid.
type Anchor struct {
	Row int `mapstructure:"row" json:"row"`
	Col int `mapstructure:"col" json:"col"`
}

// Index returns the anchor's position in row-major order.
func (a Anchor) Index(cols int) int {
	return a.Row*cols + a.Col
}

func (a Anchor) String() string {
	return fmt.Sprintf("r%dc%d", a.Row, a.Col)
}

// LetterRun is a run of consecutive cells holding single Latin letters.
type LetterRun struct {
	Row     int    `mapstructure:"row" json:"row"`
	Col     int    `mapstructure:"col" json:"col"`
	Letters string `mapstructure:"letters" json:"letters"`
}

// Find returns the anchor of letter in the run.
func (l LetterRun) Find(letter rune) (Anchor, bool) {
	for i, r := range []rune(l.Letters) {
		if r == letter {
			return Anchor{Row: l.Row, Col: l.Col + i}, true
		}
	}
	return Anchor{}, false
}

// Directional names a glyph that gets rotated variants. Mirror lists the
// angles at which the copy is flipped horizontally before rotating.
type Directional struct {
	Base   string `mapstructure:"base" json:"base"`
	Row    int    `mapstructure:"row" json:"row"`
	Col    int    `mapstructure:"col" json:"col"`
	Mirror []int  `mapstructure:"mirror" json:"mirror,omitempty"`
}

// Anchor returns the cell holding the base glyph.
func (d Directional) Anchor() Anchor {
	return Anchor{Row: d.Row, Col: d.Col}
}

// Mirrored reports whether the variant at angle is flipped.
func (d Directional) Mirrored(angle int) bool {
	for _, a := range d.Mirror {
		if a == angle {
			return true
		}
	}
	return false
}

// Uppercase lists the capital letters copied from their lowercase cells,
// in append order.
const Uppercase = "AEIJKLMNOPSTUW"

// Cells appended after the base grid, besides letters and rotations.
const (
	stripCells    = 1 // cartouche extension
	borrowedCells = 5 // bracketleft, underscore, bracketright, period, colon
)

// RotationsPerBase is the number of rotated copies of a directional glyph.
const RotationsPerBase = 7

// Layout names the special cells of the printed sheet so later stages do
// not depend on raw indices.
type Layout struct {
	CartoucheOpen  Anchor `mapstructure:"cartouche_open" json:"cartouche_open"`
	CartoucheClose Anchor `mapstructure:"cartouche_close" json:"cartouche_close"`
	Middot         Anchor `mapstructure:"middot" json:"middot"`
	Colon          Anchor `mapstructure:"colon" json:"colon"`
	QuoteOpen      Anchor `mapstructure:"quote_open" json:"quote_open"`
	QuoteClose     Anchor `mapstructure:"quote_close" json:"quote_close"`

	VowelA  Anchor `mapstructure:"vowel_a" json:"vowel_a"`
	VowelE  Anchor `mapstructure:"vowel_e" json:"vowel_e"`
	VowelO  Anchor `mapstructure:"vowel_o" json:"vowel_o"`
	LetterN Anchor `mapstructure:"letter_n" json:"letter_n"`

	LatinLetters LetterRun     `mapstructure:"latin_letters" json:"latin_letters"`
	Directional  []Directional `mapstructure:"directional" json:"directional"`
}

// Exempt reports whether drift correction must leave the cell in place.
// The cartouche and quotation mark cells are printed off-center.
func (l Layout) Exempt(row, col int) bool {
	a := Anchor{Row: row, Col: col}
	return a == l.CartoucheOpen || a == l.CartoucheClose ||
		a == l.QuoteOpen || a == l.QuoteClose
}

// LetterCell pairs a Latin letter with the cell it is drawn in.
type LetterCell struct {
	Letter rune
	Anchor Anchor
}

// Vowels returns the Latin letters whose cells double as pu words, in
// synthesis order.
func (l Layout) Vowels() []LetterCell {
	return []LetterCell{
		{'a', l.VowelA},
		{'e', l.VowelE},
		{'n', l.LetterN},
		{'o', l.VowelO},
	}
}

// Letter returns the cell that holds the lowercase Latin letter.
func (l Layout) Letter(letter rune) (Anchor, bool) {
	for _, v := range l.Vowels() {
		if v.Letter == letter {
			return v.Anchor, true
		}
	}
	return l.LatinLetters.Find(letter)
}

// Validate checks every anchor lies on a rows x cols grid.
func (l Layout) Validate(rows, cols int) error {
	named := map[string]Anchor{
		"cartouche_open":  l.CartoucheOpen,
		"cartouche_close": l.CartoucheClose,
		"middot":          l.Middot,
		"colon":           l.Colon,
		"quote_open":      l.QuoteOpen,
		"quote_close":     l.QuoteClose,
		"vowel_a":         l.VowelA,
		"vowel_e":         l.VowelE,
		"vowel_o":         l.VowelO,
		"letter_n":        l.LetterN,
	}
	for name, a := range named {
		if !onGrid(a, rows, cols) {
			return fmt.Errorf("layout %s at %s is outside the %dx%d grid", name, a, rows, cols)
		}
	}
	if l.CartoucheOpen == l.CartoucheClose {
		return fmt.Errorf("layout cartouche_open and cartouche_close share cell %s", l.CartoucheOpen)
	}
	end := Anchor{Row: l.LatinLetters.Row, Col: l.LatinLetters.Col + len([]rune(l.LatinLetters.Letters)) - 1}
	if l.LatinLetters.Letters != "" && (!onGrid(Anchor{Row: l.LatinLetters.Row, Col: l.LatinLetters.Col}, rows, cols) || !onGrid(end, rows, cols)) {
		return fmt.Errorf("layout latin_letters %q does not fit on row %d", l.LatinLetters.Letters, l.LatinLetters.Row)
	}
	seen := make(map[string]bool, len(l.Directional))
	for _, d := range l.Directional {
		if d.Base == "" {
			return fmt.Errorf("layout directional entry at %s has no base name", d.Anchor())
		}
		if seen[d.Base] {
			return fmt.Errorf("layout directional base %q listed twice", d.Base)
		}
		seen[d.Base] = true
		if !onGrid(d.Anchor(), rows, cols) {
			return fmt.Errorf("layout directional %q at %s is outside the grid", d.Base, d.Anchor())
		}
		for _, a := range d.Mirror {
			if a <= 0 || a >= 360 || a%45 != 0 {
				return fmt.Errorf("layout directional %q mirror angle %d is not a rotation step", d.Base, a)
			}
		}
	}
	return nil
}

func onGrid(a Anchor, rows, cols int) bool {
	return a.Row >= 0 && a.Row < rows && a.Col >= 0 && a.Col < cols
}

// SynthesizedCells returns how many cells are appended after the base
// grid for this layout.
func (l Layout) SynthesizedCells() int {
	return stripCells + len(l.Vowels()) + len(Uppercase) + borrowedCells + RotationsPerBase*len(l.Directional)
}
