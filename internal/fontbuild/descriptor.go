package fontbuild

import (
	"encoding/json"
	"os"
	"path/filepath"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

// Font metrics in font units. Cells are 800x1000 on paper minus a
// 50 unit scanning margin on each side.
const (
	Advance         = 700
	VerticalAdvance = 900
	SpaceWidth      = 350
)

// Codepoints with special spacing.
const (
	cpCartoucheExtension = 0xF1992
	cpUnderscore         = '_'
	cpMiddot             = 0xF199C
	cpColonTP            = 0xF199D
	cpIdeographicSpace   = 0x3000
)

// GlyphEntry tells the compiler how to import and place one outline.
type GlyphEntry struct {
	Name             string `json:"name"`
	Codepoint        int    `json:"codepoint"` // 0: unencoded
	SVG              string `json:"svg"`
	CenterVertical   bool   `json:"center_vertical"`
	CenterHorizontal bool   `json:"center_horizontal"`
	ZeroWidth        bool   `json:"zero_width"` // combining; drawn over the previous glyph
}

// Spacing is an outline-less glyph with a fixed advance.
type Spacing struct {
	Codepoint int `json:"codepoint"`
	Width     int `json:"width"`
}

// Descriptor is everything the compiler script needs for one font.
type Descriptor struct {
	Filename   string       `json:"filename"`
	Family     string       `json:"family"`
	Style      string       `json:"style"`
	Designer   string       `json:"designer"`
	License    string       `json:"license"`
	LicenseURL string       `json:"license_url"`
	Version    string       `json:"version"`
	Lang       string       `json:"lang"`
	Encoding   string       `json:"encoding"`
	Ascent     int          `json:"ascent"`
	Descent    int          `json:"descent"`
	Em         int          `json:"em"`
	Advance    int          `json:"advance"`
	VAdvance   int          `json:"vadvance"`
	Features   string       `json:"features"`
	Output     string       `json:"output"`
	Glyphs     []GlyphEntry `json:"glyphs"`
	Spacing    []Spacing    `json:"spacing"`
}

func isSitelenPona(cp rune) bool {
	return (cp >= 0xF1900 && cp <= 0xF1988) || (cp >= 0xF19A0 && cp <= 0xF19A3)
}

func isPunctuation(cp rune) bool {
	return cp == cpMiddot || cp == '.' || cp == cpColonTP || cp == ':'
}

// CenterVertical reports whether a glyph is centered between ascent and
// descent: word glyphs, punctuation and the lowercase vowels and n.
func CenterVertical(cp rune) bool {
	switch cp {
	case 'a', 'e', 'n', 'o':
		return true
	}
	return isSitelenPona(cp) || isPunctuation(cp)
}

// CenterHorizontal reports whether a glyph is centered in its advance.
func CenterHorizontal(cp rune) bool {
	return isSitelenPona(cp) || isPunctuation(cp) || (cp >= 'a' && cp <= 'z')
}

// ZeroWidth reports whether a glyph combines with the one before it.
func ZeroWidth(cp rune) bool {
	return cp == cpCartoucheExtension || cp == cpUnderscore
}

// NewDescriptor describes the font built from the named slots of cfg.
// svgRoot holds <name>/<name>.svg for every named slot.
func NewDescriptor(cfg *config.Configuration, meta config.Metadata, svgRoot, features, output string) *Descriptor {
	d := &Descriptor{
		Filename:   meta.Filename,
		Family:     meta.Family,
		Style:      meta.Style,
		Designer:   meta.Designer,
		License:    meta.License,
		LicenseURL: meta.LicenseURL,
		Version:    meta.SheetVersion,
		Lang:       cfg.Props.Lang,
		Encoding:   cfg.Props.Encoding,
		Ascent:     cfg.Props.Ascent,
		Descent:    cfg.Props.Descent,
		Em:         cfg.Props.Em,
		Advance:    Advance,
		VAdvance:   VerticalAdvance,
		Features:   features,
		Output:     output,
		Spacing: []Spacing{
			{Codepoint: ' ', Width: SpaceWidth},
			{Codepoint: cpIdeographicSpace, Width: Advance},
			{Codepoint: '!', Width: 0},
			{Codepoint: ',', Width: 0},
			{Codepoint: '?', Width: 0},
		},
	}
	for _, s := range cfg.Slots {
		if !s.Named() {
			continue
		}
		d.Glyphs = append(d.Glyphs, GlyphEntry{
			Name:             s.Name,
			Codepoint:        int(s.Codepoint),
			SVG:              filepath.Join(svgRoot, s.Name, s.Name+".svg"),
			CenterVertical:   CenterVertical(s.Codepoint),
			CenterHorizontal: CenterHorizontal(s.Codepoint),
			ZeroWidth:        ZeroWidth(s.Codepoint),
		})
	}
	return d
}

// Write stores the descriptor as indented JSON.
func (d *Descriptor) Write(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return failure.IO("encode descriptor", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return failure.IO("write descriptor", path, err)
	}
	return nil
}
