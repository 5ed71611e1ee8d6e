// Package config loads and validates the glyph sheet configuration: grid
// size, threshold, sheet layout and the ordered glyph slot list.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"glyphsheet/internal/failure"
)

//go:embed default.json
var defaultDocument []byte

// GlyphSlot is one position in the ordered slot list. Slot i receives the
// i-th cell of the extraction manifest.
type GlyphSlot struct {
	Name      string   // empty: the cell at this position is discarded
	Codepoint rune     // 0: unencoded
	Ligature  []string // glyph-name tokens that substitute to this glyph
	Cell      string   // optional manifest key the slot expects
}

// Named reports whether the slot produces a glyph file.
func (s GlyphSlot) Named() bool {
	return s.Name != ""
}

// LigatureText returns the ligature tokens joined by spaces.
func (s GlyphSlot) LigatureText() string {
	return strings.Join(s.Ligature, " ")
}

// Props are font-wide properties passed through to the font compiler.
type Props struct {
	Filename string `mapstructure:"filename" json:"filename"`
	Style    string `mapstructure:"style" json:"style"`
	Lang     string `mapstructure:"lang" json:"lang"`
	Encoding string `mapstructure:"encoding" json:"encoding"`
	Ascent   int    `mapstructure:"ascent" json:"ascent"`
	Descent  int    `mapstructure:"descent" json:"descent"`
	Em       int    `mapstructure:"em" json:"em"`
}

// CustomName asks for Name to be re-homed onto slot Slot.
type CustomName struct {
	Slot int    `mapstructure:"slot"`
	Name string `mapstructure:"name"`
}

// Configuration is loaded once per run and passed explicitly to every
// stage. Only ReHome mutates it.
type Configuration struct {
	Rows         int
	Cols         int
	SheetVersion string
	Threshold    int
	Props        Props
	Layout       Layout
	Custom       []CustomName
	Slots        []GlyphSlot
}

// BaseCells is the number of cells extracted from the printed grid.
func (c *Configuration) BaseCells() int {
	return c.Rows * c.Cols
}

// NamedSlots returns the number of slots that produce a glyph.
func (c *Configuration) NamedSlots() int {
	n := 0
	for _, s := range c.Slots {
		if s.Named() {
			n++
		}
	}
	return n
}

// IndexOf returns the slot holding name, or -1.
func (c *Configuration) IndexOf(name string) int {
	for i, s := range c.Slots {
		if s.Name == name {
			return i
		}
	}
	return -1
}

type slotDocument struct {
	Name      string `mapstructure:"name"`
	Codepoint string `mapstructure:"codepoint"`
	Ligature  string `mapstructure:"ligature"`
	Cell      string `mapstructure:"cell"`
}

type document struct {
	Rows         int            `mapstructure:"rows"`
	Cols         int            `mapstructure:"cols"`
	SheetVersion string         `mapstructure:"sheet_version"`
	Threshold    int            `mapstructure:"threshold_value"`
	Props        Props          `mapstructure:"props"`
	Layout       Layout         `mapstructure:"layout"`
	Custom       []CustomName   `mapstructure:"custom"`
	Glyphs       []slotDocument `mapstructure:"glyphs"`
}

// Default returns the embedded configuration for the standard 9x20 sheet.
func Default() (*Configuration, error) {
	v := newViper()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(defaultDocument)); err != nil {
		return nil, failure.Config("load default configuration", err)
	}
	return decode(v)
}

// Load reads a configuration document. JSON, YAML and TOML are accepted,
// selected by file extension. An empty path loads the embedded default.
func Load(path string) (*Configuration, error) {
	if path == "" {
		return Default()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.IO("read configuration", path, err)
	}
	if info.IsDir() {
		return nil, failure.Configf("read configuration", "%s is a directory", path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, failure.Config("parse configuration "+path, err)
	}
	logrus.Debugf("Loaded configuration from %s", v.ConfigFileUsed())
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("rows", 9)
	v.SetDefault("cols", 20)
	v.SetDefault("threshold_value", 200)
	v.SetDefault("props.filename", "MyFont")
	v.SetDefault("props.style", "Regular")
	v.SetDefault("props.lang", "English (US)")
	v.SetDefault("props.encoding", "UnicodeFull")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, failure.Config("decode configuration", err)
	}
	if !v.IsSet("layout") {
		layout, err := defaultLayout()
		if err != nil {
			return nil, err
		}
		doc.Layout = layout
	}

	cfg := &Configuration{
		Rows:         doc.Rows,
		Cols:         doc.Cols,
		SheetVersion: doc.SheetVersion,
		Threshold:    doc.Threshold,
		Props:        doc.Props,
		Layout:       doc.Layout,
		Custom:       doc.Custom,
		Slots:        make([]GlyphSlot, len(doc.Glyphs)),
	}
	for i, g := range doc.Glyphs {
		cp, err := ParseCodepoint(g.Codepoint)
		if err != nil {
			return nil, failure.Config("decode configuration", err).WithSlot(i, g.Name)
		}
		cfg.Slots[i] = GlyphSlot{
			Name:      strings.TrimSpace(g.Name),
			Codepoint: cp,
			Ligature:  strings.Fields(g.Ligature),
			Cell:      strings.TrimSpace(g.Cell),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultLayout returns the layout of the standard sheet for documents
// that do not describe their own.
func defaultLayout() (Layout, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(defaultDocument)); err != nil {
		return Layout{}, failure.Config("load default layout", err)
	}
	var layout Layout
	if err := v.UnmarshalKey("layout", &layout); err != nil {
		return Layout{}, failure.Config("load default layout", err)
	}
	return layout, nil
}

// ParseCodepoint parses a hexadecimal codepoint such as "f1900", "U+F1900"
// or "0x61". The empty string means unencoded.
func ParseCodepoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "U+"), "u+")
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	n, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("codepoint %q is not hexadecimal", s)
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, fmt.Errorf("codepoint %q is not a valid Unicode scalar value", s)
	}
	return r, nil
}

// Validate checks grid size, layout anchors and the slot list.
func (c *Configuration) Validate() error {
	const op = "validate configuration"
	if c.Rows <= 0 || c.Cols <= 0 {
		return failure.Configf(op, "grid must have positive size, got %dx%d", c.Rows, c.Cols)
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		return failure.Configf(op, "threshold_value %d outside 0-255", c.Threshold)
	}
	if len(c.Slots) < c.BaseCells() {
		return failure.Configf(op, "%d glyph slots cannot cover %d grid cells", len(c.Slots), c.BaseCells())
	}
	if err := c.Layout.Validate(c.Rows, c.Cols); err != nil {
		return failure.Config(op, err)
	}
	if want := c.BaseCells() + c.Layout.SynthesizedCells(); len(c.Slots) != want {
		return failure.Configf(op, "%d glyph slots, want %d grid cells plus %d synthesized",
			len(c.Slots), c.BaseCells(), c.Layout.SynthesizedCells())
	}
	for i, s := range c.Slots {
		if s.Name != "" {
			if err := ValidateName(s.Name); err != nil {
				return failure.Config(op, err).WithSlot(i, s.Name)
			}
		}
		if len(s.Ligature) > 0 && s.Name == "" {
			return failure.Configf(op, "ligature %q on an unnamed slot", s.LigatureText()).WithSlot(i, "")
		}
	}
	return c.checkUnique(op)
}

// ValidateName rejects names that cannot be used as a glyph directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("glyph name is empty")
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("glyph name %q may not start with a dot", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("glyph name %q contains a path separator", name)
	case strings.IndexFunc(name, func(r rune) bool { return r <= ' ' }) >= 0:
		return fmt.Errorf("glyph name %q contains whitespace or control characters", name)
	}
	return nil
}

func (c *Configuration) checkUnique(op string) error {
	seen := make(map[string]int, len(c.Slots))
	for i, s := range c.Slots {
		if !s.Named() {
			continue
		}
		if prev, ok := seen[s.Name]; ok {
			return failure.Configf(op, "name already used by slot %d", prev).WithSlot(i, s.Name)
		}
		seen[s.Name] = i
	}
	return nil
}
