// Package fontbuild compiles traced glyph outlines into a TrueType font.
// The Go side prepares the ligature feature file and a JSON descriptor,
// fontforge does the outline work through an embedded driver script, and
// the result is verified with sfnt before a preview page is written.
package fontbuild

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/sfnt"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

//go:embed build.py
var buildScript []byte

// Compiler runs fontforge. Work receives the intermediate files.
type Compiler struct {
	Executable string
	Work       string

	path string
}

// NewCompiler returns a fontforge compiler writing scratch files to work.
func NewCompiler(work string) *Compiler {
	return &Compiler{Executable: "fontforge", Work: work}
}

// Locate resolves the fontforge executable.
func (c *Compiler) Locate() error {
	if c.path != "" {
		return nil
	}
	path, err := exec.LookPath(c.Executable)
	if err != nil {
		return failure.MissingTool(c.Executable, fmt.Errorf("fontforge is either not installed or not on PATH: %w", err))
	}
	c.path = path
	return nil
}

// Font is a compiled and verified font.
type Font struct {
	Path    string
	Preview string
	Glyphs  int
}

// Build compiles the named slots of cfg. svgRoot holds the traced
// outlines as <name>/<name>.svg; the font and preview go to outDir.
func (c *Compiler) Build(cfg *config.Configuration, meta config.Metadata, svgRoot, outDir string) (*Font, error) {
	if err := c.Locate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, failure.IO("create output directory", outDir, err)
	}

	script := filepath.Join(c.Work, "build.py")
	if err := os.WriteFile(script, buildScript, 0644); err != nil {
		return nil, failure.IO("write compiler script", script, err)
	}
	fea := filepath.Join(c.Work, meta.Filename+".fea")
	if err := WriteFeatures(fea, cfg.Slots); err != nil {
		return nil, err
	}

	output := UniqueOutput(outDir, meta.Filename)
	desc := NewDescriptor(cfg, meta, svgRoot, fea, output)
	descPath := filepath.Join(c.Work, meta.Filename+".json")
	if err := desc.Write(descPath); err != nil {
		return nil, err
	}

	logrus.Infof("Compiling %d glyphs into %s", len(desc.Glyphs), output)
	cmd := exec.Command(c.path, "-lang=py", "-script", script, descPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, failure.IO("compile font", output,
			fmt.Errorf("%s: %w: %s", c.Executable, err, strings.TrimSpace(out.String())))
	}
	logrus.Debugf("fontforge output:\n%s", out.String())

	n, err := Verify(output, cfg.NamedSlots())
	if err != nil {
		return nil, err
	}

	preview := filepath.Join(outDir, meta.Family+".html")
	if err := WritePreview(preview, filepath.Base(output), meta.Family, cfg.Slots); err != nil {
		return nil, err
	}
	return &Font{Path: output, Preview: preview, Glyphs: n}, nil
}

// UniqueOutput returns <dir>/<filename>.ttf, appending " (1)" to the
// name until it does not collide with an existing file.
func UniqueOutput(dir, filename string) string {
	name := strings.TrimSuffix(filename, ".ttf")
	for {
		path := filepath.Join(dir, name+".ttf")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		name += " (1)"
	}
}

// Verify parses the compiled font and checks it holds at least want
// glyphs. It returns the glyph count.
func Verify(path string, want int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, failure.IO("read font", path, err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return 0, failure.IO("parse font", path, err)
	}
	n := f.NumGlyphs()
	if n < want {
		return n, failure.IO("verify font", path, fmt.Errorf("font has %d glyphs, want at least %d", n, want))
	}
	if name, err := f.Name(nil, sfnt.NameIDFull); err == nil {
		logrus.Infof("Verified %s: %d glyphs", name, n)
	}
	return n, nil
}
