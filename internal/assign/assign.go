// Package assign walks the cell manifest and the glyph slot list in
// lockstep and writes each named glyph to <root>/<name>/<name>.png.
package assign

import (
	"errors"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"glyphsheet/internal/compose"
	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

// Glyph is one written glyph image.
type Glyph struct {
	Slot int
	Name string
	Key  string // manifest key of the source cell
	Path string
}

// Result lists everything written by a successful Assign.
type Result struct {
	Root      string
	Glyphs    []Glyph
	Discarded int // cells whose slot has no name
}

// Paths returns the written file paths in slot order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Glyphs))
	for i, g := range r.Glyphs {
		out[i] = g.Path
	}
	return out
}

// Assigner persists glyphs under Root. It is the only stage that writes
// glyph files.
type Assigner struct {
	Root string

	createdDirs  []string
	writtenFiles []string
}

// Path returns where the glyph named name is stored.
func Path(root, name string) string {
	return filepath.Join(root, name, name+".png")
}

// Validate checks that the manifest lines up with the slot list before
// anything is written: same length, every slot's expected cell key
// matches, and each name is used once.
func Validate(slots []config.GlyphSlot, m *compose.Manifest) error {
	const op = "validate manifest"
	if len(slots) != m.Len() {
		return failure.Configf(op, "%d glyph slots but %d cells", len(slots), m.Len())
	}
	seen := make(map[string]int, len(slots))
	for i, s := range slots {
		key := m.Cells[i].Key
		if s.Cell != "" && s.Cell != key {
			return failure.Configf(op, "slot expects cell %s but the manifest has %s", s.Cell, key).WithSlot(i, s.Name)
		}
		if !s.Named() {
			continue
		}
		if err := config.ValidateName(s.Name); err != nil {
			return failure.Config(op, err).WithSlot(i, s.Name)
		}
		if prev, ok := seen[s.Name]; ok {
			return failure.Configf(op, "name already used by slot %d", prev).WithSlot(i, s.Name)
		}
		seen[s.Name] = i
		if m.Cells[i].Pixels == nil {
			return failure.Configf(op, "cell %s has no pixels", key).WithSlot(i, s.Name)
		}
	}
	return nil
}

// Assign validates the manifest and writes every named slot's cell. On
// any failure all files and directories written so far are removed.
func (a *Assigner) Assign(cfg *config.Configuration, m *compose.Manifest) (*Result, error) {
	if err := Validate(cfg.Slots, m); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.Root, 0755); err != nil {
		return nil, failure.IO("create glyph directory", a.Root, err)
	}

	res := &Result{Root: a.Root}
	for i, slot := range cfg.Slots {
		cell := m.Cells[i]
		if !slot.Named() {
			res.Discarded++
			continue
		}
		path, err := a.write(slot.Name, cell.Pixels)
		if err != nil {
			a.rollback()
			var fe *failure.Error
			if errors.As(err, &fe) {
				return nil, fe.WithSlot(i, slot.Name)
			}
			return nil, err
		}
		res.Glyphs = append(res.Glyphs, Glyph{Slot: i, Name: slot.Name, Key: cell.Key, Path: path})
	}

	logrus.WithFields(logrus.Fields{
		"root":      a.Root,
		"written":   len(res.Glyphs),
		"discarded": res.Discarded,
	}).Info("Assigned glyphs")
	return res, nil
}

func (a *Assigner) write(name string, img *image.NRGBA) (string, error) {
	dir := filepath.Join(a.Root, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dir, 0755); err != nil {
			return "", failure.IO("create glyph directory", dir, err)
		}
		a.createdDirs = append(a.createdDirs, dir)
	}

	path := Path(a.Root, name)
	if err := imaging.Save(img, path); err != nil {
		return "", failure.IO("write glyph", path, err)
	}
	a.writtenFiles = append(a.writtenFiles, path)
	logrus.Debugf("Wrote %s", path)
	return path, nil
}

// rollback removes what this run wrote so no partial glyph set survives.
func (a *Assigner) rollback() {
	for _, f := range a.writtenFiles {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.Warnf("Rollback: %v", err)
		}
	}
	for i := len(a.createdDirs) - 1; i >= 0; i-- {
		if err := os.RemoveAll(a.createdDirs[i]); err != nil {
			logrus.Warnf("Rollback: %v", err)
		}
	}
	logrus.Warnf("Rolled back %d glyph files", len(a.writtenFiles))
	a.writtenFiles = nil
	a.createdDirs = nil
}
