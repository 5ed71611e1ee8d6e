package config

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"glyphsheet/internal/failure"
)

// ReHome gives name to slot. Any other slot already carrying name hands
// its codepoint and ligature over to slot and is left unnamed, so the
// glyph keeps its encoding but is drawn from the new cell. Afterwards
// exactly one slot may hold each name.
func (c *Configuration) ReHome(slot int, name string) error {
	const op = "re-home glyph"
	if slot < 0 || slot >= len(c.Slots) {
		return failure.Configf(op, "slot out of range 0-%d", len(c.Slots)-1).WithSlot(slot, name)
	}
	if err := ValidateName(name); err != nil {
		return failure.Config(op, err).WithSlot(slot, name)
	}
	if c.Slots[slot].Name == name {
		return nil
	}

	target := &c.Slots[slot]
	if target.Name != "" {
		logrus.WithFields(logrus.Fields{"slot": slot, "old": target.Name, "new": name}).
			Warn("Re-homing replaces an existing glyph name")
	}
	target.Name = name

	for i := range c.Slots {
		if i == slot || c.Slots[i].Name != name {
			continue
		}
		prev := &c.Slots[i]
		target.Codepoint = prev.Codepoint
		target.Ligature = append([]string(nil), prev.Ligature...)
		logrus.WithFields(logrus.Fields{"from": i, "to": slot, "name": name}).Debug("Re-homed glyph")
		prev.Name = ""
		prev.Codepoint = 0
		prev.Ligature = nil
	}

	return c.checkUnique(op)
}

// ApplyCustom re-homes every request in order.
func (c *Configuration) ApplyCustom(reqs []CustomName) error {
	for _, r := range reqs {
		if err := c.ReHome(r.Slot, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// Customize applies the document's custom requests, then extra ones such
// as those given on the command line.
func (c *Configuration) Customize(extra []CustomName) error {
	reqs := make([]CustomName, 0, len(c.Custom)+len(extra))
	reqs = append(reqs, c.Custom...)
	reqs = append(reqs, extra...)
	return c.ApplyCustom(reqs)
}

// ParseCustom parses a "slot=name" request as given on the command line.
func ParseCustom(s string) (CustomName, error) {
	slot, name, ok := strings.Cut(s, "=")
	if !ok {
		return CustomName{}, failure.Configf("parse custom glyph", "%q is not slot=name", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(slot))
	if err != nil {
		return CustomName{}, failure.Configf("parse custom glyph", "slot %q is not a number", slot)
	}
	return CustomName{Slot: n, Name: strings.TrimSpace(name)}, nil
}
