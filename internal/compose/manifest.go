package compose

import (
	"glyphsheet/internal/grid"
)

// Manifest is the final ordered cell sequence: base cells in row-major
// order followed by the synthesized cells. Position i feeds glyph slot i.
type Manifest struct {
	Cells []*grid.Cell
}

// Len returns the number of cells.
func (m *Manifest) Len() int {
	return len(m.Cells)
}

// Keys returns the manifest keys in order.
func (m *Manifest) Keys() []string {
	keys := make([]string, len(m.Cells))
	for i, c := range m.Cells {
		keys[i] = c.Key
	}
	return keys
}

// Index returns the position of key, or -1.
func (m *Manifest) Index(key string) int {
	for i, c := range m.Cells {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the cell for key, or nil.
func (m *Manifest) Get(key string) *grid.Cell {
	if i := m.Index(key); i >= 0 {
		return m.Cells[i]
	}
	return nil
}
