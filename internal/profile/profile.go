// Package profile provides the versioned grid geometry of printed glyph sheets.
//
// All lengths are in grid units, the printed sheet's layout unit (0.125cm
// on the page). Pixel geometry is never stored here: consumers divide a
// measured row bounding box by RowWidthUnits/RowHeightUnits to get the
// pixel size of one unit on that particular row.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Profile is the geometry of one sheet version.
type Profile struct {
	Version string `json:"version"`

	// Reference size of one row's printed border.
	RowWidthUnits  float64 `json:"row_width_units"`
	RowHeightUnits float64 `json:"row_height_units"`

	// Inset from the row border to the first scan area.
	HorPaddingUnits float64 `json:"hor_padding_units"`
	VerPaddingUnits float64 `json:"ver_padding_units"`

	// Scan area of one glyph cell.
	ScanWidthUnits  float64 `json:"scan_width_units"`
	ScanHeightUnits float64 `json:"scan_height_units"`

	// Side of the visible gray square printed inside each scan area.
	VisibleUnits float64 `json:"visible_units"`

	// Horizontal gap between scan area edge and visible square.
	ScanHorPaddingUnits float64 `json:"scan_hor_padding_units"`

	// Raster size handed to the outline tracer.
	TraceWidth  int `json:"trace_width"`
	TraceHeight int `json:"trace_height"`
}

// GlyphWidth returns the pixel width of one scan area for a row of the
// given measured width.
func (p Profile) GlyphWidth(rowWidth float64) float64 {
	return p.ScanWidthUnits * rowWidth / p.RowWidthUnits
}

// GlyphHeight returns the pixel height of one scan area for a row of the
// given measured height.
func (p Profile) GlyphHeight(rowHeight float64) float64 {
	return p.ScanHeightUnits * rowHeight / p.RowHeightUnits
}

// LeftPadding returns the pixel inset from row border to the first cell.
func (p Profile) LeftPadding(rowWidth float64) float64 {
	return p.HorPaddingUnits * rowWidth / p.RowWidthUnits
}

// TopPadding returns the pixel inset from row border to the cell tops.
func (p Profile) TopPadding(rowHeight float64) float64 {
	return p.VerPaddingUnits * rowHeight / p.RowHeightUnits
}

// CartoucheShift is how far the cartouche cells are moved inward so their
// scan area lines up with the shifted gray boxes printed for them.
func (p Profile) CartoucheShift(glyphW float64) float64 {
	return glyphW * p.ScanHorPaddingUnits / p.ScanWidthUnits
}

// EdgeTrim is the number of pixels removed from one edge of a cell of the
// given pixel width to drop bleed from the neighbouring scan area.
func (p Profile) EdgeTrim(cellW int) int {
	n := int(math.Round(float64(cellW) * p.ScanHorPaddingUnits / p.ScanWidthUnits))
	if n < 1 {
		n = 1
	}
	return n
}

// CellsPerRow is the number of scan areas that fit in one row border.
func (p Profile) CellsPerRow() int {
	return int((p.RowWidthUnits - 2*p.HorPaddingUnits) / p.ScanWidthUnits)
}

// Validate checks that the profile can be used for calibration.
func (p Profile) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("profile version is required")
	}
	if p.RowWidthUnits <= 0 || p.RowHeightUnits <= 0 {
		return fmt.Errorf("profile %s: row reference size must be positive", p.Version)
	}
	if p.ScanWidthUnits <= 0 || p.ScanHeightUnits <= 0 {
		return fmt.Errorf("profile %s: scan area must be positive", p.Version)
	}
	if p.TraceWidth <= 0 || p.TraceHeight <= 0 {
		return fmt.Errorf("profile %s: trace resolution must be positive", p.Version)
	}
	return nil
}

// Registry of known sheet profiles, keyed by version, with the version
// number each one applies from.
type entry struct {
	from    []int
	profile Profile
}

var registry []entry

// Register adds a profile that applies to sheet versions >= from.
func Register(from string, p Profile) {
	parsed, err := parseVersion(from)
	if err != nil {
		panic(fmt.Sprintf("profile: bad registration version %q: %v", from, err))
	}
	registry = append(registry, entry{from: parsed, profile: p})
	sort.Slice(registry, func(i, j int) bool {
		return compareVersions(registry[i].from, registry[j].from) < 0
	})
}

// Latest returns the profile for the newest sheet version.
func Latest() Profile {
	return registry[len(registry)-1].profile
}

// Select returns the profile for the given sheet version string, e.g.
// "2.0.3", "2.1" or "3". An empty version selects the latest profile.
func Select(version string) (Profile, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return Latest(), nil
	}
	v, err := parseVersion(version)
	if err != nil {
		return Profile{}, fmt.Errorf("invalid sheet version %q: %w", version, err)
	}
	if compareVersions(v, registry[0].from) < 0 {
		return Profile{}, fmt.Errorf("sheet version %q predates the oldest supported sheet (%s)",
			version, registry[0].profile.Version)
	}
	selected := registry[0].profile
	for _, e := range registry {
		if compareVersions(v, e.from) >= 0 {
			selected = e.profile
		}
	}
	return selected, nil
}

// Versions returns the registered profile versions, oldest first.
func Versions() []string {
	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.profile.Version
	}
	return out
}

func parseVersion(s string) ([]int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("component %q is not a number", part)
		}
		out[i] = n
	}
	return out, nil
}

// compareVersions compares dotted versions, treating missing components as 0.
func compareVersions(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func init() {
	Register("2.0", V20())
	Register("2.1", V21())
	Register("3", V3())
}
