package grid

import (
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"glyphsheet/internal/failure"
	"glyphsheet/internal/sheet"
	"glyphsheet/pkg/geometry"
)

// Extractor cuts drift-corrected cells out of a calibrated sheet.
type Extractor struct {
	Sheet     *sheet.Image
	Cols      int
	Threshold int
	// Exempt marks cells printed off-center on purpose; they are never
	// shifted and do not take part in smoothing.
	Exempt func(row, col int) bool

	// Drift collects one summary per extracted row.
	Drift []RowDrift
}

// Extract returns rows x cols cells in row-major order, top to bottom and
// left to right.
func (e *Extractor) Extract(cals []RowCalibration) ([]*Cell, error) {
	cells := make([]*Cell, 0, len(cals)*e.Cols)
	e.Drift = make([]RowDrift, 0, len(cals))
	for _, cal := range cals {
		row, err := e.ExtractRow(cal)
		if err != nil {
			return nil, err
		}
		cells = append(cells, row...)
	}
	return cells, nil
}

// ExtractRow measures every cell of one row, smooths the offsets along the
// row and crops each cell at its corrected position. Only the horizontal
// position is corrected.
func (e *Extractor) ExtractRow(cal RowCalibration) ([]*Cell, error) {
	samples := make([]Sample, e.Cols)
	exempt := make([]bool, e.Cols)
	for col := 0; col < e.Cols; col++ {
		if e.Exempt != nil && e.Exempt(cal.Index, col) {
			exempt[col] = true
			continue
		}
		raw, ok, err := e.measure(cal.NominalCell(col))
		if err != nil {
			return nil, withCell(err, cal.Index, col)
		}
		samples[col] = Sample{Raw: raw, Valid: ok}
	}

	offsets := Smooth(samples)
	drift := DriftStats(cal.Index, samples, offsets)
	e.Drift = append(e.Drift, drift)
	logrus.WithFields(logrus.Fields{
		"row":              drift.Row,
		"measured":         drift.Measured,
		"mean_offset":      drift.Mean,
		"slope_px_per_col": drift.Slope,
	}).Debug("Row drift")

	cells := make([]*Cell, e.Cols)
	for col := 0; col < e.Cols; col++ {
		rect := cal.NominalCell(col).Translate(offsets[col], 0)
		pixels, err := e.Crop(rect)
		if err != nil {
			return nil, withCell(err, cal.Index, col)
		}
		cells[col] = &Cell{
			Key:    BaseKey(cal.Index, col),
			Row:    cal.Index,
			Col:    col,
			Rect:   rect,
			Pixels: pixels,
			Drift:  offsets[col],
			Exempt: exempt[col],
		}
	}
	return cells, nil
}

// Crop copies the sheet pixels under rect, clipped to the sheet.
func (e *Extractor) Crop(rect geometry.Rect) (*image.NRGBA, error) {
	px := rect.Pixels().Clamp(e.Sheet.Bounds())
	if px.Empty() {
		return nil, failure.Geometry("crop cell", -1,
			fmt.Errorf("cell at (%.1f, %.1f) lies outside the %dx%d sheet",
				rect.X, rect.Y, e.Sheet.Width(), e.Sheet.Height()))
	}
	return e.Sheet.Crop(px.ToRectangle()), nil
}

func (e *Extractor) measure(rect geometry.Rect) (float64, bool, error) {
	px := rect.Pixels().Clamp(e.Sheet.Bounds())
	if px.Empty() {
		return 0, false, failure.Geometry("measure drift", -1,
			fmt.Errorf("cell at (%.1f, %.1f) lies outside the sheet", rect.X, rect.Y))
	}
	region := e.Sheet.Mat.Region(px.ToRectangle())
	defer region.Close()

	mask := sheet.InkMask(region, e.Threshold)
	defer mask.Close()

	raw, ok := RawOffset(mask, px.X, rect.Center().X)
	return raw, ok, nil
}

func withCell(err error, row, col int) error {
	if fe, ok := err.(*failure.Error); ok {
		return fe.WithCell(row, col)
	}
	return err
}

// RowDrift summarizes the corrections applied along one row. A steady
// slope points at a bent or rotated sheet.
type RowDrift struct {
	Row      int
	Measured int     // cells with ink that took part in smoothing
	Mean     float64 // mean offset in pixels
	Slope    float64 // pixels per column
	Peak     float64 // largest offset by magnitude
}

// DriftStats summarizes the smoothed offsets of the measured cells.
func DriftStats(row int, samples []Sample, offsets []float64) RowDrift {
	d := RowDrift{Row: row}
	var xs, ys []float64
	for col, s := range samples {
		if !s.Valid {
			continue
		}
		xs = append(xs, float64(col))
		ys = append(ys, offsets[col])
		if math.Abs(offsets[col]) > math.Abs(d.Peak) {
			d.Peak = offsets[col]
		}
	}
	d.Measured = len(xs)
	if len(xs) > 0 {
		d.Mean = stat.Mean(ys, nil)
	}
	if len(xs) > 1 {
		_, d.Slope = stat.LinearRegression(xs, ys, nil, false)
	}
	return d
}
