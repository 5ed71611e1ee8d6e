package grid

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"glyphsheet/internal/failure"
	"glyphsheet/internal/profile"
	"glyphsheet/pkg/geometry"
)

// Rows whose measured sizes vary more than this (coefficient of
// variation) suggest a skewed or warped scan.
const rowSpreadWarning = 0.05

// RowCalibration is the pixel geometry of one printed row, derived from
// its measured border.
type RowCalibration struct {
	Index       int // top to bottom
	Origin      geometry.Point2D
	Width       float64
	Height      float64
	GlyphW      float64
	GlyphH      float64
	LeftPadding float64
	TopPadding  float64
}

// Bounds returns the measured row border.
func (rc RowCalibration) Bounds() geometry.Rect {
	return geometry.NewRect(rc.Origin.X, rc.Origin.Y, rc.Width, rc.Height)
}

// NominalCell returns the scan area of column col before drift correction.
func (rc RowCalibration) NominalCell(col int) geometry.Rect {
	return geometry.NewRect(
		rc.Origin.X+rc.LeftPadding+float64(col)*rc.GlyphW,
		rc.Origin.Y+rc.TopPadding,
		rc.GlyphW,
		rc.GlyphH,
	)
}

// Calibrate derives each row's geometry from its own bounding box and
// returns the rows sorted top to bottom.
func Calibrate(rows []Contour, p profile.Profile) ([]RowCalibration, error) {
	cals := make([]RowCalibration, 0, len(rows))
	for _, c := range rows {
		w, h := float64(c.Rect.Dx()), float64(c.Rect.Dy())
		cals = append(cals, RowCalibration{
			Origin:      geometry.NewPoint2D(float64(c.Rect.Min.X), float64(c.Rect.Min.Y)),
			Width:       w,
			Height:      h,
			GlyphW:      p.GlyphWidth(w),
			GlyphH:      p.GlyphHeight(h),
			LeftPadding: p.LeftPadding(w),
			TopPadding:  p.TopPadding(h),
		})
	}

	sort.SliceStable(cals, func(i, j int) bool {
		return cals[i].Origin.Y < cals[j].Origin.Y
	})
	for i := range cals {
		cals[i].Index = i
		if cals[i].Width <= 0 || cals[i].Height <= 0 {
			return nil, failure.Geometry("calibrate rows", i,
				fmt.Errorf("row border measured %.0fx%.0f px", cals[i].Width, cals[i].Height))
		}
	}

	logRowSpread(cals)
	return cals, nil
}

// RowSpread summarizes how much the measured row borders differ in size.
// On a flat, square-on scan every row measures the same.
type RowSpread struct {
	MeanWidth  float64
	MeanHeight float64
	WidthCV    float64 // coefficient of variation
	HeightCV   float64
}

// Skewed reports whether the rows vary enough to suggest a skewed or
// folded scan.
func (s RowSpread) Skewed() bool {
	return s.WidthCV > rowSpreadWarning || s.HeightCV > rowSpreadWarning
}

// Spread computes the row size statistics. Fewer than two rows have no
// spread.
func Spread(cals []RowCalibration) RowSpread {
	if len(cals) == 0 {
		return RowSpread{}
	}
	widths := make([]float64, len(cals))
	heights := make([]float64, len(cals))
	for i, c := range cals {
		widths[i] = c.Width
		heights[i] = c.Height
	}
	if len(cals) == 1 {
		return RowSpread{MeanWidth: widths[0], MeanHeight: heights[0]}
	}
	wMean, wStd := stat.MeanStdDev(widths, nil)
	hMean, hStd := stat.MeanStdDev(heights, nil)
	return RowSpread{MeanWidth: wMean, MeanHeight: hMean, WidthCV: wStd / wMean, HeightCV: hStd / hMean}
}

func logRowSpread(cals []RowCalibration) {
	s := Spread(cals)
	fields := logrus.Fields{
		"mean_width":  s.MeanWidth,
		"mean_height": s.MeanHeight,
		"width_cv":    s.WidthCV,
		"height_cv":   s.HeightCV,
	}
	if s.Skewed() {
		logrus.WithFields(fields).Warn("Row sizes vary across the sheet; check the scan for skew or folds")
		return
	}
	logrus.WithFields(fields).Debug("Calibrated rows")
}
