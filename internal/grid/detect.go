// Package grid locates the printed rows of a glyph sheet, calibrates each
// row's pixel geometry and cuts drift-corrected cells out of it.
package grid

import (
	"fmt"
	"image"
	"sort"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"glyphsheet/internal/failure"
)

// Contour approximation tolerance as a fraction of the closed perimeter.
const approxEpsilon = 0.01

// Above this fraction of the image area a candidate is most likely the
// page edge rather than a row border.
const pageCoverage = 0.95

// Contour is a quadrilateral candidate for a printed row border.
type Contour struct {
	Rect image.Rectangle // bounding box
	Area float64         // contour area
}

// FindQuads returns every external contour of the closed binary image
// whose polygon approximation has exactly four vertices, largest first.
func FindQuads(closed gocv.Mat) []Contour {
	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var quads []Contour
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		epsilon := approxEpsilon * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		vertices := approx.Size()
		approx.Close()
		if vertices != 4 {
			continue
		}
		quads = append(quads, Contour{
			Rect: gocv.BoundingRect(contour),
			Area: gocv.ContourArea(contour),
		})
	}

	sort.SliceStable(quads, func(i, j int) bool {
		return quads[i].Area > quads[j].Area
	})
	return quads
}

// DetectRows returns the rows largest quadrilaterals of the closed image.
// The printed row borders are assumed to be the largest four-sided shapes
// on the page.
func DetectRows(closed gocv.Mat, rows int) ([]Contour, error) {
	quads := FindQuads(closed)
	logrus.Debugf("Found %d quadrilateral contours, need %d rows", len(quads), rows)

	if len(quads) < rows {
		return nil, failure.Geometry("detect rows", -1,
			fmt.Errorf("found %d four-sided contours, need %d row borders", len(quads), rows))
	}

	imgArea := float64(closed.Rows() * closed.Cols())
	if imgArea > 0 && quads[0].Area >= pageCoverage*imgArea {
		logrus.WithFields(logrus.Fields{
			"area":     quads[0].Area,
			"coverage": quads[0].Area / imgArea,
		}).Warn("Largest contour covers almost the whole image; it is probably the page edge, not a row")
	}

	return quads[:rows], nil
}
