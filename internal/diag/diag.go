// Package diag writes numbered snapshots of the intermediate images to the
// working directory so a failed detection can be inspected afterwards.
package diag

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"glyphsheet/internal/failure"
	"glyphsheet/internal/grid"
	"glyphsheet/internal/sheet"
	"glyphsheet/pkg/colorutil"
)

// Snapshot file names, in pipeline order.
const (
	GrayFile      = "01-gray.png"
	ThresholdFile = "02-threshold.png"
	ClosedFile    = "03-closed.png"
	CellsFile     = "04-cells.png"
)

// Recorder writes snapshots into Dir. A nil Recorder or empty Dir records
// nothing.
type Recorder struct {
	Dir string
}

// New returns a recorder for dir, creating it if needed.
func New(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, failure.IO("create working directory", dir, err)
	}
	return &Recorder{Dir: dir}, nil
}

func (r *Recorder) enabled() bool {
	return r != nil && r.Dir != ""
}

// Path returns the location of a snapshot file.
func (r *Recorder) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Stages writes the grayscale, threshold and closed images.
func (r *Recorder) Stages(st *sheet.Stages) error {
	if !r.enabled() {
		return nil
	}
	if err := r.write(GrayFile, st.Gray); err != nil {
		return err
	}
	if err := r.write(ThresholdFile, st.Threshold); err != nil {
		return err
	}
	return r.write(ClosedFile, st.Closed)
}

// Cells writes the sheet annotated with row borders, nominal and corrected
// cell rectangles.
func (r *Recorder) Cells(bgr gocv.Mat, cals []grid.RowCalibration, cells []*grid.Cell) error {
	if !r.enabled() {
		return nil
	}
	overlay := Overlay(bgr, cals, cells)
	defer overlay.Close()
	return r.write(CellsFile, overlay)
}

func (r *Recorder) write(name string, m gocv.Mat) error {
	path := r.Path(name)
	if !gocv.IMWrite(path, m) {
		return failure.IO("write snapshot", path, fmt.Errorf("encoder rejected %dx%d image", m.Cols(), m.Rows()))
	}
	logrus.Debugf("Wrote snapshot %s", path)
	return nil
}

// Overlay draws the calibration on a copy of the sheet: row borders in
// blue, nominal cells in yellow, drift-corrected cells in red (green when
// no correction was applied). Rows are labelled with their index.
func Overlay(bgr gocv.Mat, cals []grid.RowCalibration, cells []*grid.Cell) gocv.Mat {
	debug := bgr.Clone()

	for _, cal := range cals {
		b := cal.Bounds().Pixels().ToRectangle()
		gocv.Rectangle(&debug, b, colorutil.Blue, 2)

		labelPos := image.Point{X: b.Min.X, Y: b.Min.Y - 5}
		if labelPos.Y < 15 {
			labelPos.Y = b.Max.Y + 15
		}
		gocv.PutText(&debug, fmt.Sprintf("row %d", cal.Index), labelPos,
			gocv.FontHersheyPlain, 1.0, colorutil.Blue, 1)
	}

	for _, c := range cells {
		if c.Synthesized() || c.Row >= len(cals) {
			continue
		}
		nominal := cals[c.Row].NominalCell(c.Col).Pixels().ToRectangle()
		gocv.Rectangle(&debug, nominal, colorutil.Yellow, 1)

		col := colorutil.Green
		if c.Drift != 0 {
			col = colorutil.Red
		}
		gocv.Rectangle(&debug, c.Rect.Pixels().ToRectangle(), col, 1)
	}

	return debug
}
