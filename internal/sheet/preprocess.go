package sheet

import (
	"image"

	"gocv.io/x/gocv"
)

// CloseIterations is how many dilations, then erosions, bridge gaps in
// the printed row borders.
const CloseIterations = 2

// Stages holds every intermediate image of preprocessing so the
// diagnostic snapshots can show them.
type Stages struct {
	Gray      gocv.Mat
	Threshold gocv.Mat // ink is white
	Closed    gocv.Mat
}

// Close releases all stage buffers.
func (s *Stages) Close() {
	s.Gray.Close()
	s.Threshold.Close()
	s.Closed.Close()
}

// Preprocess converts the sheet to grayscale, inverse-thresholds it so
// anything darker than threshold becomes foreground, and applies a
// morphological close with a 3x3 rectangle.
func Preprocess(bgr gocv.Mat, threshold int) *Stages {
	st := &Stages{
		Gray:      gocv.NewMat(),
		Threshold: gocv.NewMat(),
		Closed:    gocv.NewMat(),
	}
	gocv.CvtColor(bgr, &st.Gray, gocv.ColorBGRToGray)
	gocv.Threshold(st.Gray, &st.Threshold, float32(threshold), 255, gocv.ThresholdBinaryInv)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	st.Threshold.CopyTo(&st.Closed)
	for i := 0; i < CloseIterations; i++ {
		gocv.Dilate(st.Closed, &st.Closed, kernel)
	}
	for i := 0; i < CloseIterations; i++ {
		gocv.Erode(st.Closed, &st.Closed, kernel)
	}
	return st
}

// InkMask returns a single-channel mask of ink pixels in a BGR region.
// The caller closes the result.
func InkMask(bgr gocv.Mat, threshold int) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	gocv.Threshold(gray, &mask, float32(threshold), 255, gocv.ThresholdBinaryInv)
	return mask
}
