package grid

import (
	"gocv.io/x/gocv"
)

// Sample is the measured horizontal ink offset of one cell.
type Sample struct {
	Raw   float64 // centroid minus nominal center, pixels
	Valid bool    // false for blank or exempt cells
}

// Smooth turns raw per-column offsets into applied offsets. The first
// valid column keeps its raw offset; every later valid column averages its
// raw offset with the previous applied one:
//
//	offset[c] = (raw[c] + offset[prev]) / 2
//
// Invalid columns get 0 and leave the chain untouched, so a blank cell
// neither moves nor disturbs its neighbours.
func Smooth(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	started := false
	var prev float64
	for i, s := range samples {
		if !s.Valid {
			continue
		}
		if !started {
			out[i] = s.Raw
			started = true
		} else {
			out[i] = (s.Raw + prev) / 2
		}
		prev = out[i]
	}
	return out
}

// RawOffset measures the horizontal ink centroid of a binary mask whose
// left edge sits at cropX on the sheet, relative to nominalCenter.
// Pixel centers are at x+0.5, so ink symmetric about the nominal center
// measures exactly 0. ok is false when the mask has no ink.
func RawOffset(mask gocv.Mat, cropX int, nominalCenter float64) (offset float64, ok bool) {
	moments := gocv.Moments(mask, true)
	m00 := moments["m00"]
	if m00 <= 0 {
		return 0, false
	}
	centroid := float64(cropX) + moments["m10"]/m00 + 0.5
	return centroid - nominalCenter, true
}
