package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothAveragesWithPreviousOffset(t *testing.T) {
	got := Smooth([]Sample{
		{Raw: 4, Valid: true},
		{Raw: 2, Valid: true},
		{Raw: 6, Valid: true},
		{Raw: -1, Valid: true},
	})
	assert.Equal(t, []float64{4, 3, 4.5, 1.75}, got)
}

func TestSmoothSkipsBlankCells(t *testing.T) {
	got := Smooth([]Sample{
		{},
		{Raw: 2, Valid: true},
		{Raw: 100}, // measured but invalid: ignored
		{Raw: 6, Valid: true},
	})
	assert.Equal(t, []float64{0, 2, 0, 4}, got)
}

func TestSmoothZeroStaysZero(t *testing.T) {
	samples := make([]Sample, 20)
	for i := range samples {
		samples[i] = Sample{Valid: true}
	}
	for _, off := range Smooth(samples) {
		assert.Zero(t, off)
	}
	assert.Empty(t, Smooth(nil))
}

func TestDriftStatsSkipsUnmeasuredCells(t *testing.T) {
	samples := []Sample{
		{Raw: 1, Valid: true},
		{Raw: 3, Valid: true},
		{},
		{Raw: 4, Valid: true},
	}
	d := DriftStats(2, samples, []float64{1, 2, 99, 4})

	assert.Equal(t, 2, d.Row)
	assert.Equal(t, 3, d.Measured)
	assert.InDelta(t, 7.0/3, d.Mean, 1e-9)
	assert.InDelta(t, 1, d.Slope, 1e-9)
	assert.Equal(t, 4.0, d.Peak)
}

func TestDriftStatsPeakKeepsSign(t *testing.T) {
	samples := []Sample{{Valid: true}, {Valid: true}}
	d := DriftStats(0, samples, []float64{2, -5})
	assert.Equal(t, -5.0, d.Peak)
	assert.InDelta(t, -7, d.Slope, 1e-9)
}

func TestDriftStatsBlankRow(t *testing.T) {
	d := DriftStats(1, make([]Sample, 5), make([]float64, 5))
	assert.Equal(t, RowDrift{Row: 1}, d)
}

func TestSpreadOfEqualRowsIsNotSkewed(t *testing.T) {
	cals := []RowCalibration{
		{Width: 800, Height: 40},
		{Width: 800, Height: 40},
		{Width: 800, Height: 40},
	}
	s := Spread(cals)
	assert.InDelta(t, 800, s.MeanWidth, 1e-9)
	assert.InDelta(t, 40, s.MeanHeight, 1e-9)
	assert.Zero(t, s.WidthCV)
	assert.Zero(t, s.HeightCV)
	assert.False(t, s.Skewed())
}

func TestSpreadFlagsUnevenRows(t *testing.T) {
	s := Spread([]RowCalibration{
		{Width: 800, Height: 40},
		{Width: 960, Height: 40},
	})
	assert.InDelta(t, 880, s.MeanWidth, 1e-9)
	assert.Greater(t, s.WidthCV, 0.05)
	assert.Zero(t, s.HeightCV)
	assert.True(t, s.Skewed())
}

func TestSpreadOfSingleRow(t *testing.T) {
	s := Spread([]RowCalibration{{Width: 800, Height: 40}})
	assert.Equal(t, RowSpread{MeanWidth: 800, MeanHeight: 40}, s)
	assert.False(t, s.Skewed())
	assert.Equal(t, RowSpread{}, Spread(nil))
}
