package profile

// Version 2 sheets
// Each row border is 164x12 units with 2 units of horizontal and 1 unit
// of vertical padding. Twenty 8x10 scan areas per row, each holding a
// 7x7 visible gray square centered horizontally.
const (
	v2RowWidth   = 164
	v2RowHeight  = 12
	v2HorPadding = 2
	v2VerPadding = 1
	v2ScanWidth  = 8
	v2ScanHeight = 10
	v2Visible    = 7
)

// Version 3 sheets
// Scan areas grow to 9x12 (3:4, matching the tracer resolution) with an
// 8x8 visible square; the row border grows to 184x14.
const (
	v3RowWidth   = 184
	v3RowHeight  = 14
	v3HorPadding = 2
	v3VerPadding = 1
	v3ScanWidth  = 9
	v3ScanHeight = 12
	v3Visible    = 8
)

// V20 returns the profile for 2.0.x sheets. These are traced at a lower
// resolution to avoid picking up the corner pixels of the gray boxes.
func V20() Profile {
	return Profile{
		Version:             "2.0",
		RowWidthUnits:       v2RowWidth,
		RowHeightUnits:      v2RowHeight,
		HorPaddingUnits:     v2HorPadding,
		VerPaddingUnits:     v2VerPadding,
		ScanWidthUnits:      v2ScanWidth,
		ScanHeightUnits:     v2ScanHeight,
		VisibleUnits:        v2Visible,
		ScanHorPaddingUnits: (v2ScanWidth - v2Visible) / 2.0,
		TraceWidth:          100,
		TraceHeight:         125,
	}
}

// V21 returns the profile for 2.1.x sheets.
func V21() Profile {
	p := V20()
	p.Version = "2.1"
	p.TraceWidth = 200
	p.TraceHeight = 250
	return p
}

// V3 returns the profile for version 3 sheets.
func V3() Profile {
	return Profile{
		Version:             "3",
		RowWidthUnits:       v3RowWidth,
		RowHeightUnits:      v3RowHeight,
		HorPaddingUnits:     v3HorPadding,
		VerPaddingUnits:     v3VerPadding,
		ScanWidthUnits:      v3ScanWidth,
		ScanHeightUnits:     v3ScanHeight,
		VisibleUnits:        v3Visible,
		ScanHorPaddingUnits: (v3ScanWidth - v3Visible) / 2.0,
		TraceWidth:          288,
		TraceHeight:         384,
	}
}
