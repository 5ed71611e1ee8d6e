// Command sheetinspect runs row detection, calibration and drift-corrected
// extraction on a glyph sheet and prints what it measured.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"glyphsheet/internal/compose"
	"glyphsheet/internal/config"
	"glyphsheet/internal/diag"
	"glyphsheet/internal/grid"
	"glyphsheet/internal/profile"
	"glyphsheet/internal/sheet"
)

func main() {
	imagePath := flag.String("image", "", "Path to glyph sheet (TIFF, PNG, or JPEG)")
	configPath := flag.String("config", "", "Configuration file (built-in default when empty)")
	version := flag.String("sheet-version", "", "Sheet version (latest by default)")
	outDir := flag.String("out", "", "Write diagnostic snapshots to this directory")
	cells := flag.Bool("cells", false, "Print every cell, not just row summaries")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: sheetinspect -image <path> [-config file] [-sheet-version 2.1] [-out dir] [-cells]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("Failed to load configuration", err)
	}
	p, err := profile.Select(*version)
	if err != nil {
		fail("Failed to select profile", err)
	}

	img, err := sheet.Load(*imagePath)
	if err != nil {
		fail("Failed to load sheet", err)
	}
	defer img.Close()
	fmt.Printf("Loaded sheet: %dx%d pixels\n", img.Width(), img.Height())
	fmt.Printf("Profile: v%s (glyph %.0fx%.0f units in %.0fx%.0f row)\n",
		p.Version, p.ScanWidthUnits, p.ScanHeightUnits, p.RowWidthUnits, p.RowHeightUnits)
	fmt.Printf("Grid: %d rows x %d columns, threshold %d\n", cfg.Rows, cfg.Cols, cfg.Threshold)

	rec, err := diag.New(*outDir)
	if err != nil {
		fail("Failed to create snapshot directory", err)
	}

	stages := sheet.Preprocess(img.Mat, cfg.Threshold)
	defer stages.Close()
	if err := rec.Stages(stages); err != nil {
		fail("Failed to write snapshots", err)
	}

	quads := grid.FindQuads(stages.Closed)
	fmt.Printf("\nFound %d four-sided contours\n", len(quads))

	rows, err := grid.DetectRows(stages.Closed, cfg.Rows)
	if err != nil {
		fail("Row detection failed", err)
	}
	cals, err := grid.Calibrate(rows, p)
	if err != nil {
		fail("Calibration failed", err)
	}

	ex := &grid.Extractor{Sheet: img, Cols: cfg.Cols, Threshold: cfg.Threshold, Exempt: cfg.Layout.Exempt}
	extracted, err := ex.Extract(cals)
	if err != nil {
		fail("Extraction failed", err)
	}
	if err := rec.Cells(img.Mat, cals, extracted); err != nil {
		fail("Failed to write snapshots", err)
	}

	spread := grid.Spread(cals)
	fmt.Printf("\nRow size: mean %.1fx%.1f px, spread %.2f%% x %.2f%%",
		spread.MeanWidth, spread.MeanHeight, 100*spread.WidthCV, 100*spread.HeightCV)
	if spread.Skewed() {
		fmt.Printf(" (skewed)")
	}
	fmt.Println()

	fmt.Printf("\n%-4s %8s %8s %8s %8s %8s %8s %5s %9s %9s %9s\n",
		"Row", "X", "Y", "Width", "Height", "GlyphW", "GlyphH", "Inked", "MeanDrift", "MaxDrift", "Slope")
	fmt.Println(strings.Repeat("-", 100))
	for i, cal := range cals {
		d := ex.Drift[i]
		fmt.Printf("%-4d %8.1f %8.1f %8.1f %8.1f %8.1f %8.1f %5d %9.2f %9.2f %9.3f\n",
			cal.Index, cal.Origin.X, cal.Origin.Y, cal.Width, cal.Height,
			cal.GlyphW, cal.GlyphH, d.Measured, d.Mean, d.Peak, d.Slope)
	}

	if *cells {
		fmt.Printf("\n%-8s %-20s %8s %8s %8s\n", "Key", "Slot", "X", "Width", "Drift")
		fmt.Println(strings.Repeat("-", 56))
		for i, c := range extracted {
			name := ""
			if i < len(cfg.Slots) {
				name = cfg.Slots[i].Name
			}
			note := ""
			if c.Exempt {
				note = " (exempt)"
			}
			fmt.Printf("%-8s %-20s %8.1f %8.1f %8.2f%s\n", c.Key, name, c.Rect.X, c.Rect.Width, c.Drift, note)
		}
	}

	synth := &compose.Synthesizer{Profile: p, Layout: cfg.Layout, Rows: cfg.Rows, Cols: cfg.Cols, Crop: ex.Crop}
	m, err := synth.Synthesize(extracted)
	if err != nil {
		fail("Synthesis failed", err)
	}
	fmt.Printf("\nManifest: %d base + %d synthesized = %d cells for %d slots (%d named)\n",
		len(extracted), m.Len()-len(extracted), m.Len(), len(cfg.Slots), cfg.NamedSlots())
	if *outDir != "" {
		fmt.Printf("Snapshots written to %s\n", *outDir)
	}
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
