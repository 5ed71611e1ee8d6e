// Package pipeline runs a glyph sheet through every stage: detection,
// calibration, drift-corrected extraction, synthesis, assignment, and
// optionally outline tracing and font compilation.
package pipeline

import (
	"os"

	"github.com/sirupsen/logrus"

	"glyphsheet/internal/assign"
	"glyphsheet/internal/compose"
	"glyphsheet/internal/config"
	"glyphsheet/internal/diag"
	"glyphsheet/internal/failure"
	"glyphsheet/internal/fontbuild"
	"glyphsheet/internal/grid"
	"glyphsheet/internal/ocr"
	"glyphsheet/internal/outline"
	"glyphsheet/internal/profile"
	"glyphsheet/internal/sheet"
)

// Options configure one run.
type Options struct {
	Sheet      string // input raster
	Output     string // font and preview, or the glyph tree with PNGOnly
	ConfigPath string // empty: embedded default

	// Work keeps glyph images, outlines, compiler input and diagnostic
	// snapshots. When empty a temporary directory is used and removed
	// when the run ends.
	Work string

	Metadata      config.Metadata
	Custom        []config.CustomName
	DetectVersion bool // read the version label when none is given
	PNGOnly       bool // stop after writing glyph images to Output
}

// Report summarizes a successful run.
type Report struct {
	Profile  string
	Rows     int
	Spread   grid.RowSpread
	Drift    []grid.RowDrift
	Cells    int // manifest length
	Glyphs   *assign.Result
	Outlines []string
	Font     *fontbuild.Font
}

// Run executes the pipeline. It fails fast on the first error.
func Run(opts Options) (report *Report, err error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Customize(opts.Custom); err != nil {
		return nil, err
	}
	meta := opts.Metadata.Resolve(cfg)

	work := opts.Work
	if work == "" {
		work, err = os.MkdirTemp("", "glyphsheet-")
		if err != nil {
			return nil, failure.IO("create working directory", os.TempDir(), err)
		}
		defer func() {
			if rmErr := os.RemoveAll(work); rmErr != nil {
				logrus.Warnf("Failed to remove working directory %s: %v", work, rmErr)
			}
		}()
	}

	var rec *diag.Recorder
	if opts.Work != "" {
		if rec, err = diag.New(opts.Work); err != nil {
			return nil, err
		}
	}

	img, err := sheet.Load(opts.Sheet)
	if err != nil {
		return nil, err
	}
	defer img.Close()
	logrus.Infof("Loaded sheet %s (%dx%d)", opts.Sheet, img.Width(), img.Height())

	stages := sheet.Preprocess(img.Mat, cfg.Threshold)
	defer stages.Close()
	if err := rec.Stages(stages); err != nil {
		return nil, err
	}

	rows, err := grid.DetectRows(stages.Closed, cfg.Rows)
	if err != nil {
		return nil, err
	}

	p, err := selectProfile(meta.SheetVersion, opts.DetectVersion, img, rows)
	if err != nil {
		return nil, err
	}
	meta.SheetVersion = p.Version
	logrus.Infof("Using sheet profile v%s", p.Version)

	cals, err := grid.Calibrate(rows, p)
	if err != nil {
		return nil, err
	}

	ex := &grid.Extractor{Sheet: img, Cols: cfg.Cols, Threshold: cfg.Threshold, Exempt: cfg.Layout.Exempt}
	cells, err := ex.Extract(cals)
	if err != nil {
		return nil, err
	}
	if err := rec.Cells(img.Mat, cals, cells); err != nil {
		return nil, err
	}

	synth := &compose.Synthesizer{Profile: p, Layout: cfg.Layout, Rows: cfg.Rows, Cols: cfg.Cols, Crop: ex.Crop}
	manifest, err := synth.Synthesize(cells)
	if err != nil {
		return nil, err
	}

	report = &Report{
		Profile: p.Version,
		Rows:    len(cals),
		Spread:  grid.Spread(cals),
		Drift:   ex.Drift,
		Cells:   manifest.Len(),
	}

	root := work
	if opts.PNGOnly {
		root = opts.Output
	}
	report.Glyphs, err = (&assign.Assigner{Root: root}).Assign(cfg, manifest)
	if err != nil {
		return nil, err
	}
	if opts.PNGOnly {
		return report, nil
	}

	tracer := outline.New(p)
	if report.Outlines, err = tracer.TraceAll(report.Glyphs.Paths()); err != nil {
		return nil, err
	}

	report.Font, err = fontbuild.NewCompiler(work).Build(cfg, meta, work, opts.Output)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Wrote %s and %s", report.Font.Path, report.Font.Preview)
	return report, nil
}

// selectProfile picks the geometry profile once per run. An explicit
// version wins; otherwise the label above the first row is read when
// asked, falling back to the latest profile.
func selectProfile(version string, detect bool, img *sheet.Image, rows []grid.Contour) (profile.Profile, error) {
	if version == "" && detect {
		version = detectVersion(img, rows)
	}
	p, err := profile.Select(version)
	if err != nil {
		return profile.Profile{}, failure.Config("select sheet profile", err)
	}
	return p, nil
}

func detectVersion(img *sheet.Image, rows []grid.Contour) string {
	// Row origins and heights do not depend on the profile.
	cals, err := grid.Calibrate(rows, profile.Latest())
	if err != nil || len(cals) == 0 {
		return ""
	}
	engine, err := ocr.NewEngine()
	if err != nil {
		logrus.Warnf("Sheet version detection unavailable: %v", err)
		return ""
	}
	defer engine.Close()

	v, err := engine.ReadSheetVersion(img.Mat, cals[0])
	if err != nil {
		logrus.Warnf("Could not read sheet version, assuming latest: %v", err)
		return ""
	}
	logrus.Infof("Detected sheet version %s", v)
	return v
}
