// Package main provides the glyphsheet command: it turns a scanned sheet of
// handwritten glyphs into a font.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"glyphsheet/internal/config"
	"glyphsheet/internal/grid"
	"glyphsheet/internal/pipeline"
	"glyphsheet/internal/version"
)

var (
	configPath    string
	debugDir      string
	logLevel      string
	customNames   []string
	detectVersion bool
	pngOnly       bool
	meta          config.Metadata
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "glyphsheet <sheet> <output-directory>",
		Short: "Convert a scanned glyph sheet into a font",
		Long: `glyphsheet locates the printed grid on a photographed or scanned glyph
sheet, cuts out every handwritten glyph, traces the outlines with potrace
and compiles them into a TrueType font with fontforge.`,
		Args:          cobra.ExactArgs(2),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		RunE: run,
	}

	fs := rootCmd.Flags()
	fs.StringVar(&configPath, "config", "", "Configuration file (built-in default when empty)")
	fs.StringVar(&debugDir, "debug-directory", "", "Keep glyph images, outlines and diagnostic snapshots here (temporary by default)")
	fs.StringArrayVar(&customNames, "custom", nil, "Assign a glyph name to a slot, as slot=name (repeatable)")
	fs.BoolVar(&detectVersion, "detect-version", false, "Read the sheet version label when --sheet-version is not given")
	fs.BoolVar(&pngOnly, "png-only", false, "Write glyph images to the output directory and stop")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	addMetadataFlags(fs, &meta)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func addMetadataFlags(fs *pflag.FlagSet, m *config.Metadata) {
	fs.StringVar(&m.Filename, "filename", "", `Font file name ("MyFont" by default)`)
	fs.StringVar(&m.Family, "family", "", "Font family name (file name by default)")
	fs.StringVar(&m.Designer, "designer", "", `Font designer ("me" by default)`)
	fs.StringVar(&m.License, "license", "", `Font license; "ofl" and "cc0" fill in text and URL ("All rights reserved" by default)`)
	fs.StringVar(&m.LicenseURL, "license-url", "", "Font license URL")
	fs.StringVar(&m.SheetVersion, "sheet-version", "", "Sheet version (latest by default)")
}

func run(cmd *cobra.Command, args []string) error {
	var custom []config.CustomName
	for _, s := range customNames {
		c, err := config.ParseCustom(s)
		if err != nil {
			return err
		}
		custom = append(custom, c)
	}

	logrus.Infof("glyphsheet %s", version.String())
	report, err := pipeline.Run(pipeline.Options{
		Sheet:         args[0],
		Output:        args[1],
		ConfigPath:    configPath,
		Work:          debugDir,
		Metadata:      meta,
		Custom:        custom,
		DetectVersion: detectVersion,
		PNGOnly:       pngOnly,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Sheet v%s: %d rows, %d cells, %d glyphs written, %d discarded\n",
		report.Profile, report.Rows, report.Cells, len(report.Glyphs.Glyphs), report.Glyphs.Discarded)
	if report.Spread.Skewed() {
		fmt.Printf("Warning: row sizes vary by %.1f%% (width) and %.1f%% (height); the scan may be skewed\n",
			100*report.Spread.WidthCV, 100*report.Spread.HeightCV)
	}
	var steepest grid.RowDrift
	for _, d := range report.Drift {
		if math.Abs(d.Slope) > math.Abs(steepest.Slope) {
			steepest = d
		}
	}
	if steepest.Measured > 1 {
		fmt.Printf("Largest drift trend: row %d, %.2f px per column\n", steepest.Row, steepest.Slope)
	}
	if report.Font != nil {
		fmt.Printf("Font:    %s (%d glyphs)\n", report.Font.Path, report.Font.Glyphs)
		fmt.Printf("Preview: %s\n", report.Font.Preview)
	}
	return nil
}
