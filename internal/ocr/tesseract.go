// Package ocr reads the version label printed above the first row of a
// glyph sheet, so older sheets get the right geometry profile without the
// user having to say which version they printed.
package ocr

import (
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"glyphsheet/internal/grid"
	"glyphsheet/pkg/geometry"
)

// VersionChars is the character set of a version label such as "v2.1.0".
const VersionChars = "0123456789.v"

// Height of the label strip above the first row, in row heights.
const labelStrip = 1.5

var versionPattern = regexp.MustCompile(`v?\s*(\d+(?:\.\d+){0,2})`)

// Engine provides OCR using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new OCR engine restricted to version label text.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Version numbers are not dictionary words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeRegion performs OCR on a region of a BGR image.
func (e *Engine) RecognizeRegion(img gocv.Mat, bounds geometry.RectInt) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}
	r := bounds.Clamp(image.Rect(0, 0, img.Cols(), img.Rows()))
	if r.Empty() {
		return "", fmt.Errorf("invalid region bounds")
	}

	region := img.Region(r.ToRectangle())
	defer region.Close()

	processed := preprocessForOCR(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// PSM 7 = treat the image as a single text line
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(VersionChars); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// ReadSheetVersion reads the label strip above the topmost row and returns
// the version it names, e.g. "2.1".
func (e *Engine) ReadSheetVersion(bgr gocv.Mat, top grid.RowCalibration) (string, error) {
	h := top.Height * labelStrip
	strip := geometry.NewRect(top.Origin.X, top.Origin.Y-h, top.Width, h).Pixels()

	text, err := e.RecognizeRegion(bgr, strip)
	if err != nil {
		return "", err
	}
	v, ok := ParseVersion(text)
	if !ok {
		return "", fmt.Errorf("no version number in label text %q", text)
	}
	return v, nil
}

// ParseVersion extracts the first dotted version number from OCR text.
func ParseVersion(text string) (string, bool) {
	m := versionPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// preprocessForOCR upscales the strip and binarizes it with Otsu's
// threshold into dark text on white.
func preprocessForOCR(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 150 {
		scale := 150.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	gray.Close()

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result
}
