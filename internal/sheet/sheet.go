// Package sheet loads the scanned glyph sheet and prepares the binary
// image the grid detector works on.
package sheet

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"

	"glyphsheet/internal/failure"
)

// Image is a loaded sheet. It is never modified after Load; crops are
// always copied out of it.
type Image struct {
	Path   string
	Pixels *image.NRGBA
	Mat    gocv.Mat // BGR, same pixels as Pixels
}

// Load reads and decodes a sheet image. Directories are rejected.
func Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.IO("open sheet", path, err)
	}
	if info.IsDir() {
		e := failure.Config("open sheet", fmt.Errorf("sheet must be a file, not a directory"))
		e.Name = path
		return nil, e
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, failure.IO("open sheet", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, failure.IO("decode sheet", path, err)
	}
	return FromImage(img, path)
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image, path string) (*Image, error) {
	pixels := imaging.Clone(img)
	if pixels.Bounds().Empty() {
		return nil, failure.IO("decode sheet", path, fmt.Errorf("image has no pixels"))
	}
	mat, err := ToMat(pixels)
	if err != nil {
		return nil, failure.IO("convert sheet", path, err)
	}
	return &Image{Path: path, Pixels: pixels, Mat: mat}, nil
}

// Close releases the OpenCV buffer.
func (s *Image) Close() {
	s.Mat.Close()
}

// Width returns the sheet width in pixels.
func (s *Image) Width() int {
	return s.Pixels.Bounds().Dx()
}

// Height returns the sheet height in pixels.
func (s *Image) Height() int {
	return s.Pixels.Bounds().Dy()
}

// Bounds returns the pixel bounds, always anchored at the origin.
func (s *Image) Bounds() image.Rectangle {
	return s.Pixels.Bounds()
}

// Crop copies a region of the sheet. The rectangle is clipped to the sheet.
func (s *Image) Crop(r image.Rectangle) *image.NRGBA {
	return imaging.Crop(s.Pixels, r)
}

// ToMat converts an NRGBA image to a BGR Mat.
func ToMat(img *image.NRGBA) (gocv.Mat, error) {
	b := img.Bounds()
	if img.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	rgba, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap pixels: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// SupportedFormats lists the accepted sheet file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}
}

// IsSupportedFormat checks the extension of path.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range SupportedFormats() {
		if ext == f {
			return true
		}
	}
	return false
}
