// Package geometry provides the point and rectangle types shared by the
// calibration, extraction and overlay code.
package geometry

import "image"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Rect represents a rectangle with floating-point coordinates.
// Calibrated cell geometry stays fractional until a crop is taken.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// WithWidth returns the rectangle with its width replaced.
func (r Rect) WithWidth(w float64) Rect {
	r.Width = w
	return r
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Pixels converts to integer pixel bounds. Each edge is truncated
// independently, so the integer width may differ by one from
// int(r.Width) depending on where the rectangle starts.
func (r Rect) Pixels() RectInt {
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := int(r.X+r.Width), int(r.Y+r.Height)
	return RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToRectangle converts to an image.Rectangle.
func (r RectInt) ToRectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Clamp returns the part of the rectangle that lies within bounds.
// The result may be empty.
func (r RectInt) Clamp(bounds image.Rectangle) RectInt {
	clipped := r.ToRectangle().Intersect(bounds)
	return RectInt{
		X:      clipped.Min.X,
		Y:      clipped.Min.Y,
		Width:  clipped.Dx(),
		Height: clipped.Dy(),
	}
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
