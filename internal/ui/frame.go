package ui

import (
	"fmt"
	"image"
)

// Frame is an axis-aligned rectangle with inclusive corners (X0,Y0) and
// (X1,Y1). Frames are values and can be used as map keys.
type Frame struct {
	X0, Y0, X1, Y1 int
}

// NewFrame returns the frame spanning both corners. Like image.Rect, the
// corners are swapped if needed so that X1 >= X0 and Y1 >= Y0.
func NewFrame(x0, y0, x1, y1 int) Frame {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Frame{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// FrameOf converts a half-open image.Rectangle into a Frame.
func FrameOf(r image.Rectangle) Frame {
	return NewFrame(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1)
}

// Width returns the number of pixel columns covered by the frame.
func (f Frame) Width() int {
	return f.X1 - f.X0 + 1
}

// Height returns the number of pixel rows covered by the frame.
func (f Frame) Height() int {
	return f.Y1 - f.Y0 + 1
}

// Corners returns x0, y0, x1, y1.
func (f Frame) Corners() [4]int {
	return [4]int{f.X0, f.Y0, f.X1, f.Y1}
}

// Origin returns the top-left corner.
func (f Frame) Origin() image.Point {
	return image.Pt(f.X0, f.Y0)
}

// Rect returns the half-open image.Rectangle covering the same pixels.
func (f Frame) Rect() image.Rectangle {
	return image.Rect(f.X0, f.Y0, f.X1+1, f.Y1+1)
}

// Contains reports whether o lies entirely inside f.
func (f Frame) Contains(o Frame) bool {
	return o.X0 >= f.X0 && o.Y0 >= f.Y0 && o.X1 <= f.X1 && o.Y1 <= f.Y1
}

// Inset shrinks the frame by n pixels on every side. The result never
// collapses below a single pixel.
func (f Frame) Inset(n int) Frame {
	r := Frame{X0: f.X0 + n, Y0: f.Y0 + n, X1: f.X1 - n, Y1: f.Y1 - n}
	if r.X1 < r.X0 {
		mid := (f.X0 + f.X1) / 2
		r.X0, r.X1 = mid, mid
	}
	if r.Y1 < r.Y0 {
		mid := (f.Y0 + f.Y1) / 2
		r.Y0, r.Y1 = mid, mid
	}
	return r
}

func (f Frame) String() string {
	return fmt.Sprintf("[%d %d %d %d]", f.X0, f.Y0, f.X1, f.Y1)
}
