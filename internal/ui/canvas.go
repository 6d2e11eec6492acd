package ui

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Canvas is the raster surface widgets paint on. Rectangles are filled with
// exact pixel coverage; polygons and text go through gg and are clipped to
// the frame being painted.
type Canvas struct {
	img        *image.RGBA
	gc         *gg.Context
	background color.Color
}

// NewCanvas allocates a width x height surface cleared to background.
func NewCanvas(width, height int, background color.Color) *Canvas {
	if background == nil {
		background = color.Black
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	return &Canvas{
		img:        img,
		gc:         gg.NewContextForRGBA(img),
		background: background,
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Bounds returns the surface bounds.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Background returns the color used to erase frames.
func (c *Canvas) Background() color.Color {
	return c.background
}

// Fill paints every pixel of f with col.
func (c *Canvas) Fill(f Frame, col color.Color) {
	draw.Draw(c.img, f.Rect(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Erase fills f with the background color.
func (c *Canvas) Erase(f Frame) {
	c.Fill(f, c.background)
}

// Outline paints the one pixel border of f.
func (c *Canvas) Outline(f Frame, col color.Color) {
	c.Fill(Frame{X0: f.X0, Y0: f.Y0, X1: f.X1, Y1: f.Y0}, col)
	c.Fill(Frame{X0: f.X0, Y0: f.Y1, X1: f.X1, Y1: f.Y1}, col)
	c.Fill(Frame{X0: f.X0, Y0: f.Y0, X1: f.X0, Y1: f.Y1}, col)
	c.Fill(Frame{X0: f.X1, Y0: f.Y0, X1: f.X1, Y1: f.Y1}, col)
}

// FillPolygon fills the polygon through pts, clipped to clip. Points are
// pixel coordinates and are mapped to pixel centers.
func (c *Canvas) FillPolygon(clip Frame, col color.Color, pts ...image.Point) {
	if len(pts) < 3 {
		return
	}

	c.gc.Push()
	defer c.gc.Pop()

	c.clipTo(clip)
	c.gc.MoveTo(float64(pts[0].X)+0.5, float64(pts[0].Y)+0.5)
	for _, p := range pts[1:] {
		c.gc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
	}
	c.gc.ClosePath()
	c.gc.SetColor(col)
	c.gc.Fill()
}

// MeasureText returns the advance width of s in face.
func (c *Canvas) MeasureText(face font.Face, s string) int {
	c.gc.SetFontFace(face)
	w, _ := c.gc.MeasureString(s)
	return int(math.Ceil(w))
}

// DrawText draws s with its top-left corner at (x, y), clipped to clip.
func (c *Canvas) DrawText(clip Frame, face font.Face, col color.Color, s string, x, y int) {
	if s == "" {
		return
	}

	c.gc.Push()
	defer c.gc.Pop()

	c.clipTo(clip)
	c.gc.SetFontFace(face)
	c.gc.SetColor(col)
	c.gc.DrawString(s, float64(x), float64(y+face.Metrics().Ascent.Ceil()))
}

// DrawImage copies img with its top-left corner at (x, y), clipped to clip.
func (c *Canvas) DrawImage(clip Frame, img image.Image, x, y int) {
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy()).Intersect(clip.Rect())
	if dst.Empty() {
		return
	}
	src := b.Min.Add(dst.Min.Sub(image.Pt(x, y)))
	draw.Draw(c.img, dst, img, src, draw.Over)
}

func (c *Canvas) clipTo(f Frame) {
	c.gc.ResetClip()
	c.gc.DrawRectangle(float64(f.X0), float64(f.Y0), float64(f.Width()), float64(f.Height()))
	c.gc.Clip()
}

// textHeight is the line height of face in pixels.
func textHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// round rounds half to even, matching how layout offsets are computed
// everywhere in this package.
func round(v float64) int {
	return int(math.RoundToEven(v))
}
