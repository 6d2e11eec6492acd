package ui

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Image shows an optional bitmap, shrunk to fit its frame and centered.
type Image struct {
	Base
	src   image.Image
	thumb image.Image
}

// NewImage creates an empty image widget.
func NewImage(f Frame) *Image {
	return &Image{Base: newBase(f)}
}

// Image returns the source bitmap, or nil.
func (i *Image) Image() image.Image {
	return i.src
}

// SetImage replaces the bitmap. A nil image clears the widget.
func (i *Image) SetImage(img image.Image) {
	if img == nil && i.src == nil {
		return
	}
	i.src = img
	i.thumb = nil
	if img != nil {
		i.thumb = Thumbnail(img, i.frame.Width(), i.frame.Height())
	}
	i.needsRedraw = true
}

func (i *Image) paint(c *Canvas) {
	if i.thumb == nil {
		return
	}
	b := i.thumb.Bounds()
	x := i.frame.X0 + round(float64(i.frame.Width()-b.Dx())/2)
	y := i.frame.Y0 + round(float64(i.frame.Height()-b.Dy())/2)
	c.DrawImage(i.frame, i.thumb, x, y)
}

// Thumbnail scales img down to fit within maxW x maxH, preserving its aspect
// ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	if w*maxH > h*maxW {
		h = max(1, h*maxW/w)
		w = maxW
	} else {
		w = max(1, w*maxH/h)
		h = maxH
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
