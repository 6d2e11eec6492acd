package ui

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// PlayPauseIcon draws a play triangle or two pause bars inside the largest
// square centered in its frame.
type PlayPauseIcon struct {
	Base
	play  bool
	color color.Color
}

// NewPlayPauseIcon creates the icon showing play when play is true.
func NewPlayPauseIcon(f Frame, col color.Color, play bool) *PlayPauseIcon {
	return &PlayPauseIcon{Base: newBase(f), color: col, play: play}
}

// Play reports whether the play glyph is shown.
func (p *PlayPauseIcon) Play() bool {
	return p.play
}

// SetPlay switches between the play and pause glyphs.
func (p *PlayPauseIcon) SetPlay(play bool) {
	if play == p.play {
		return
	}
	p.play = play
	p.needsRedraw = true
}

func (p *PlayPauseIcon) paint(c *Canvas) {
	f := p.frame
	size := min(f.Width(), f.Height())
	dx := round(float64(f.Width()-size) / 2)
	dy := round(float64(f.Height()-size) / 2)
	x0, x1 := f.X0+dx, f.X1-dx
	y0, y1 := f.Y0+dy, f.Y1-dy

	if p.play {
		c.FillPolygon(f, p.color,
			image.Pt(x0, y0),
			image.Pt(x1, round(float64(f.Y0+f.Y1)/2)),
			image.Pt(x0, y1),
		)
		return
	}

	bar := max(1, round(float64(x1-x0+1)/5))
	center := round(float64(x0+x1) / 2)
	c.Fill(NewFrame(center-2*bar+1, y0, center-bar, y1).clip(f), p.color)
	c.Fill(NewFrame(center+bar, y0, center+2*bar-1, y1).clip(f), p.color)
}

// PrevNextIcon draws a skip glyph (two triangles and a bar) inside the
// largest 2:1 box centered in its frame. The "next" glyph is the mirror image
// of "previous".
type PrevNextIcon struct {
	Base
	previous bool
	color    color.Color
}

// NewPrevNextIcon creates a previous (previous=true) or next icon.
func NewPrevNextIcon(f Frame, col color.Color, previous bool) *PrevNextIcon {
	return &PrevNextIcon{Base: newBase(f), color: col, previous: previous}
}

// Previous reports whether the icon points backwards.
func (p *PrevNextIcon) Previous() bool {
	return p.previous
}

func (p *PrevNextIcon) paint(c *Canvas) {
	f := p.frame
	width := min(f.Width(), 2*f.Height())
	height := round(float64(width) / 2)
	dx := round(float64(f.Width()-width) / 2)
	dy := round(float64(f.Height()-height) / 2)
	x0, x1 := f.X0+dx, f.X1-dx
	y0, y1 := f.Y0+dy, f.Y1-dy
	midY := round(float64(y0+y1) / 2)

	bar := round(float64(width) / 10)
	triangle := round(float64(width-bar) / 2)
	if bar+2*triangle < width {
		bar++
	}

	tx := func(x int) int { return x }
	if !p.previous {
		tx = func(x int) int { return x0 + x1 - x }
	}

	c.FillPolygon(f, p.color,
		image.Pt(tx(x1), y0),
		image.Pt(tx(x1-triangle+1), midY),
		image.Pt(tx(x1), y1),
	)
	c.FillPolygon(f, p.color,
		image.Pt(tx(x1-triangle), y0),
		image.Pt(tx(x0+bar), midY),
		image.Pt(tx(x1-triangle), y1),
	)
	if bar > 0 {
		c.Fill(NewFrame(tx(x0), y0, tx(x0+bar-1), y1).clip(f), p.color)
	}
}

// Button is a label above an icon, both children of one frame.
type Button struct {
	Base
	Label *Text
	Icon  Widget
}

// ButtonKind selects the icon of a Button.
type ButtonKind int

const (
	ButtonPlayPause ButtonKind = iota
	ButtonPrevious
	ButtonNext
)

// Button layout offsets, relative to the button's top edge.
const (
	buttonLabelHeight = 17
	buttonIconOffset  = 22
)

// NewButton creates a toolbar button with a centered label and the icon
// selected by kind.
func NewButton(f Frame, kind ButtonKind, label string, face font.Face, col color.Color) *Button {
	b := &Button{Base: newBase(f)}

	b.Label = NewText(NewFrame(f.X0, f.Y0, f.X1, f.Y0+buttonLabelHeight-1), face, col, AlignCenter)
	b.Label.SetText(label)

	iconFrame := NewFrame(f.X0, min(f.Y0+buttonIconOffset, f.Y1), f.X1, f.Y1)
	switch kind {
	case ButtonPrevious:
		b.Icon = NewPrevNextIcon(iconFrame, col, true)
	case ButtonNext:
		b.Icon = NewPrevNextIcon(iconFrame, col, false)
	default:
		b.Icon = NewPlayPauseIcon(iconFrame, col, false)
	}

	b.addChild(b.Label)
	b.addChild(b.Icon)
	return b
}

// PlayPause returns the play/pause icon, or nil for skip buttons.
func (b *Button) PlayPause() *PlayPauseIcon {
	icon, _ := b.Icon.(*PlayPauseIcon)
	return icon
}

func (b *Button) paint(*Canvas) {}

// clip intersects f with bounds. If they do not overlap the result is the
// nearest single pixel inside bounds.
func (f Frame) clip(bounds Frame) Frame {
	r := Frame{
		X0: min(max(f.X0, bounds.X0), bounds.X1),
		Y0: min(max(f.Y0, bounds.Y0), bounds.Y1),
		X1: min(max(f.X1, bounds.X0), bounds.X1),
		Y1: min(max(f.Y1, bounds.Y0), bounds.Y1),
	}
	return r
}
