package ui

import (
	"image/color"

	"golang.org/x/image/font"
)

// Alignment is the horizontal placement of text within its frame.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Text is a single line of text.
type Text struct {
	Base
	text  string
	face  font.Face
	color color.Color
	align Alignment
}

// NewText creates an empty text widget.
func NewText(f Frame, face font.Face, col color.Color, align Alignment) *Text {
	return &Text{
		Base:  newBase(f),
		face:  face,
		color: col,
		align: align,
	}
}

// Text returns the current string.
func (t *Text) Text() string {
	return t.text
}

// SetText replaces the string. Setting the same string again is a no-op.
func (t *Text) SetText(s string) {
	if s == t.text {
		return
	}
	t.text = s
	t.needsRedraw = true
}

func (t *Text) paint(c *Canvas) {
	if t.text == "" {
		return
	}

	x := t.frame.X0
	switch t.align {
	case AlignRight:
		x = t.frame.X1 + 1 - c.MeasureText(t.face, t.text)
	case AlignCenter:
		x = t.frame.X0 + round(float64(t.frame.Width()-c.MeasureText(t.face, t.text))/2)
	}

	c.DrawText(t.frame, t.face, t.color, t.text, x, t.frame.Y0)
}

// Rule is a solid filled bar.
type Rule struct {
	Base
	color color.Color
}

// NewRule creates a rule filling f.
func NewRule(f Frame, col color.Color) *Rule {
	return &Rule{Base: newBase(f), color: col}
}

// NewHRule creates a one pixel high rule at row y spanning width columns.
func NewHRule(y, width int, col color.Color) *Rule {
	return NewRule(NewFrame(0, y, width-1, y), col)
}

func (r *Rule) paint(c *Canvas) {
	c.Fill(r.frame, r.color)
}
