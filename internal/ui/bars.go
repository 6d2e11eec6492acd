package ui

import (
	"image/color"
	"math"

	"golang.org/x/image/font"
)

func clampPercent(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}

// ProgressBar is an outlined bar filled proportionally to a percentage, with
// a centered label.
type ProgressBar struct {
	Base
	progress   float64
	label      string
	face       font.Face
	color      color.Color
	labelColor color.Color
}

// NewProgressBar creates an empty progress bar.
func NewProgressBar(f Frame, face font.Face, col, labelColor color.Color) *ProgressBar {
	return &ProgressBar{
		Base:       newBase(f),
		face:       face,
		color:      col,
		labelColor: labelColor,
	}
}

// Progress returns the current value in [0,100].
func (p *ProgressBar) Progress() float64 {
	return p.progress
}

// SetProgress sets the fill level. Values are clamped to [0,100].
func (p *ProgressBar) SetProgress(v float64) {
	v = clampPercent(v)
	if v == p.progress {
		return
	}
	p.progress = v
	p.needsRedraw = true
}

// Label returns the label text.
func (p *ProgressBar) Label() string {
	return p.label
}

// SetLabel sets the centered label.
func (p *ProgressBar) SetLabel(s string) {
	if s == p.label {
		return
	}
	p.label = s
	p.needsRedraw = true
}

func (p *ProgressBar) paint(c *Canvas) {
	f := p.frame
	c.Outline(f, p.color)

	if p.progress > 0 && f.Width() > 2 && f.Height() > 2 {
		offset := f.X0 + 1 + round(p.progress/100*float64(f.X1-1-f.X0-1))
		c.Fill(NewFrame(f.X0+1, f.Y0+1, offset, f.Y1-1), p.color)
	}

	if p.label != "" {
		x := f.X0 + round(float64(f.Width()-c.MeasureText(p.face, p.label))/2)
		y := f.Y0 + round(float64(f.Height()-textHeight(p.face))/2)
		c.DrawText(f, p.face, p.labelColor, p.label, x, y)
	}
}

const (
	volumeInset         = 3
	volumeSegmentHeight = 3
	volumeSegmentGap    = 1
)

// VolumeBar is an outlined vertical meter made of segments stacked from the
// bottom. Each segment takes its color from palette according to its height.
type VolumeBar struct {
	Base
	volume  float64
	color   color.Color
	palette []color.Color
}

// NewVolumeBar creates an empty volume bar. palette is ordered bottom to top
// and must not be empty.
func NewVolumeBar(f Frame, col color.Color, palette []color.Color) *VolumeBar {
	if len(palette) == 0 {
		palette = []color.Color{col}
	}
	return &VolumeBar{
		Base:    newBase(f),
		color:   col,
		palette: palette,
	}
}

// Volume returns the current value in [0,100].
func (v *VolumeBar) Volume() float64 {
	return v.volume
}

// SetVolume sets the meter level. Values are clamped to [0,100].
func (v *VolumeBar) SetVolume(vol float64) {
	vol = clampPercent(vol)
	if vol == v.volume {
		return
	}
	v.volume = vol
	v.needsRedraw = true
}

func (v *VolumeBar) paint(c *Canvas) {
	f := v.frame
	c.Outline(f, v.color)

	innerHeight := f.Height() - 2*volumeInset
	if v.volume == 0 || innerHeight < volumeSegmentHeight || f.Width() <= 2*volumeInset {
		return
	}

	top := f.Y0 + volumeInset
	bottom := f.Y1 - volumeInset
	minY := top + round((1-v.volume/100)*float64(innerHeight-1))

	y := bottom
	for {
		segTop := y - volumeSegmentHeight + 1
		if segTop < minY {
			break
		}

		ratio := float64(bottom-segTop+1) / float64(innerHeight)
		c.Fill(NewFrame(f.X0+volumeInset, segTop, f.X1-volumeInset, y), v.paletteColor(ratio))
		y -= volumeSegmentHeight + volumeSegmentGap
	}

	// Segments rarely fit exactly, so at full volume the remainder is filled.
	if v.volume == 100 {
		c.Fill(NewFrame(f.X0+volumeInset, top, f.X1-volumeInset, max(top, y)), v.palette[len(v.palette)-1])
	}
}

func (v *VolumeBar) paletteColor(ratio float64) color.Color {
	i := int(math.Ceil(ratio*float64(len(v.palette)))) - 1
	i = min(max(i, 0), len(v.palette)-1)
	return v.palette[i]
}
