package ui

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

var (
	green = color.RGBA{G: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

type push struct {
	bounds image.Rectangle
	x, y   int
}

type recordingTransport struct {
	width, height int
	pushes        []push
	err           error
}

func (r *recordingTransport) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

func (r *recordingTransport) Push(img image.Image, x, y int) error {
	if r.err != nil {
		return r.err
	}
	r.pushes = append(r.pushes, push{bounds: img.Bounds(), x: x, y: y})
	return nil
}

func newTestWindow(t *testing.T) (*Window, *recordingTransport) {
	t.Helper()
	tr := &recordingTransport{width: 240, height: 320}
	return NewWindow("test", tr, color.Black, nil), tr
}

func TestFrame_Geometry(t *testing.T) {
	f := NewFrame(10, 20, 19, 24)

	assert.Equal(t, 10, f.Width())
	assert.Equal(t, 5, f.Height())
	assert.Equal(t, [4]int{10, 20, 19, 24}, f.Corners())
	assert.Equal(t, image.Rect(10, 20, 20, 25), f.Rect())
	assert.Equal(t, f, FrameOf(f.Rect()))
	assert.Equal(t, f, NewFrame(19, 24, 10, 20))
	assert.True(t, f.Contains(f.Inset(2)))
	assert.Equal(t, "[10 20 19 24]", f.String())
}

func TestWindow_DrawMarksDirtyAndClearsFlag(t *testing.T) {
	w, _ := newTestWindow(t)
	label := NewText(NewFrame(0, 0, 119, 16), basicfont.Face7x13, green, AlignLeft)
	label.SetText("hello")
	rule := NewHRule(17, 240, green)
	w.Add(label, rule)

	w.Draw()

	assert.False(t, label.NeedsRedraw())
	assert.False(t, rule.NeedsRedraw())
	assert.ElementsMatch(t, []Frame{label.Frame(), rule.Frame()}, w.DirtyFrames())

	require.NoError(t, w.Display())
	assert.Empty(t, w.DirtyFrames())
}

func TestWindow_SkipsCleanWidgetsButVisitsChildren(t *testing.T) {
	w, _ := newTestWindow(t)
	button := NewButton(NewFrame(80, 280, 159, 319), ButtonPlayPause, "Pause", basicfont.Face7x13, green)
	rule := NewHRule(279, 240, green)
	w.Add(rule, button)

	w.Draw()
	require.NoError(t, w.Display())

	// Paint over the clean rule; a draw pass must leave it alone.
	w.Canvas().Fill(rule.Frame(), red)

	button.Label.SetText("Play")
	w.Draw()

	assert.Equal(t, []Frame{button.Label.Frame()}, w.DirtyFrames())
	assert.Equal(t, red, w.Canvas().Image().RGBAAt(5, 279))
	assert.False(t, button.NeedsRedraw())
}

func TestWindow_RedrawRepaintsChildren(t *testing.T) {
	w, _ := newTestWindow(t)
	button := NewButton(NewFrame(0, 280, 79, 319), ButtonPrevious, "Previous", basicfont.Face7x13, green)
	w.Add(button)

	w.Draw()
	button.SetNeedsRedraw()
	w.Draw()

	assert.Equal(t, []Frame{button.Frame()}, w.DirtyFrames())
	assert.False(t, button.Label.NeedsRedraw())
	assert.False(t, button.Icon.base().NeedsRedraw())
}

func TestWindow_DisplayStrategy(t *testing.T) {
	w, tr := newTestWindow(t)
	texts := make([]*Text, 6)
	for i := range texts {
		texts[i] = NewText(NewFrame(0, i*20, 99, i*20+15), basicfont.Face7x13, green, AlignLeft)
		w.Add(texts[i])
	}

	// First display is always a full push.
	w.Draw()
	require.NoError(t, w.Display())
	require.Len(t, tr.pushes, 1)
	assert.Equal(t, push{bounds: image.Rect(0, 0, 240, 320)}, tr.pushes[0])
	assert.True(t, w.WasDisplayedOnce())

	// Up to the limit, one cropped push per frame at its own origin.
	tr.pushes = nil
	texts[1].SetText("one")
	texts[3].SetText("three")
	w.Draw()
	require.NoError(t, w.Display())
	require.Len(t, tr.pushes, 2)
	assert.Equal(t, push{bounds: image.Rect(0, 0, 100, 16), x: 0, y: 20}, tr.pushes[0])
	assert.Equal(t, push{bounds: image.Rect(0, 0, 100, 16), x: 0, y: 60}, tr.pushes[1])

	// Exactly four frames still go out one by one.
	tr.pushes = nil
	for _, tx := range texts[:4] {
		tx.SetText("four")
	}
	w.Draw()
	require.NoError(t, w.Display())
	assert.Len(t, tr.pushes, 4)

	// Five frames collapse into one full push.
	tr.pushes = nil
	for _, tx := range texts[:5] {
		tx.SetText("five")
	}
	w.Draw()
	require.NoError(t, w.Display())
	require.Len(t, tr.pushes, 1)
	assert.Equal(t, image.Rect(0, 0, 240, 320), tr.pushes[0].bounds)
}

func TestWindow_ResetDisplayedForcesFullPush(t *testing.T) {
	w, tr := newTestWindow(t)
	label := NewText(NewFrame(0, 0, 99, 15), basicfont.Face7x13, green, AlignLeft)
	w.Add(label)
	w.Draw()
	require.NoError(t, w.Display())

	w.ResetDisplayed()
	label.SetText("x")
	tr.pushes = nil
	w.Draw()
	require.NoError(t, w.Display())

	require.Len(t, tr.pushes, 1)
	assert.Equal(t, image.Rect(0, 0, 240, 320), tr.pushes[0].bounds)
}

func TestWindow_DisplayErrorFallsBackToFullPush(t *testing.T) {
	w, tr := newTestWindow(t)
	label := NewText(NewFrame(0, 0, 99, 15), basicfont.Face7x13, green, AlignLeft)
	w.Add(label)
	w.Draw()
	require.NoError(t, w.Display())

	label.SetText("x")
	w.Draw()
	tr.err = errors.New("spi timeout")
	err := w.Display()

	require.Error(t, err)
	assert.ErrorIs(t, err, tr.err)
	assert.Empty(t, w.DirtyFrames())
	assert.False(t, w.WasDisplayedOnce())

	tr.err = nil
	w.Draw()
	require.NoError(t, w.Display())
	require.Len(t, tr.pushes, 2)
	assert.Equal(t, image.Rect(0, 0, 240, 320), tr.pushes[1].bounds)
}

func TestWindow_HiddenWidgetIsErased(t *testing.T) {
	w, _ := newTestWindow(t)
	rule := NewRule(NewFrame(10, 10, 19, 19), green)
	w.Add(rule)
	w.Draw()
	require.NoError(t, w.Display())
	assert.Equal(t, green, w.Canvas().Image().RGBAAt(15, 15))

	rule.SetHidden(true)
	w.Draw()

	assert.Equal(t, []Frame{rule.Frame()}, w.DirtyFrames())
	assert.Equal(t, color.RGBA{A: 0xff}, w.Canvas().Image().RGBAAt(15, 15))

	// Hidden and already erased: nothing more to do.
	require.NoError(t, w.Display())
	w.Draw()
	assert.Empty(t, w.DirtyFrames())

	rule.SetHidden(false)
	w.Draw()
	assert.Equal(t, green, w.Canvas().Image().RGBAAt(15, 15))
}
