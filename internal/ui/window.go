package ui

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"slices"
	"time"
)

// DefaultPartialLimit is the largest number of dirty frames pushed one by
// one. Past it a single full-surface push is cheaper.
const DefaultPartialLimit = 4

// Transport moves pixels to the physical display.
type Transport interface {
	// Bounds returns the display size. It never changes.
	Bounds() image.Rectangle
	// Push shows img with its top-left corner at (x, y). img's bounds start
	// at the origin.
	Push(img image.Image, x, y int) error
}

// Window owns a raster surface the size of the display, the widgets painted
// on it and the frames repainted since the last display pass.
type Window struct {
	name      string
	canvas    *Canvas
	transport Transport
	logger    *slog.Logger

	widgets          []Widget
	dirty            map[Frame]struct{}
	wasDisplayedOnce bool
	partialLimit     int
}

// NewWindow creates a window sized to the transport.
func NewWindow(name string, transport Transport, background color.Color, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}

	b := transport.Bounds()
	return &Window{
		name:         name,
		canvas:       NewCanvas(b.Dx(), b.Dy(), background),
		transport:    transport,
		logger:       logger.With("window", name),
		dirty:        make(map[Frame]struct{}),
		partialLimit: DefaultPartialLimit,
	}
}

// Name returns the window name used in logs.
func (w *Window) Name() string {
	return w.name
}

// Canvas returns the window surface.
func (w *Window) Canvas() *Canvas {
	return w.canvas
}

// Add appends root widgets.
func (w *Window) Add(widgets ...Widget) {
	w.widgets = append(w.widgets, widgets...)
}

// Widgets returns the root widgets.
func (w *Window) Widgets() []Widget {
	return w.widgets
}

// SetPartialLimit overrides DefaultPartialLimit. Values below zero are ignored.
func (w *Window) SetPartialLimit(n int) {
	if n >= 0 {
		w.partialLimit = n
	}
}

// WasDisplayedOnce reports whether the surface has been fully pushed since
// the window last appeared.
func (w *Window) WasDisplayedOnce() bool {
	return w.wasDisplayedOnce
}

// ResetDisplayed forces the next display pass to push the whole surface.
func (w *Window) ResetDisplayed() {
	w.wasDisplayedOnce = false
}

// DirtyFrames returns the frames pending display, top to bottom.
func (w *Window) DirtyFrames() []Frame {
	frames := make([]Frame, 0, len(w.dirty))
	for f := range w.dirty {
		frames = append(frames, f)
	}
	slices.SortFunc(frames, func(a, b Frame) int {
		return cmp.Or(cmp.Compare(a.Y0, b.Y0), cmp.Compare(a.X0, b.X0),
			cmp.Compare(a.Y1, b.Y1), cmp.Compare(a.X1, b.X1))
	})
	return frames
}

// Draw repaints every widget that needs it. A widget that does not need
// redrawing is left untouched but its children are still visited.
func (w *Window) Draw() {
	start := time.Now()
	w.drawTree(w.widgets)
	w.logger.Debug("window drawn", "dirty", len(w.dirty), "duration", time.Since(start))
}

func (w *Window) drawTree(widgets []Widget) {
	for _, widget := range widgets {
		b := widget.base()
		if b.hidden {
			// Clear what the widget left behind when it was hidden.
			if b.needsRedraw && b.wasDrawnOnce {
				w.canvas.Erase(b.frame)
				w.dirty[b.frame] = struct{}{}
				b.wasDrawnOnce = false
			}
			b.needsRedraw = false
			continue
		}

		if b.needsRedraw {
			drawWidget(w.canvas, widget)
			w.dirty[b.frame] = struct{}{}
			continue
		}

		w.drawTree(b.children)
	}
}

// Display pushes the pending changes to the transport: the whole surface if
// the window was never displayed or too many frames are dirty, otherwise
// each dirty frame on its own. On failure the window falls back to a full
// push on the next pass.
func (w *Window) Display() error {
	defer clear(w.dirty)

	if !w.wasDisplayedOnce || len(w.dirty) > w.partialLimit {
		start := time.Now()
		if err := w.transport.Push(w.canvas.Image(), 0, 0); err != nil {
			w.wasDisplayedOnce = false
			return fmt.Errorf("failed to push window %s: %w", w.name, err)
		}
		w.logger.Debug("displayed full surface", "duration", time.Since(start))
		w.wasDisplayedOnce = true
		return nil
	}

	for _, f := range w.DirtyFrames() {
		start := time.Now()
		if err := w.transport.Push(crop(w.canvas.Image(), f.Rect()), f.X0, f.Y0); err != nil {
			w.wasDisplayedOnce = false
			return fmt.Errorf("failed to push frame %s of window %s: %w", f, w.name, err)
		}
		w.logger.Debug("displayed frame", "frame", f, "duration", time.Since(start))
	}
	return nil
}

// crop copies r out of img into a new image whose bounds start at the origin.
func crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
