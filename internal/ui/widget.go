package ui

// Widget is a node of a window's widget tree. The set of widget kinds is
// closed: every implementation lives in this package and embeds Base.
type Widget interface {
	base() *Base
	paint(c *Canvas)
}

// Base holds the state shared by every widget.
type Base struct {
	frame        Frame
	hidden       bool
	needsRedraw  bool
	wasDrawnOnce bool
	children     []Widget
}

func newBase(f Frame) Base {
	return Base{frame: f, needsRedraw: true}
}

func (b *Base) base() *Base { return b }

// Frame returns the area the widget paints into.
func (b *Base) Frame() Frame {
	return b.frame
}

// Hidden reports whether the widget is hidden.
func (b *Base) Hidden() bool {
	return b.hidden
}

// SetHidden shows or hides the widget.
func (b *Base) SetHidden(hidden bool) {
	if b.hidden == hidden {
		return
	}
	b.hidden = hidden
	b.needsRedraw = true
}

// NeedsRedraw reports whether the widget is repainted on the next draw pass.
func (b *Base) NeedsRedraw() bool {
	return b.needsRedraw
}

// SetNeedsRedraw schedules the widget for repainting.
func (b *Base) SetNeedsRedraw() {
	b.needsRedraw = true
}

// WasDrawnOnce reports whether the widget has been painted at least once.
func (b *Base) WasDrawnOnce() bool {
	return b.wasDrawnOnce
}

// Children returns the widget's children in paint order.
func (b *Base) Children() []Widget {
	return b.children
}

func (b *Base) addChild(w Widget) {
	b.children = append(b.children, w)
}

// drawWidget repaints w and all of its visible children.
func drawWidget(c *Canvas, w Widget) {
	b := w.base()
	b.needsRedraw = false
	if b.wasDrawnOnce {
		c.Erase(b.frame)
	}
	b.wasDrawnOnce = true

	w.paint(c)

	for _, child := range b.children {
		cb := child.base()
		if cb.hidden {
			cb.needsRedraw = false
			cb.wasDrawnOnce = false
			continue
		}
		drawWidget(c, child)
	}
}
