package display

import (
	"image"
	"sync"
)

// Terminal is an in-memory screen for the terminal preview. Every push
// signals Updates; a reader that falls behind sees one pending signal.
type Terminal struct {
	mu      sync.Mutex
	img     *image.RGBA
	updates chan struct{}
}

// NewTerminal creates a preview surface of the given size.
func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		updates: make(chan struct{}, 1),
	}
}

// Bounds returns the surface size.
func (t *Terminal) Bounds() image.Rectangle {
	return t.img.Bounds()
}

// Push composes img at (x, y).
func (t *Terminal) Push(img image.Image, x, y int) error {
	t.mu.Lock()
	blit(t.img, img, x, y)
	t.mu.Unlock()

	select {
	case t.updates <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns a copy of the surface.
func (t *Terminal) Snapshot() image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := image.NewRGBA(t.img.Bounds())
	copy(out.Pix, t.img.Pix)
	return out
}

// Updates is signalled after pushes.
func (t *Terminal) Updates() <-chan struct{} {
	return t.updates
}

// Close is a no-op.
func (t *Terminal) Close() error {
	return nil
}
