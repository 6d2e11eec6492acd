package display

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// PNGFile keeps the composed screen in memory and rewrites a PNG file after
// every push. An empty path keeps the image in memory only.
type PNGFile struct {
	mu   sync.Mutex
	path string
	img  *image.RGBA
}

// NewPNGFile creates a PNG sink of the given size.
func NewPNGFile(path string, width, height int) *PNGFile {
	return &PNGFile{
		path: path,
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Bounds returns the image size.
func (p *PNGFile) Bounds() image.Rectangle {
	return p.img.Bounds()
}

// Push composes img at (x, y) and writes the file.
func (p *PNGFile) Push(img image.Image, x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	blit(p.img, img, x, y)
	if p.path == "" {
		return nil
	}
	return p.writeLocked()
}

// Image returns a copy of the composed screen.
func (p *PNGFile) Image() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := image.NewRGBA(p.img.Bounds())
	copy(out.Pix, p.img.Pix)
	return out
}

// Encode writes the composed screen as PNG to w.
func (p *PNGFile) Encode(w io.Writer) error {
	return png.Encode(w, p.Image())
}

// Close is a no-op; the file is complete after every push.
func (p *PNGFile) Close() error {
	return nil
}

func (p *PNGFile) writeLocked() error {
	return SavePNG(p.path, p.img)
}

// SavePNG atomically writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return os.Rename(tmpPath, path)
}
