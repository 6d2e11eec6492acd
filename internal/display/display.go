package display

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"github.com/jmylchreest/nowplaying/internal/config"
	"github.com/jmylchreest/nowplaying/internal/ui"
)

// Device is a transport that holds a resource until closed.
type Device interface {
	ui.Transport
	Close() error
}

// Open creates the device selected by cfg.Driver. The terminal driver
// returns a *Terminal whose frames are meant for the preview.
func Open(cfg config.DisplayConfig, logger *slog.Logger) (Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch config.Driver(cfg.Driver) {
	case config.DriverFramebuffer:
		return OpenFramebuffer(cfg.Device, cfg.Width, cfg.Height, logger)
	case config.DriverPNG:
		return NewPNGFile(cfg.Device, cfg.Width, cfg.Height), nil
	case config.DriverTerminal:
		return NewTerminal(cfg.Width, cfg.Height), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", cfg.Driver)
	}
}

// blit copies src onto dst with its top-left corner at (x, y) and returns
// the affected rectangle of dst.
func blit(dst *image.RGBA, src image.Image, x, y int) image.Rectangle {
	sb := src.Bounds()
	r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy()).Intersect(dst.Bounds())
	if r.Empty() {
		return r
	}
	draw.Draw(dst, r, src, sb.Min.Add(r.Min.Sub(image.Pt(x, y))), draw.Src)
	return r
}
