package display

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Framebuffer pushes pixels to a 16 bpp (RGB565) Linux framebuffer such as
// the one exposed by fbtft for ILI9341 panels.
type Framebuffer struct {
	mu     sync.Mutex
	file   *os.File
	device string
	bounds image.Rectangle
	stride int
	logger *slog.Logger
}

// OpenFramebuffer opens device for writing. The line stride is read from
// sysfs when available.
func OpenFramebuffer(device string, width, height int, logger *slog.Logger) (*Framebuffer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer: %w", err)
	}

	sysfs := filepath.Join("/sys/class/graphics", filepath.Base(device))
	if bpp, err := readSysfsInt(filepath.Join(sysfs, "bits_per_pixel")); err == nil && bpp != 16 {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer %s has %d bits per pixel, want 16", device, bpp)
	}

	stride := width * 2
	if v, err := readSysfsInt(filepath.Join(sysfs, "stride")); err == nil && v >= stride {
		stride = v
	}

	logger.Debug("opened framebuffer", "device", device, "width", width, "height", height, "stride", stride)
	return &Framebuffer{
		file:   f,
		device: device,
		bounds: image.Rect(0, 0, width, height),
		stride: stride,
		logger: logger,
	}, nil
}

// Bounds returns the panel size.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return fb.bounds
}

// Push writes img at (x, y), one row at a time.
func (fb *Framebuffer) Push(img image.Image, x, y int) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.file == nil {
		return fmt.Errorf("framebuffer %s is closed", fb.device)
	}

	sb := img.Bounds()
	r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy()).Intersect(fb.bounds)
	if r.Empty() {
		return nil
	}

	row := make([]byte, r.Dx()*2)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			v := RGB565(img.At(sb.Min.X+px-x, sb.Min.Y+py-y))
			i := (px - r.Min.X) * 2
			row[i] = byte(v)
			row[i+1] = byte(v >> 8)
		}
		off := int64(py*fb.stride + r.Min.X*2)
		if _, err := fb.file.WriteAt(row, off); err != nil {
			return fmt.Errorf("failed to write framebuffer: %w", err)
		}
	}
	return nil
}

// Close releases the device.
func (fb *Framebuffer) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.file == nil {
		return nil
	}
	err := fb.file.Close()
	fb.file = nil
	return err
}

// RGB565 packs a colour into 16 bits.
func RGB565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
}

func readSysfsInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
