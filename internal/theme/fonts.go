package theme

import (
	"log/slog"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Fonts hands out font faces of a single TrueType font by point size.
// Faces are cached; a missing or unreadable font file falls back to the
// built-in 7x13 bitmap font.
type Fonts struct {
	mu     sync.Mutex
	path   string
	faces  map[float64]font.Face
	failed bool
	logger *slog.Logger
}

// NewFonts creates a face cache for the font at path.
func NewFonts(path string, logger *slog.Logger) *Fonts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fonts{
		path:   path,
		faces:  make(map[float64]font.Face),
		logger: logger,
	}
}

// Face returns a face of the given point size.
func (f *Fonts) Face(points float64) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.faces[points]; ok {
		return face
	}
	if f.path == "" || f.failed {
		return basicfont.Face7x13
	}

	face, err := gg.LoadFontFace(f.path, points)
	if err != nil {
		// Only warn once; every later size falls back silently.
		f.failed = true
		f.logger.Warn("failed to load font, using built-in font", "path", f.path, "error", err)
		return basicfont.Face7x13
	}
	f.faces[points] = face
	return face
}
