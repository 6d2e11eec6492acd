package cover

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultCacheSize is the number of directories whose result is kept.
const DefaultCacheSize = 32

// filePrefix is the name every cover file starts with.
const filePrefix = "cover."

// ErrNotFound is returned when no cover exists for a track.
var ErrNotFound = errors.New("cover not found")

// entry is a cached lookup; img is nil for directories without a cover.
type entry struct {
	img  image.Image
	path string
}

// Resolver maps track paths to cover images.
type Resolver struct {
	roots  []string
	cache  *lru.Cache[string, entry]
	logger *slog.Logger
}

// NewResolver creates a resolver searching roots in order.
func NewResolver(roots []string, cacheSize int, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, entry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover cache: %w", err)
	}

	var cleaned []string
	for _, r := range roots {
		if r != "" {
			cleaned = append(cleaned, filepath.Clean(r))
		}
	}

	return &Resolver{
		roots:  cleaned,
		cache:  cache,
		logger: logger.With("component", "cover"),
	}, nil
}

// Lookup returns the cover for the track at path.
func (r *Resolver) Lookup(path string) (image.Image, error) {
	if path == "" {
		return nil, ErrNotFound
	}

	for _, dir := range r.candidates(path) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		e := r.lookupDir(dir)
		if e.img == nil {
			continue
		}
		return e.img, nil
	}

	r.logger.Debug("no cover for track", "path", path)
	return nil, ErrNotFound
}

// Find is Lookup with a boolean result for callers that only show or hide
// the cover.
func (r *Resolver) Find(path string) (image.Image, bool) {
	img, err := r.Lookup(path)
	return img, err == nil
}

// Purge empties the cache.
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// candidates lists the directories that may hold the track's cover.
func (r *Resolver) candidates(path string) []string {
	dirs := []string{filepath.Dir(filepath.Clean(path))}
	rel := strings.TrimLeft(path, string(filepath.Separator))
	for _, root := range r.roots {
		dirs = append(dirs, filepath.Dir(filepath.Join(root, rel)))
	}
	return dirs
}

func (r *Resolver) lookupDir(dir string) entry {
	if e, ok := r.cache.Get(dir); ok {
		return e
	}

	e := entry{}
	file, err := FindFile(dir)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		r.logger.Warn("failed to list cover directory", "dir", dir, "error", err)
	default:
		img, size, err := decodeFile(file)
		if err != nil {
			r.logger.Warn("failed to decode cover", "file", file, "error", err)
		} else {
			b := img.Bounds()
			r.logger.Debug("loaded cover", "file", file, "size", humanize.Bytes(uint64(size)),
				"width", b.Dx(), "height", b.Dy())
			e = entry{img: img, path: file}
		}
	}

	r.cache.Add(dir, e)
	return e
}

// FindFile returns the first regular file in dir whose name starts with
// "cover.", in directory order.
func FindFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(strings.ToLower(e.Name()), filePrefix) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", ErrNotFound
}

func decodeFile(path string) (image.Image, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	if info.Mode()&fs.ModeType != 0 {
		return nil, 0, fmt.Errorf("%s is not a regular file", path)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, err
	}
	return img, info.Size(), nil
}
