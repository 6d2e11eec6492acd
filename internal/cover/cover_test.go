package cover

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestResolver_RelativeToRoot(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "Artist", "Album", "cover.png"), 4, 3)
	touch(t, filepath.Join(root, "Artist", "Album", "01.flac"))

	r, err := NewResolver([]string{root}, 0, nil)
	require.NoError(t, err)

	img, err := r.Lookup("Artist/Album/01.flac")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestResolver_AbsolutePathFirst(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "cover.png"), 2, 2)

	r, err := NewResolver(nil, 0, nil)
	require.NoError(t, err)

	_, ok := r.Find(filepath.Join(dir, "track.mp3"))
	assert.True(t, ok)
}

func TestResolver_FallbackRoot(t *testing.T) {
	primary, fallback := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(fallback, "usb", "Album", "cover.png"), 2, 2)

	r, err := NewResolver([]string{primary, fallback}, 0, nil)
	require.NoError(t, err)

	_, ok := r.Find("usb/Album/song.ogg")
	assert.True(t, ok)
}

func TestResolver_Missing(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Album", "song.ogg"))

	r, err := NewResolver([]string{root}, 0, nil)
	require.NoError(t, err)

	_, err = r.Lookup("Album/song.ogg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Lookup("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_UndecodableCover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Album", "cover.jpg"))

	r, err := NewResolver([]string{root}, 0, nil)
	require.NoError(t, err)

	_, ok := r.Find("Album/song.ogg")
	assert.False(t, ok)
}

func TestResolver_CachesPerDirectory(t *testing.T) {
	root := t.TempDir()
	cover := filepath.Join(root, "Album", "cover.png")
	writePNG(t, cover, 2, 2)

	r, err := NewResolver([]string{root}, 4, nil)
	require.NoError(t, err)

	_, ok := r.Find("Album/a.flac")
	require.True(t, ok)

	// Served from the cache once the file is gone.
	require.NoError(t, os.Remove(cover))
	_, ok = r.Find("Album/b.flac")
	assert.True(t, ok)

	r.Purge()
	_, ok = r.Find("Album/b.flac")
	assert.False(t, ok)
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cover.d"), 0o755))
	touch(t, filepath.Join(dir, "back.png"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, "cover.png"))

	got, err := FindFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cover.jpg"), got)

	_, err = FindFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
