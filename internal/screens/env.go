package screens

import (
	"image"
	"log/slog"
	"time"

	"golang.org/x/image/font"

	"github.com/jmylchreest/nowplaying/internal/mpd"
	"github.com/jmylchreest/nowplaying/internal/theme"
	"github.com/jmylchreest/nowplaying/internal/timer"
	"github.com/jmylchreest/nowplaying/internal/ui"
)

// Monitor is the part of mpd.Monitor the screens use.
type Monitor interface {
	AddMixerListener(l mpd.MixerListener)
	RemoveMixerListener(l mpd.MixerListener)
	AddPlayerListener(l mpd.PlayerListener)
	RemovePlayerListener(l mpd.PlayerListener)
	Snapshot() (mpd.Snapshot, bool)
}

// Network supplies the header labels.
type Network interface {
	IP() string
	SSID() string
}

// Covers finds the cover of a track.
type Covers interface {
	Find(path string) (image.Image, bool)
}

// Library lists tag values asynchronously.
type Library interface {
	List(field string, done func(values []string, err error))
}

// Fonts hands out font faces by point size.
type Fonts interface {
	Face(points float64) font.Face
}

// Defaults for Options.
const (
	DefaultLibraryField  = "albumartist"
	DefaultHeaderRefresh = 10 * time.Second
)

// Options tunes screen behaviour.
type Options struct {
	// ProgressStep is the progress bar granularity in percentage points.
	ProgressStep int
	// LibraryAfter is how long playback must stay stopped before the
	// library is shown. Zero disables the library screen.
	LibraryAfter time.Duration
	// LibraryField is the tag listed on the library screen.
	LibraryField string
	// HeaderRefresh is how often the IP and SSID labels are refreshed.
	HeaderRefresh time.Duration
	// PartialLimit overrides ui.DefaultPartialLimit when positive.
	PartialLimit int
}

// Env is what the screens need from the rest of the program. Covers,
// Library and Network may be nil.
type Env struct {
	Transport ui.Transport
	Theme     *theme.Theme
	Fonts     Fonts
	Monitor   Monitor
	Network   Network
	Covers    Covers
	Library   Library
	Options   Options

	// AfterFunc schedules timers; nil uses timer.Real.
	AfterFunc timer.AfterFunc
	Now       func() time.Time
	Logger    *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Theme == nil {
		e.Theme = theme.NewDefaultTheme()
	}
	if e.Fonts == nil {
		e.Fonts = theme.NewFonts(e.Theme.Font, e.Logger)
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Options.LibraryField == "" {
		e.Options.LibraryField = DefaultLibraryField
	}
	if e.Options.HeaderRefresh <= 0 {
		e.Options.HeaderRefresh = DefaultHeaderRefresh
	}
	return e
}

func (e Env) newWindow(name string) *ui.Window {
	w := ui.NewWindow(name, e.Transport, e.Theme.Background, e.Logger)
	if e.Options.PartialLimit > 0 {
		w.SetPartialLimit(e.Options.PartialLimit)
	}
	return w
}
