package screens

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/nowplaying/internal/app"
	"github.com/jmylchreest/nowplaying/internal/mpd"
	"github.com/jmylchreest/nowplaying/internal/timer"
)

type recordingTransport struct {
	mu     sync.Mutex
	pushes []image.Rectangle
}

func (r *recordingTransport) Bounds() image.Rectangle {
	return image.Rect(0, 0, 240, 320)
}

func (r *recordingTransport) Push(img image.Image, x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, img.Bounds().Add(image.Pt(x, y)))
	return nil
}

func (r *recordingTransport) take() []image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pushes
	r.pushes = nil
	return p
}

type fakeMonitor struct {
	mu       sync.Mutex
	mixer    []mpd.MixerListener
	player   []mpd.PlayerListener
	snapshot *mpd.Snapshot
}

func (m *fakeMonitor) AddMixerListener(l mpd.MixerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer = append(m.mixer, l)
}

func (m *fakeMonitor) RemoveMixerListener(l mpd.MixerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.mixer {
		if x == l {
			m.mixer = append(m.mixer[:i], m.mixer[i+1:]...)
			return
		}
	}
}

func (m *fakeMonitor) AddPlayerListener(l mpd.PlayerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.player = append(m.player, l)
}

func (m *fakeMonitor) RemovePlayerListener(l mpd.PlayerListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.player {
		if x == l {
			m.player = append(m.player[:i], m.player[i+1:]...)
			return
		}
	}
}

func (m *fakeMonitor) Snapshot() (mpd.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return mpd.Snapshot{}, false
	}
	return *m.snapshot, true
}

func (m *fakeMonitor) set(s mpd.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = &s
}

func (m *fakeMonitor) counts() (mixer, player int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mixer), len(m.player)
}

// publish stores s and notifies listeners the way the monitor does.
func (m *fakeMonitor) publish(s mpd.Snapshot) {
	m.set(s)
	m.mu.Lock()
	mixer := append([]mpd.MixerListener(nil), m.mixer...)
	player := append([]mpd.PlayerListener(nil), m.player...)
	m.mu.Unlock()

	for _, l := range mixer {
		l.OnMixerChanged(s.Mixer())
	}
	for _, l := range player {
		l.OnPlayerChanged(s.Player())
	}
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

type manualClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeStopper struct {
	c *manualClock
	t *fakeTimer
}

func (s fakeStopper) Stop() bool {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	was := !s.t.stopped
	s.t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) timer.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, t)
	return fakeStopper{c: c, t: t}
}

// active returns the timers of duration d that were not stopped.
func (c *manualClock) active(d time.Duration) []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if t.d == d && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// all returns every timer of duration d.
func (c *manualClock) all(d time.Duration) []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if t.d == d {
			out = append(out, t)
		}
	}
	return out
}

type fakeNetwork struct{}

func (fakeNetwork) IP() string   { return "10.0.0.5" }
func (fakeNetwork) SSID() string { return "home" }

type fakeCovers map[string]image.Image

func (c fakeCovers) Find(path string) (image.Image, bool) {
	img, ok := c[path]
	return img, ok
}

type fakeLibrary struct {
	values []string
	err    error
}

func (l *fakeLibrary) List(_ string, done func([]string, error)) {
	done(l.values, l.err)
}

const libraryAfter = 3 * time.Second

type harness struct {
	app       *app.App
	monitor   *fakeMonitor
	clock     *manualClock
	transport *recordingTransport
	playing   *Playing
}

func newHarness(t *testing.T, snap *mpd.Snapshot, lib Library) *harness {
	t.Helper()
	h := &harness{
		app:       app.New(time.Hour, nil),
		monitor:   &fakeMonitor{},
		clock:     &manualClock{},
		transport: &recordingTransport{},
	}
	t.Cleanup(h.app.Close)
	if snap != nil {
		h.monitor.set(*snap)
	}

	env := Env{
		Transport: h.transport,
		Monitor:   h.monitor,
		Network:   fakeNetwork{},
		Covers:    fakeCovers{"Artist/Album/01.flac": image.NewRGBA(image.Rect(0, 0, 200, 200))},
		Library:   lib,
		Options:   Options{LibraryAfter: libraryAfter},
		AfterFunc: h.clock.AfterFunc,
	}
	h.playing = NewPlaying(h.app, env)
	h.app.Push(h.playing)
	h.settle()
	return h
}

// settle lets tasks that enqueue further tasks run to completion.
func (h *harness) settle() {
	for range 4 {
		h.app.Sync()
	}
}

// onQueue runs fn on the render queue and waits for it.
func (h *harness) onQueue(fn func()) {
	h.app.Submit(fn)
	h.app.Sync()
}

// fire runs the timers' callbacks as if they had expired.
func (h *harness) fire(timers ...*fakeTimer) {
	for _, t := range timers {
		h.clock.mu.Lock()
		t.stopped = true
		h.clock.mu.Unlock()
		t.fn()
	}
	h.settle()
}

// waitHeader waits for the asynchronous header lookup to land.
func (h *harness) waitHeader(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		var ip, ssid string
		h.onQueue(func() {
			ip, ssid = h.playing.View().IP.Text(), h.playing.View().SSID.Text()
		})
		return ip == "10.0.0.5" && ssid == "home"
	}, time.Second, 5*time.Millisecond)
}

func playingSnapshot() mpd.Snapshot {
	return mpd.Snapshot{
		Status: mpd.Status{
			Volume:        55,
			State:         mpd.StatePlay,
			SongID:        "1",
			Elapsed:       95,
			ElapsedKnown:  true,
			Duration:      200,
			DurationKnown: true,
		},
		Song: mpd.Song{
			ID:     "1",
			Path:   "Artist/Album/01.flac",
			Artist: "Artist",
			Album:  "Album",
			Title:  "First",
			Date:   "2001",
		},
		HasSong: true,
	}
}

func TestPlaying_AppearShowsSnapshot(t *testing.T) {
	snap := playingSnapshot()
	h := newHarness(t, &snap, nil)

	h.onQueue(func() {
		v := h.playing.View()
		assert.Equal(t, "Artist", v.Artist.Text())
		assert.Equal(t, "First", v.Title.Text())
		assert.Equal(t, "Album (2001)", v.Album.Text())
		assert.NotNil(t, v.Cover.Image())
		assert.Equal(t, 55.0, v.Volume.Volume())
		assert.Equal(t, 50.0, v.Progress.Progress())
		assert.Equal(t, "3:20", v.Progress.Label())
		assert.False(t, v.Progress.Hidden())
		assert.Equal(t, LabelPause, v.PlayPause.Label.Text())
		assert.False(t, v.PlayPause.PlayPause().Play())
	})

	mixer, player := h.monitor.counts()
	assert.Equal(t, 1, mixer)
	assert.Equal(t, 1, player)

	// Next progress step in 25s.
	require.Len(t, h.clock.active(25*time.Second), 1)
}

func TestPlaying_ProgressAdvancesOnTimer(t *testing.T) {
	snap := playingSnapshot()
	h := newHarness(t, &snap, nil)

	h.fire(h.clock.active(25 * time.Second)...)

	h.onQueue(func() {
		assert.Equal(t, 60.0, h.playing.View().Progress.Progress())
	})
	assert.Len(t, h.clock.active(20*time.Second), 1)
}

func TestPlaying_PlayerChanges(t *testing.T) {
	snap := playingSnapshot()
	h := newHarness(t, &snap, nil)

	paused := snap
	paused.Status.State = mpd.StatePause
	paused.Status.Elapsed = 120
	h.monitor.publish(paused)
	h.settle()

	h.onQueue(func() {
		v := h.playing.View()
		assert.Equal(t, LabelPlay, v.PlayPause.Label.Text())
		assert.True(t, v.PlayPause.PlayPause().Play())
		assert.Equal(t, 60.0, v.Progress.Progress())
	})
	assert.Empty(t, h.clock.active(25*time.Second), "pausing cancels the progress timer")

	empty := mpd.Snapshot{Status: mpd.Status{Volume: 80, State: mpd.StatePause}}
	h.monitor.publish(empty)
	h.settle()

	h.onQueue(func() {
		v := h.playing.View()
		assert.Empty(t, v.Artist.Text())
		assert.Empty(t, v.Title.Text())
		assert.Empty(t, v.Album.Text())
		assert.Nil(t, v.Cover.Image())
		assert.True(t, v.Progress.Hidden())
		assert.Equal(t, 80.0, v.Volume.Volume())
	})
}

func TestPlaying_NoSnapshot(t *testing.T) {
	h := newHarness(t, nil, &fakeLibrary{})

	h.onQueue(func() {
		v := h.playing.View()
		assert.True(t, v.Progress.Hidden())
		assert.Equal(t, LabelPlay, v.PlayPause.Label.Text())
	})
	assert.Empty(t, h.clock.all(libraryAfter))
}

func TestPlaying_HeaderLabels(t *testing.T) {
	snap := playingSnapshot()
	h := newHarness(t, &snap, nil)
	h.waitHeader(t)
}

func TestPlaying_LibraryShownWhileStopped(t *testing.T) {
	snap := playingSnapshot()
	snap.Status.State = mpd.StateStop
	lib := &fakeLibrary{values: []string{"Beta", "", "Alpha"}}
	h := newHarness(t, &snap, lib)

	timers := h.clock.active(libraryAfter)
	require.Len(t, timers, 1)
	h.fire(timers...)

	assert.Equal(t, "library", h.app.Active())
	assert.Equal(t, 2, h.app.Depth())

	// The playing screen stopped listening; the library listens for play.
	mixer, player := h.monitor.counts()
	assert.Equal(t, 0, mixer)
	assert.Equal(t, 1, player)

	library := h.playing.library
	h.onQueue(func() {
		v := library.View()
		assert.Equal(t, "Library", v.Title.Text())
		assert.Equal(t, "2", v.Count.Text())
		assert.Equal(t, "Beta", v.Rows[0].Text())
		assert.Equal(t, "Alpha", v.Rows[1].Text())
		assert.Empty(t, v.Rows[2].Text())
	})

	resumed := snap
	resumed.Status.State = mpd.StatePlay
	h.monitor.publish(resumed)
	h.monitor.publish(resumed)
	h.settle()

	assert.Equal(t, "playing", h.app.Active())
	assert.Equal(t, 1, h.app.Depth())
	mixer, player = h.monitor.counts()
	assert.Equal(t, 1, mixer)
	assert.Equal(t, 1, player)
	assert.Empty(t, h.clock.active(libraryAfter))
}

func TestPlaying_LibraryCancelledWhenPlaybackResumes(t *testing.T) {
	snap := playingSnapshot()
	snap.Status.State = mpd.StateStop
	h := newHarness(t, &snap, &fakeLibrary{})

	armed := h.clock.all(libraryAfter)
	require.Len(t, armed, 1)

	resumed := snap
	resumed.Status.State = mpd.StatePlay
	h.monitor.publish(resumed)
	h.settle()
	assert.Empty(t, h.clock.active(libraryAfter))

	// A timer that fires after being cancelled does nothing.
	h.fire(armed...)
	assert.Equal(t, "playing", h.app.Active())
}

func TestPlaying_RenderPushes(t *testing.T) {
	snap := playingSnapshot()
	h := newHarness(t, &snap, nil)
	h.waitHeader(t)
	h.transport.take()

	h.app.Render()
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 240, 320)}, h.transport.take())

	h.app.Render()
	assert.Empty(t, h.transport.take(), "nothing changed")

	changed := snap
	changed.Status.Volume = 10
	h.monitor.publish(changed)
	h.settle()
	h.app.Render()
	assert.Equal(t, []image.Rectangle{image.Rect(209, 23, 240, 274)}, h.transport.take())
}

func TestLibraryWindow_Overflow(t *testing.T) {
	env := Env{Transport: &recordingTransport{}}
	w := NewLibraryWindow(env)
	require.Len(t, w.Rows, 16)

	entries := make([]string, 1200)
	for i := range entries {
		entries[i] = "artist"
	}
	w.SetEntries(entries)

	assert.Equal(t, "1,200", w.Count.Text())
	assert.Equal(t, "artist", w.Rows[14].Text())
	assert.Equal(t, "and 1,185 more", w.Rows[15].Text())

	w.SetEntries(nil)
	assert.Equal(t, MessageEmpty, w.Rows[0].Text())
	assert.Empty(t, w.Rows[1].Text())
}

func TestLibraryController_ErrorShowsMessage(t *testing.T) {
	a := app.New(time.Hour, nil)
	t.Cleanup(a.Close)

	env := Env{
		Transport: &recordingTransport{},
		Monitor:   &fakeMonitor{},
		Library:   &fakeLibrary{err: assert.AnError},
	}
	l := NewLibraryController(a, env)
	a.Push(l)
	for range 3 {
		a.Sync()
	}

	a.Submit(func() {
		assert.Equal(t, MessageUnavailable, l.View().Rows[0].Text())
	})
	a.Sync()
}
