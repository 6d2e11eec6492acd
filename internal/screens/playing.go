package screens

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/nowplaying/internal/app"
	"github.com/jmylchreest/nowplaying/internal/mpd"
	"github.com/jmylchreest/nowplaying/internal/progress"
	"github.com/jmylchreest/nowplaying/internal/timer"
	"github.com/jmylchreest/nowplaying/internal/ui"
)

// Button labels.
const (
	LabelPrevious = "Previous"
	LabelPause    = "Pause"
	LabelPlay     = "Play"
	LabelNext     = "Next"
)

// PlayingWindow is the now-playing layout for a 240x320 panel.
type PlayingWindow struct {
	*ui.Window

	IP       *ui.Text
	SSID     *ui.Text
	Cover    *ui.Image
	Artist   *ui.Text
	Title    *ui.Text
	Album    *ui.Text
	Progress *ui.ProgressBar
	Volume   *ui.VolumeBar

	Previous  *ui.Button
	PlayPause *ui.Button
	Next      *ui.Button
}

// NewPlayingWindow builds the playing layout.
func NewPlayingWindow(env Env) *PlayingWindow {
	env = env.withDefaults()
	th, fonts := env.Theme, env.Fonts
	small, medium := fonts.Face(14), fonts.Face(16)
	width := env.Transport.Bounds().Dx()

	w := &PlayingWindow{
		Window: env.newWindow("playing"),

		IP:     ui.NewText(ui.NewFrame(0, 0, 119, 16), small, th.Main, ui.AlignLeft),
		SSID:   ui.NewText(ui.NewFrame(120, 0, 239, 16), small, th.Main, ui.AlignRight),
		Cover:  ui.NewImage(ui.NewFrame(54, 28, 153, 127)),
		Artist: ui.NewText(ui.NewFrame(10, 138, 198, 156), medium, th.Main, ui.AlignCenter),
		Title:  ui.NewText(ui.NewFrame(10, 162, 198, 180), medium, th.Main, ui.AlignCenter),
		Album:  ui.NewText(ui.NewFrame(10, 186, 198, 202), medium, th.Main, ui.AlignCenter),

		Progress: ui.NewProgressBar(ui.NewFrame(10, 208, 198, 226), small, th.Main, th.Label),
		Volume:   ui.NewVolumeBar(ui.NewFrame(209, 23, 239, 273), th.Main, th.VolumePalette()),

		Previous:  ui.NewButton(ui.NewFrame(0, 280, 79, 319), ui.ButtonPrevious, LabelPrevious, small, th.Main),
		PlayPause: ui.NewButton(ui.NewFrame(80, 280, 159, 319), ui.ButtonPlayPause, LabelPause, small, th.Main),
		Next:      ui.NewButton(ui.NewFrame(160, 280, 239, 319), ui.ButtonNext, LabelNext, small, th.Main),
	}

	w.Add(w.IP, w.SSID, ui.NewHRule(17, width, th.Main), w.Cover, w.Artist, w.Title, w.Album,
		w.Progress, w.Volume, ui.NewHRule(279, width, th.Main), w.Previous, w.PlayPause, w.Next)
	return w
}

// Playing shows the current song and keeps it in sync with MPD. While
// playback stays stopped it brings up the library screen.
type Playing struct {
	app.BaseController
	view *PlayingWindow
	env  Env

	progress    *progress.Scheduler
	librarySlot *timer.Slot
	library     *LibraryController

	// Render queue state.
	visible   bool
	coverPath string
	headerAt  time.Time

	headerBusy atomic.Bool
}

// NewPlaying creates the playing controller.
func NewPlaying(nav app.Navigator, env Env) *Playing {
	env = env.withDefaults()
	view := NewPlayingWindow(env)

	p := &Playing{
		BaseController: app.NewBaseController("playing", view.Window, nav, env.Logger),
		view:           view,
		env:            env,
		librarySlot:    timer.NewSlot(env.AfterFunc, nav.Submit),
	}
	p.progress = progress.New(env.Options.ProgressStep, timer.NewSlot(env.AfterFunc, nav.Submit), func(mark int) {
		p.view.Progress.SetProgress(float64(mark))
	}, p.Logger())
	return p
}

// View returns the playing window.
func (p *Playing) View() *PlayingWindow {
	return p.view
}

// WillAppear attaches the MPD listeners and shows the latest snapshot.
func (p *Playing) WillAppear() {
	p.BaseController.WillAppear()
	p.visible = true

	p.env.Monitor.AddMixerListener(p)
	p.env.Monitor.AddPlayerListener(p)
	p.refreshHeader()

	snap, ok := p.env.Monitor.Snapshot()
	if !ok {
		p.applySong(mpd.PlayerState{}, nil)
		p.applyState(mpd.PlayerState{State: mpd.StateStop})
		return
	}

	p.applyMixer(snap.Mixer())
	var cover image.Image
	if snap.HasSong {
		cover = p.findCover(snap.Song.Path)
	}
	p.applyPlayer(snap.Player(), cover)
}

// WillDisappear detaches the listeners and cancels pending timers.
func (p *Playing) WillDisappear() {
	p.visible = false
	p.env.Monitor.RemoveMixerListener(p)
	p.env.Monitor.RemovePlayerListener(p)
	p.progress.Stop()
	p.librarySlot.Cancel()
	p.BaseController.WillDisappear()
}

// Tick refreshes the header when it is due.
func (p *Playing) Tick() {
	if p.env.Now().Sub(p.headerAt) >= p.env.Options.HeaderRefresh {
		p.refreshHeader()
	}
}

// OnMixerChanged implements mpd.MixerListener.
func (p *Playing) OnMixerChanged(state mpd.MixerState) {
	p.Navigator().Submit(func() {
		if p.visible {
			p.applyMixer(state)
		}
	})
}

// OnPlayerChanged implements mpd.PlayerListener. The cover is loaded on the
// caller's goroutine.
func (p *Playing) OnPlayerChanged(state mpd.PlayerState) {
	var cover image.Image
	if state.HasSong {
		cover = p.findCover(state.Song.Path)
	}
	p.Navigator().Submit(func() {
		if p.visible {
			p.applyPlayer(state, cover)
		}
	})
}

func (p *Playing) applyMixer(state mpd.MixerState) {
	p.view.Volume.SetVolume(float64(max(state.Volume, 0)))
}

func (p *Playing) applyPlayer(state mpd.PlayerState, cover image.Image) {
	p.applySong(state, cover)
	p.applyState(state)
	p.scheduleLibrary(state.State)
}

func (p *Playing) applySong(state mpd.PlayerState, cover image.Image) {
	v := p.view
	if !state.HasSong {
		v.Cover.SetImage(nil)
		v.Artist.SetText("")
		v.Title.SetText("")
		v.Album.SetText("")
		v.Progress.SetHidden(true)
		p.coverPath = ""
		return
	}

	song := state.Song
	if song.Path != p.coverPath || v.Cover.Image() == nil {
		v.Cover.SetImage(cover)
		p.coverPath = song.Path
	}
	v.Artist.SetText(song.Artist)
	v.Title.SetText(song.Title)
	v.Album.SetText(song.AlbumLine())
	v.Progress.SetHidden(false)
}

func (p *Playing) applyState(state mpd.PlayerState) {
	duration, durationKnown := state.Duration, state.DurationKnown
	if !durationKnown && state.HasSong && state.Song.Duration > 0 {
		duration, durationKnown = state.Song.Duration, true
	}
	known := state.ElapsedKnown && durationKnown

	label := ""
	if durationKnown {
		label = mpd.Clock(duration)
	}
	p.view.Progress.SetLabel(label)

	button := p.view.PlayPause
	if state.State == mpd.StatePlay {
		p.progress.Update(state.Elapsed, duration, known)
		button.PlayPause().SetPlay(false)
		button.Label.SetText(LabelPause)
		return
	}
	p.progress.Show(state.Elapsed, duration, known)
	button.PlayPause().SetPlay(true)
	button.Label.SetText(LabelPlay)
}

// scheduleLibrary arms the library timer while stopped and cancels it
// otherwise.
func (p *Playing) scheduleLibrary(state mpd.PlayState) {
	if p.env.Options.LibraryAfter <= 0 || p.env.Library == nil {
		return
	}
	if state != mpd.StateStop {
		p.librarySlot.Cancel()
		return
	}
	if p.librarySlot.Pending() {
		return
	}
	p.librarySlot.Arm(p.env.Options.LibraryAfter, func() {
		if !p.visible {
			return
		}
		if p.library == nil {
			p.library = NewLibraryController(p.Navigator(), p.env)
		}
		p.Push(p.library)
	})
}

// refreshHeader looks the network labels up off the render queue.
func (p *Playing) refreshHeader() {
	if p.env.Network == nil || p.headerBusy.Swap(true) {
		return
	}
	p.headerAt = p.env.Now()

	network := p.env.Network
	go func() {
		ip, ssid := network.IP(), network.SSID()
		p.Navigator().Submit(func() {
			p.headerBusy.Store(false)
			p.view.IP.SetText(ip)
			p.view.SSID.SetText(ssid)
		})
	}()
}

func (p *Playing) findCover(path string) image.Image {
	if p.env.Covers == nil || path == "" {
		return nil
	}
	img, ok := p.env.Covers.Find(path)
	if !ok {
		return nil
	}
	return img
}
