package screens

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/nowplaying/internal/app"
	"github.com/jmylchreest/nowplaying/internal/mpd"
	"github.com/jmylchreest/nowplaying/internal/ui"
)

// Library layout.
const (
	libraryTitle     = "Library"
	libraryListTop   = 28
	libraryRowHeight = 18
)

// Library messages.
const (
	MessageLoading     = "Loading..."
	MessageEmpty       = "Nothing here"
	MessageUnavailable = "Library unavailable"
)

// LibraryWindow lists the values of one tag.
type LibraryWindow struct {
	*ui.Window

	Title *ui.Text
	Count *ui.Text
	Rows  []*ui.Text
}

// NewLibraryWindow builds the library layout, with as many rows as fit
// below the title.
func NewLibraryWindow(env Env) *LibraryWindow {
	env = env.withDefaults()
	th := env.Theme
	small := env.Fonts.Face(14)
	b := env.Transport.Bounds()

	w := &LibraryWindow{
		Window: env.newWindow("library"),
		Title:  ui.NewText(ui.NewFrame(0, 0, 119, 22), env.Fonts.Face(20), th.Main, ui.AlignLeft),
		Count:  ui.NewText(ui.NewFrame(120, 0, b.Dx()-1, 22), small, th.Label, ui.AlignRight),
	}
	w.Title.SetText(libraryTitle)
	w.Add(w.Title, w.Count, ui.NewHRule(23, b.Dx(), th.Main))

	for y := libraryListTop; y+libraryRowHeight <= b.Dy(); y += libraryRowHeight {
		row := ui.NewText(ui.NewFrame(4, y, b.Dx()-5, y+libraryRowHeight-1), small, th.Foreground, ui.AlignLeft)
		w.Rows = append(w.Rows, row)
		w.Add(row)
	}
	return w
}

// SetEntries fills the rows. When there are more entries than rows the last
// row counts the rest.
func (w *LibraryWindow) SetEntries(entries []string) {
	w.Count.SetText(humanize.Comma(int64(len(entries))))
	if len(entries) == 0 {
		w.SetMessage(MessageEmpty)
		return
	}

	for i, row := range w.Rows {
		switch {
		case i == len(w.Rows)-1 && len(entries) > len(w.Rows):
			row.SetText(fmt.Sprintf("and %s more", humanize.Comma(int64(len(entries)-i))))
		case i < len(entries):
			row.SetText(entries[i])
		default:
			row.SetText("")
		}
	}
}

// SetMessage shows msg in the first row and clears the others.
func (w *LibraryWindow) SetMessage(msg string) {
	for i, row := range w.Rows {
		if i == 0 {
			row.SetText(msg)
			continue
		}
		row.SetText("")
	}
}

// LibraryController shows the library and leaves as soon as playback
// resumes.
type LibraryController struct {
	app.BaseController
	view *LibraryWindow
	env  Env

	// visible is only touched from the render queue.
	visible bool
}

// NewLibraryController creates the library controller.
func NewLibraryController(nav app.Navigator, env Env) *LibraryController {
	env = env.withDefaults()
	view := NewLibraryWindow(env)
	return &LibraryController{
		BaseController: app.NewBaseController("library", view.Window, nav, env.Logger),
		view:           view,
		env:            env,
	}
}

// View returns the library window.
func (l *LibraryController) View() *LibraryWindow {
	return l.view
}

// WillAppear starts fetching the entries.
func (l *LibraryController) WillAppear() {
	l.BaseController.WillAppear()
	l.visible = true
	l.env.Monitor.AddPlayerListener(l)

	if snap, ok := l.env.Monitor.Snapshot(); ok && snap.Status.State == mpd.StatePlay {
		l.leave()
		return
	}

	if l.env.Library == nil {
		l.view.SetMessage(MessageUnavailable)
		return
	}

	l.view.SetMessage(MessageLoading)
	field := l.env.Options.LibraryField
	l.env.Library.List(field, func(values []string, err error) {
		l.Navigator().Submit(func() {
			if err != nil {
				l.Logger().Warn("failed to fetch library", "field", field, "error", err)
				l.view.SetMessage(MessageUnavailable)
				return
			}
			entries := cleanEntries(values)
			l.Logger().Debug("library fetched", "field", field, "entries", len(entries))
			l.view.SetEntries(entries)
		})
	})
}

// WillDisappear detaches the player listener.
func (l *LibraryController) WillDisappear() {
	l.visible = false
	l.env.Monitor.RemovePlayerListener(l)
	l.BaseController.WillDisappear()
}

// OnPlayerChanged implements mpd.PlayerListener.
func (l *LibraryController) OnPlayerChanged(state mpd.PlayerState) {
	if state.State != mpd.StatePlay {
		return
	}
	l.Navigator().Submit(l.leave)
}

// leave pops the library once, however many play notifications arrive.
func (l *LibraryController) leave() {
	if !l.visible {
		return
	}
	l.visible = false
	l.Pop()
}

// cleanEntries drops blank values.
func cleanEntries(values []string) []string {
	entries := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			entries = append(entries, v)
		}
	}
	return entries
}
