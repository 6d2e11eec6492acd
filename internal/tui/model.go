// Package tui provides the BubbleTea-based terminal preview of the panel.
package tui

import (
	"context"
	"errors"
	"image"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FrameSource supplies rendered screens.
type FrameSource interface {
	Snapshot() image.Image
	Updates() <-chan struct{}
}

// Controls receives player commands from the keyboard.
type Controls interface {
	TogglePause()
	Next()
	Previous()
}

// Options configures the preview.
type Options struct {
	Scale    int
	ShowHelp bool
}

// Model is the preview TUI model.
type Model struct {
	source   FrameSource
	controls Controls
	opts     Options

	help help.Model
	keys KeyMap

	frame  string
	status string
	width  int
}

// New creates a preview model.
func New(source FrameSource, controls Controls, opts Options) Model {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return Model{
		source:   source,
		controls: controls,
		opts:     opts,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}
}

type renderMsg struct{}

// frameMsg is sent when the source signalled a push.
type frameMsg struct{}

// Init renders the current screen and starts waiting for pushes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return renderMsg{} },
		m.waitForFrame,
	)
}

func (m Model) waitForFrame() tea.Msg {
	<-m.source.Updates()
	return frameMsg{}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case renderMsg:
		m.frame = Render(m.source.Snapshot(), m.opts.Scale)
		return m, nil

	case frameMsg:
		m.frame = Render(m.source.Snapshot(), m.opts.Scale)
		return m, m.waitForFrame
	}
	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.TogglePause):
		m.controls.TogglePause()
		m.status = "play/pause"
	case key.Matches(msg, m.keys.Next):
		m.controls.Next()
		m.status = "next"
	case key.Matches(msg, m.keys.Previous):
		m.controls.Previous()
		m.status = "previous"
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.frame == "" {
		return "Waiting for the first frame..."
	}

	s := m.frame
	if m.status != "" {
		s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.status)
	}
	if m.opts.ShowHelp {
		s += "\n" + m.help.View(m.keys)
	}
	return s
}

// Run shows the preview until the user quits or ctx is cancelled.
func Run(ctx context.Context, source FrameSource, controls Controls, opts Options) error {
	p := tea.NewProgram(New(source, controls, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
