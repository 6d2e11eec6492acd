package main

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/adapter/output"
	"github.com/jmylchreest/nowplaying/internal/mpd"
)

var statusOpts struct {
	format   string
	template string
	noColor  bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what MPD is playing",
	Long: `Show the player state, current song, progress and volume.

Examples:
  # One line summary
  nowplaying status

  # Machine readable
  nowplaying status --format json

  # Custom line for a status bar
  nowplaying status --template '{{.Artist}} - {{.Title}} ({{.Progress}}%)'

Template fields: State, StateName, Volume, Elapsed, Duration, Progress, File,
Artist, AlbumArtist, Album, Title, Date. Functions: clock, truncate.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "",
		"Output format: plain, json, yaml (default from config)")
	statusCmd.Flags().StringVarP(&statusOpts.template, "template", "t", "",
		"Go template for plain output")
	statusCmd.Flags().BoolVar(&statusOpts.noColor, "no-color", false,
		"Disable coloured plain output")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format := statusOpts.format
	if format == "" {
		format = cfg.Output.Format
	}
	if !slices.Contains(output.ValidFormats(), output.FormatType(format)) {
		return fmt.Errorf("invalid format %q, must be one of: %v", format, output.ValidFormats())
	}

	tmpl := statusOpts.template
	if tmpl == "" {
		tmpl = cfg.Output.Template
	}
	formatter, err := output.NewFormatter(output.FormatType(format), output.FormatterOptions{Template: tmpl})
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	song, hasSong, err := svc.CurrentSong()
	if err != nil {
		return fmt.Errorf("failed to get current song: %w", err)
	}
	report := output.NewReport(st, song, hasSong)

	colored := output.FormatType(format) == output.FormatPlain && cfg.Output.Color && !statusOpts.noColor
	if !colored {
		return formatter.Format(os.Stdout, report)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return err
	}
	style := lipgloss.NewStyle().Foreground(stateColor(st.State))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		fmt.Println(style.Render(line))
	}
	return nil
}

// stateColor picks the ANSI colour for a play state.
func stateColor(state mpd.PlayState) lipgloss.Color {
	switch state {
	case mpd.StatePlay:
		return lipgloss.Color("2")
	case mpd.StatePause:
		return lipgloss.Color("3")
	default:
		return lipgloss.Color("8")
	}
}
