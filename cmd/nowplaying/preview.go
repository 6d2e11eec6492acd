package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/daemon"
	"github.com/jmylchreest/nowplaying/internal/display"
	"github.com/jmylchreest/nowplaying/internal/tui"
)

var previewOpts struct {
	scale   int
	logFile string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the panel in the terminal",
	Long: `Run the panel screens against MPD and draw them in the terminal with
half-block characters, one cell per two pixel rows.

Key bindings:
  space, p    Play/pause
  l, >, →     Next track
  h, <, ←     Previous track
  ?           Toggle help
  q, ctrl+c   Quit`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntVar(&previewOpts.scale, "scale", 0,
		"Panel pixels per terminal column (default from config)")
	previewCmd.Flags().StringVar(&previewOpts.logFile, "log-file", "",
		"Write daemon logs to this file instead of discarding them")
}

func runPreview(cmd *cobra.Command, args []string) error {
	dcfg, err := loadDaemonConfig()
	if err != nil {
		return err
	}
	dcfg.Volume.Enabled = false

	// The alternate screen owns the terminal, so logs go elsewhere.
	var out io.Writer = io.Discard
	if previewOpts.logFile != "" {
		f, err := os.OpenFile(previewOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	daemonLogger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	term := display.NewTerminal(dcfg.Display.Width, dcfg.Display.Height)
	d, err := daemon.New(dcfg, daemon.Options{Device: term}, daemonLogger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	scale := previewOpts.scale
	if scale < 1 {
		scale = cfg.Preview.Scale
	}
	err = tui.Run(ctx, term, d.Service(), tui.Options{
		Scale:    scale,
		ShowHelp: cfg.Preview.ShowHelp,
	})

	cancel()
	if runErr := <-done; err == nil {
		err = runErr
	}
	return err
}
