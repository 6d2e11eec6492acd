package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/daemon"
	"github.com/jmylchreest/nowplaying/internal/display"
)

var snapshotOpts struct {
	wait time.Duration
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <out.png>",
	Short: "Render the panel to a PNG file",
	Long: `Render the playing screen exactly as nowplayingd would draw it and save
it as a PNG. The screen is connected to MPD for --wait before the file is
written, so the current song, cover and volume show up.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().DurationVar(&snapshotOpts.wait, "wait", 2*time.Second,
		"How long to let the screen settle before saving")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	dcfg, err := loadDaemonConfig()
	if err != nil {
		return err
	}
	// Leave the knob to the running panel.
	dcfg.Volume.Enabled = false

	sink := display.NewPNGFile("", dcfg.Display.Width, dcfg.Display.Height)
	d, err := daemon.New(dcfg, daemon.Options{Device: sink}, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotOpts.wait)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		return err
	}

	if err := display.SavePNG(args[0], sink.Image()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", args[0], dcfg.Display.Width, dcfg.Display.Height)
	return nil
}
