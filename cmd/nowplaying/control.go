package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/mpd"
)

// toggleCmd pauses or resumes playback.
var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Pause or resume playback",
	Long:  `Pause when playing, resume when paused and start playback when stopped.`,
	RunE:  controlRun((*mpd.Service).TogglePause),
}

// nextCmd skips forward.
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	RunE:  controlRun((*mpd.Service).Next),
}

// previousCmd skips back.
var previousCmd = &cobra.Command{
	Use:   "previous",
	Short: "Go back to the previous track",
	RunE:  controlRun((*mpd.Service).Previous),
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(previousCmd)
}

// controlRun sends one player command and waits until it has been issued.
func controlRun(command func(*mpd.Service)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		command(svc)
		_, err = svc.Status()
		return err
	}
}
