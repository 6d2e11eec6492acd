package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var volumeCmd = &cobra.Command{
	Use:   "volume [0-100]",
	Short: "Show or set the MPD volume",
	Long: `Show the current volume, or set it when a percentage is given.

Values outside 0-100 are clamped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func init() {
	rootCmd.AddCommand(volumeCmd)
}

func runVolume(cmd *cobra.Command, args []string) error {
	var percent int
	if len(args) == 1 {
		var err error
		percent, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[0], err)
		}
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if len(args) == 1 {
		svc.SetVolume(percent)
	}

	// Commands run in order, so this reads back the value just set.
	st, err := svc.Status()
	if err != nil {
		return fmt.Errorf("failed to get volume: %w", err)
	}
	if st.Volume < 0 {
		fmt.Println("volume: n/a")
		return nil
	}
	fmt.Printf("volume: %d%%\n", st.Volume)
	return nil
}
