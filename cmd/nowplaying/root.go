// Package main provides the CLI entrypoint for nowplaying.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/config"
	"github.com/jmylchreest/nowplaying/internal/mpd"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose          bool
		configPath       string
		daemonConfigPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nowplaying",
	Short: "Control and preview the MPD now-playing panel",
	Long: `nowplaying talks to the MPD daemon behind a nowplayingd panel.

It reads the same daemon configuration as nowplayingd, so the MPD address,
display size and theme match what the panel shows. Use it to query the
player, change the volume, render the panel to a PNG or preview it in the
terminal.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/nowplaying/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.daemonConfigPath, "daemon-config", "",
		"Path to the nowplayingd config file (default: ~/.config/nowplaying/nowplayingd.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// daemonConfigPath returns the daemon config path from the flag or the
// default location.
func daemonConfigPath() (string, error) {
	if globalOpts.daemonConfigPath != "" {
		return globalOpts.daemonConfigPath, nil
	}
	path, err := config.DaemonConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get daemon config path: %w", err)
	}
	return path, nil
}

// loadDaemonConfig loads the daemon configuration shared with nowplayingd.
func loadDaemonConfig() (*config.DaemonConfig, error) {
	path, err := daemonConfigPath()
	if err != nil {
		return nil, err
	}
	dcfg, err := config.LoadDaemonConfigFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load daemon config: %w", err)
	}
	return dcfg, nil
}

// newService connects a command service to the configured MPD daemon.
// Callers must Close it.
func newService() (*mpd.Service, error) {
	dcfg, err := loadDaemonConfig()
	if err != nil {
		return nil, err
	}
	svc := mpd.NewService(dcfg.MPD.Addr(), dcfg.MPD.Password, logger)
	if err := svc.Connect(); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}
