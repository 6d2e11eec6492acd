// Package main is the entry point for the nowplayingd display daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/nowplaying/internal/config"
	"github.com/jmylchreest/nowplaying/internal/daemon"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default: ~/.config/nowplaying/nowplayingd.toml)")
	logLevel := flag.String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	noWatch := flag.Bool("no-watch", false, "Do not reload the config file when it changes")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("nowplayingd version", version)
		os.Exit(0)
	}

	// Set up structured logging; the level follows the config.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, *logLevel, !*noWatch, level, logger); err != nil {
		logger.Error("nowplayingd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string, watch bool, level *slog.LevelVar, logger *slog.Logger) error {
	if configPath == "" {
		path, err := config.DaemonConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = path
	}

	cfg, err := config.LoadDaemonConfigFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	l, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	level.Set(l)

	logger.Info("starting nowplayingd", "version", version, "config", configPath)

	opts := daemon.Options{Level: level}
	if watch {
		opts.ConfigPath = configPath
	}

	d, err := daemon.New(cfg, opts, logger)
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}
