package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/nowplaying/internal/config"
	"github.com/jmylchreest/nowplaying/internal/theme"
)

var configInitOpts struct {
	force bool
}

// configCmd represents the config command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the nowplayingd configuration",
	Long: `Inspect, validate and create the nowplayingd configuration file.

nowplayingd reloads the file when it changes. The log level, volume deadband
and network cache TTL apply immediately; other settings need a restart.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	RunE:  runConfigPath,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective daemon configuration",
	Long:  `Print the daemon configuration with defaults filled in, as TOML.`,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the daemon configuration",
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default daemon configuration",
	RunE:  runConfigInit,
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List bundled and user themes",
	RunE:  runConfigThemes,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)

	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false,
		"Overwrite an existing file")
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := daemonConfigPath()
	if err != nil {
		return err
	}
	cliPath := globalOpts.configPath
	if cliPath == "" {
		cliPath = config.ConfigPath()
	}

	fmt.Printf("daemon: %s\n", path)
	fmt.Printf("cli:    %s\n", cliPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dcfg, err := loadDaemonConfig()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(dcfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, err := daemonConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("%s does not exist, defaults apply\n", path)
		return nil
	}
	if _, err := loadDaemonConfig(); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := daemonConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configInitOpts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveDaemonConfig(path, config.DefaultDaemonConfig()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("wrote %s\n", path)

	cliPath := globalOpts.configPath
	if cliPath == "" {
		cliPath = config.ConfigPath()
	}
	if _, err := os.Stat(cliPath); errors.Is(err, os.ErrNotExist) {
		if err := config.DefaultConfig().Save(cliPath); err != nil {
			return fmt.Errorf("failed to write cli config: %w", err)
		}
		fmt.Printf("wrote %s\n", cliPath)
	}
	return nil
}

func runConfigThemes(cmd *cobra.Command, args []string) error {
	dir, err := theme.ThemesDir()
	if err != nil {
		logger.Warn("user themes unavailable", "error", err)
	}
	themes, err := theme.ListAvailableThemes(dir)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	for _, t := range themes {
		switch {
		case t.IsDefault:
			fmt.Printf("%s (bundled, default)\n", t.Name)
		case t.IsBundled:
			fmt.Printf("%s (bundled)\n", t.Name)
		default:
			fmt.Printf("%s (%s)\n", t.Name, t.Path)
		}
	}
	return nil
}
