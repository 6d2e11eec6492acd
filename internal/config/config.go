// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultOutputFormat = "plain"
	DefaultPreviewScale = 1
)

// Config represents the nowplaying CLI configuration.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Preview PreviewConfig `toml:"preview"`
}

// OutputConfig holds default output options.
type OutputConfig struct {
	Format   string `toml:"format"`   // plain, json, yaml
	Template string `toml:"template"` // Template for plain status output, empty for the built-in one
	Color    bool   `toml:"color"`    // Style plain output with colours
}

// PreviewConfig holds terminal preview settings.
type PreviewConfig struct {
	Scale    int  `toml:"scale"`     // Panel pixels per terminal cell column
	ShowHelp bool `toml:"show_help"` // Show key help under the preview
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			Color:  true,
		},
		Preview: PreviewConfig{
			Scale:    DefaultPreviewScale,
			ShowHelp: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "nowplaying", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Preview.Scale < 1 {
		cfg.Preview.Scale = DefaultPreviewScale
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
