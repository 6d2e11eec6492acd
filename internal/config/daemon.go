package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "200ms", "5s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '200ms', '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for nowplayingd.
// Loaded from ~/.config/nowplaying/nowplayingd.toml
type DaemonConfig struct {
	MPD      MPDConfig      `toml:"mpd"`
	Display  DisplayConfig  `toml:"display"`
	Theme    ThemeConfig    `toml:"theme"`
	Volume   VolumeConfig   `toml:"volume"`
	Network  NetworkConfig  `toml:"network"`
	Library  LibraryConfig  `toml:"library"`
	Progress ProgressConfig `toml:"progress"`
	Covers   CoversConfig   `toml:"covers"`
	Log      LogConfig      `toml:"log"`
}

// MPDConfig contains music daemon connection settings.
type MPDConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	Password     string   `toml:"password"`
	IdleTimeout  Duration `toml:"idle_timeout"`  // Bound on each idle wait; stop latency
	ReconnectMax Duration `toml:"reconnect_max"` // Cap on reconnect backoff
}

// Addr returns the host:port address of the music daemon.
func (c MPDConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DisplayConfig contains display output settings.
type DisplayConfig struct {
	Driver          string   `toml:"driver"`           // "framebuffer", "png" or "terminal"
	Device          string   `toml:"device"`           // Framebuffer device or PNG output path
	Width           int      `toml:"width"`            // Panel width in pixels
	Height          int      `toml:"height"`           // Panel height in pixels
	RefreshInterval Duration `toml:"refresh_interval"` // Render tick period
	PartialLimit    int      `toml:"partial_limit"`    // Max dirty regions pushed individually
}

// Driver names a display transport.
type Driver string

const (
	DriverFramebuffer Driver = "framebuffer"
	DriverPNG         Driver = "png"
	DriverTerminal    Driver = "terminal"
)

// ValidDrivers returns all valid display driver values.
func ValidDrivers() []Driver {
	return []Driver{DriverFramebuffer, DriverPNG, DriverTerminal}
}

// ThemeConfig contains theme settings. Colours set here override the theme.
type ThemeConfig struct {
	Name         string   `toml:"name"`          // Theme name without .toml extension
	Font         string   `toml:"font"`          // TrueType font path
	MainColor    string   `toml:"main_color"`    // e.g. "#00ff00"
	VolumeColors []string `toml:"volume_colors"` // Bottom to top
}

// VolumeConfig contains volume knob settings.
type VolumeConfig struct {
	Enabled      bool     `toml:"enabled"`
	Device       string   `toml:"device"`        // IIO raw value file
	MaxRaw       float64  `toml:"max_raw"`       // Raw reading at full scale
	PollInterval Duration `toml:"poll_interval"` // Sensor polling period
	Deadband     float64  `toml:"deadband"`      // Fraction of full scale ignored as noise
}

// NetworkConfig contains network info settings.
type NetworkConfig struct {
	CacheTTL  Duration `toml:"cache_ttl"`
	Interface string   `toml:"interface"` // Wireless interface for SSID lookup, empty for any
}

// LibraryConfig contains library screen settings.
type LibraryConfig struct {
	ShowAfter Duration `toml:"show_after"` // Stopped time before the library shows, 0 disables
	Field     string   `toml:"field"`      // Tag listed on the library screen
}

// ProgressConfig contains progress bar settings.
type ProgressConfig struct {
	Step int `toml:"step"` // Percentage points per progress step
}

// CoversConfig contains cover art settings.
type CoversConfig struct {
	MusicDir     string   `toml:"music_dir"`
	FallbackDirs []string `toml:"fallback_dirs"`
	CacheSize    int      `toml:"cache_size"` // Decoded covers kept in memory
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn" or "error"
}

// SlogLevel returns the configured level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

// DefaultMaxRaw is the full-scale reading of an ADS1115 at gain 1 (4.096V)
// with the knob wired to 3.3V.
const DefaultMaxRaw = 32767 * 3.3 / 4.096

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		MPD: MPDConfig{
			Host:         "localhost",
			Port:         6600,
			IdleTimeout:  Duration(time.Second),
			ReconnectMax: Duration(30 * time.Second),
		},
		Display: DisplayConfig{
			Driver:          string(DriverFramebuffer),
			Device:          "/dev/fb1",
			Width:           240,
			Height:          320,
			RefreshInterval: Duration(time.Second),
			PartialLimit:    4,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
		Volume: VolumeConfig{
			Enabled:      true,
			Device:       "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
			MaxRaw:       DefaultMaxRaw,
			PollInterval: Duration(200 * time.Millisecond),
			Deadband:     0.01,
		},
		Network: NetworkConfig{
			CacheTTL: Duration(60 * time.Second),
		},
		Library: LibraryConfig{
			ShowAfter: Duration(3 * time.Second),
			Field:     "albumartist",
		},
		Progress: ProgressConfig{
			Step: 10,
		},
		Covers: CoversConfig{
			MusicDir:     "/var/lib/mpd/music",
			FallbackDirs: []string{"/mnt"},
			CacheSize:    32,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "nowplaying", "nowplayingd.toml"), nil
}

// LoadDaemonConfigFrom loads the daemon configuration from path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfigFrom(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.Covers.MusicDir = expandPath(config.Covers.MusicDir)
	config.Theme.Font = expandPath(config.Theme.Font)
	return config, nil
}

// SaveDaemonConfig writes the daemon configuration to path.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.MPD.Host == "" {
		return fmt.Errorf("mpd host must not be empty")
	}
	if c.MPD.Port < 1 || c.MPD.Port > 65535 {
		return fmt.Errorf("mpd port must be between 1 and 65535, got %d", c.MPD.Port)
	}
	if c.MPD.IdleTimeout <= 0 {
		return fmt.Errorf("mpd idle_timeout must be positive")
	}
	if c.MPD.ReconnectMax <= 0 {
		return fmt.Errorf("mpd reconnect_max must be positive")
	}

	if !slices.Contains(ValidDrivers(), Driver(c.Display.Driver)) {
		return fmt.Errorf("invalid display driver %q, must be one of: %v", c.Display.Driver, ValidDrivers())
	}
	if c.Display.Width < 1 || c.Display.Height < 1 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.RefreshInterval <= 0 {
		return fmt.Errorf("display refresh_interval must be positive")
	}
	if c.Display.PartialLimit < 1 {
		return fmt.Errorf("display partial_limit must be at least 1, got %d", c.Display.PartialLimit)
	}

	if c.Volume.Enabled {
		if c.Volume.MaxRaw <= 0 {
			return fmt.Errorf("volume max_raw must be positive")
		}
		if c.Volume.PollInterval <= 0 {
			return fmt.Errorf("volume poll_interval must be positive")
		}
	}
	if c.Volume.Deadband < 0 || c.Volume.Deadband >= 1 {
		return fmt.Errorf("volume deadband must be in [0, 1), got %v", c.Volume.Deadband)
	}

	if c.Network.CacheTTL < 0 {
		return fmt.Errorf("network cache_ttl must not be negative")
	}
	if c.Library.ShowAfter < 0 {
		return fmt.Errorf("library show_after must not be negative")
	}
	if strings.TrimSpace(c.Library.Field) == "" {
		return fmt.Errorf("library field must not be empty")
	}
	if c.Progress.Step < 1 || c.Progress.Step > 100 {
		return fmt.Errorf("progress step must be between 1 and 100, got %d", c.Progress.Step)
	}
	if c.Covers.CacheSize < 0 {
		return fmt.Errorf("covers cache_size must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
