package theme

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Theme holds the colours and font used to draw the screens.
type Theme struct {
	Name       string
	Path       string // Full path to the theme file (empty for bundled themes)
	Font       string // Path to a TrueType font; empty uses the built-in bitmap font
	Background color.RGBA
	Foreground color.RGBA
	Main       color.RGBA
	Label      color.RGBA
	Volume     []color.RGBA
	ModTime    time.Time
	IsDefault  bool
}

type themeFile struct {
	Name   string `toml:"name"`
	Font   string `toml:"font"`
	Colors struct {
		Background string   `toml:"background"`
		Foreground string   `toml:"foreground"`
		Main       string   `toml:"main"`
		Label      string   `toml:"label"`
		Volume     []string `toml:"volume"`
	} `toml:"colors"`
}

// Parse decodes a theme file. Colours missing from data keep the default
// theme's values.
func Parse(name string, data []byte) (*Theme, error) {
	var tf themeFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}

	t := fallbackTheme()
	t.Name = name
	t.Font = tf.Font

	fields := []struct {
		value string
		dst   *color.RGBA
	}{
		{tf.Colors.Background, &t.Background},
		{tf.Colors.Foreground, &t.Foreground},
		{tf.Colors.Main, &t.Main},
		{tf.Colors.Label, &t.Label},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		c, err := ParseColor(f.value)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		*f.dst = c
	}

	if len(tf.Colors.Volume) > 0 {
		palette, err := ParsePalette(tf.Colors.Volume)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		t.Volume = palette
	}

	return t, nil
}

// NewTheme loads a theme file from disk.
func NewTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.ModTime = info.ModTime()
	return t, nil
}

// NewDefaultTheme returns the embedded default theme.
func NewDefaultTheme() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	t, err := Parse(DefaultThemeName, data)
	if err != nil {
		t = fallbackTheme()
	}
	t.IsDefault = true
	return t
}

// fallbackTheme is used when even the embedded default cannot be parsed.
func fallbackTheme() *Theme {
	return &Theme{
		Name:       DefaultThemeName,
		Background: color.RGBA{A: 0xff},
		Foreground: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Main:       color.RGBA{G: 0xff, A: 0xff},
		Label:      color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Volume: []color.RGBA{
			{G: 0xff, A: 0xff},
			{R: 0xff, G: 0xff, A: 0xff},
			{R: 0xff, A: 0xff},
		},
	}
}

// Overrides replaces individual theme values, typically from the daemon
// config. Empty fields are ignored.
type Overrides struct {
	Font   string
	Main   string
	Volume []string
}

// Apply returns a copy of t with o applied.
func (t *Theme) Apply(o Overrides) (*Theme, error) {
	out := *t
	out.Volume = append([]color.RGBA(nil), t.Volume...)

	if o.Font != "" {
		out.Font = o.Font
	}
	if o.Main != "" {
		c, err := ParseColor(o.Main)
		if err != nil {
			return nil, fmt.Errorf("main color: %w", err)
		}
		out.Main = c
	}
	if len(o.Volume) > 0 {
		palette, err := ParsePalette(o.Volume)
		if err != nil {
			return nil, fmt.Errorf("volume colors: %w", err)
		}
		out.Volume = palette
	}
	return &out, nil
}

// VolumePalette returns the volume colours as a palette for ui.VolumeBar.
func (t *Theme) VolumePalette() []color.Color {
	palette := make([]color.Color, len(t.Volume))
	for i, c := range t.Volume {
		palette[i] = c
	}
	return palette
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParsePalette parses a list of colours.
func ParsePalette(values []string) ([]color.RGBA, error) {
	palette := make([]color.RGBA, 0, len(values))
	for _, v := range values {
		c, err := ParseColor(v)
		if err != nil {
			return nil, err
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "nowplaying", "themes"), nil
}

// Load resolves a theme by name. User themes in dir take precedence over
// bundled ones so a bundled theme can be overridden; unknown names fall
// back to the default theme.
func Load(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			return NewTheme(name, path)
		}
	}

	if data, found := GetEmbeddedTheme(name); found {
		t, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		t.IsDefault = name == DefaultThemeName
		return t, nil
	}

	return nil, fmt.Errorf("theme %q not found", name)
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes in dir.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		seen[name] = true
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if seen[name] {
			continue
		}
		seen[name] = true
		themes = append(themes, ThemeInfo{
			Name: name,
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	return themes, nil
}
