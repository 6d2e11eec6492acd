package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/jmylchreest/nowplaying/internal/app"
	"github.com/jmylchreest/nowplaying/internal/config"
	"github.com/jmylchreest/nowplaying/internal/cover"
	"github.com/jmylchreest/nowplaying/internal/display"
	"github.com/jmylchreest/nowplaying/internal/mpd"
	"github.com/jmylchreest/nowplaying/internal/network"
	"github.com/jmylchreest/nowplaying/internal/screens"
	"github.com/jmylchreest/nowplaying/internal/theme"
	"github.com/jmylchreest/nowplaying/internal/volume"
)

// dialTimeout bounds connecting to MPD and reading its greeting.
const dialTimeout = 5 * time.Second

// Options customises a Daemon beyond its config.
type Options struct {
	// ConfigPath is watched for changes; empty disables hot reload.
	ConfigPath string
	// Level is adjusted when the log level changes on reload.
	Level *slog.LevelVar
	// Device replaces the display selected by the config. The caller keeps
	// ownership of it.
	Device display.Device
	// Network replaces the IP/SSID lookups.
	Network screens.Network
	// ThemesDir is searched for user themes before the bundled ones.
	ThemesDir string
}

// Daemon runs the now-playing screen: it owns the display, the MPD
// connections, the volume knob and the config watcher.
type Daemon struct {
	cfg    *config.DaemonConfig
	opts   Options
	logger *slog.Logger

	device     display.Device
	ownsDevice bool

	app     *app.App
	monitor *mpd.Monitor
	service *mpd.Service
	network *network.Info
	knob    *volume.Monitor
	watcher *ConfigWatcher
	playing *screens.Playing
}

// New builds a daemon from cfg. Nothing is started until Run.
func New(cfg *config.DaemonConfig, opts Options, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d := &Daemon{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		device: opts.Device,
	}

	if d.device == nil {
		device, err := display.Open(cfg.Display, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open display: %w", err)
		}
		d.device, d.ownsDevice = device, true
	}

	th, err := loadTheme(cfg.Theme, opts.ThemesDir, logger)
	if err != nil {
		d.closeDevice()
		return nil, err
	}

	covers, err := cover.NewResolver(append([]string{cfg.Covers.MusicDir}, cfg.Covers.FallbackDirs...), cfg.Covers.CacheSize, logger)
	if err != nil {
		d.closeDevice()
		return nil, err
	}

	d.app = app.New(cfg.Display.RefreshInterval.Duration(), logger)
	d.monitor = mpd.NewMonitor(
		mpd.IdleDialer(cfg.MPD.Addr(), cfg.MPD.Password, dialTimeout),
		mpd.MonitorConfig{
			IdleTimeout:  cfg.MPD.IdleTimeout.Duration(),
			ReconnectMax: cfg.MPD.ReconnectMax.Duration(),
		},
		logger,
	)
	d.service = mpd.NewService(cfg.MPD.Addr(), cfg.MPD.Password, logger)

	info := opts.Network
	if info == nil {
		d.network = network.New(network.Options{
			CacheTTL:  cfg.Network.CacheTTL.Duration(),
			Interface: cfg.Network.Interface,
		}, logger)
		info = d.network
	}

	if cfg.Volume.Enabled {
		d.knob = volume.NewMonitor(volume.NewIIOSensor(cfg.Volume.Device), d.service.SetVolume, volume.Config{
			MaxRaw:       cfg.Volume.MaxRaw,
			PollInterval: cfg.Volume.PollInterval.Duration(),
			Deadband:     cfg.Volume.Deadband,
		}, logger)
	}

	d.playing = screens.NewPlaying(d.app, screens.Env{
		Transport: d.device,
		Theme:     th,
		Fonts:     theme.NewFonts(th.Font, logger),
		Monitor:   d.monitor,
		Network:   info,
		Covers:    covers,
		Library:   d.service,
		Options: screens.Options{
			ProgressStep: cfg.Progress.Step,
			LibraryAfter: cfg.Library.ShowAfter.Duration(),
			LibraryField: cfg.Library.Field,
			PartialLimit: cfg.Display.PartialLimit,
		},
		Logger: logger,
	})

	return d, nil
}

// App returns the navigation app.
func (d *Daemon) App() *app.App {
	return d.app
}

// Service returns the MPD command service.
func (d *Daemon) Service() *mpd.Service {
	return d.service
}

// Run shows the playing screen and blocks until ctx is cancelled, then
// releases everything the daemon owns.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.close()

	if err := d.service.Connect(); err != nil {
		d.logger.Warn("mpd not reachable yet, commands will retry", "error", err)
	}
	d.monitor.Start()

	if d.knob != nil {
		d.knob.Start(ctx)
	}

	if d.opts.ConfigPath != "" {
		if err := d.startWatcher(); err != nil {
			d.logger.Warn("config hot reload disabled", "error", err)
		}
	}

	d.logger.Info("nowplayingd running",
		"mpd", d.cfg.MPD.Addr(),
		"display", d.cfg.Display.Driver,
		"size", fmt.Sprintf("%dx%d", d.device.Bounds().Dx(), d.device.Bounds().Dy()))

	return d.app.Run(ctx, d.playing)
}

func (d *Daemon) startWatcher() error {
	w, err := NewConfigWatcher(d.opts.ConfigPath, d.logger)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	w.SetReloadCallback(d.applyReload)
	w.SetErrorCallback(func(err error) {
		d.logger.Warn("keeping previous configuration", "error", err)
	})
	if err := w.Start(d.cfg); err != nil {
		_ = w.Stop()
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	d.watcher = w
	return nil
}

// applyReload applies the settings that can change at runtime. Everything
// else is logged as needing a restart.
func (d *Daemon) applyReload(next *config.DaemonConfig) {
	prev := d.cfg

	if next.Log.Level != prev.Log.Level && d.opts.Level != nil {
		if level, err := next.Log.SlogLevel(); err == nil {
			d.opts.Level.Set(level)
			d.logger.Info("log level changed", "level", level)
		}
	}
	if next.Volume.Deadband != prev.Volume.Deadband && d.knob != nil {
		d.knob.SetDeadband(next.Volume.Deadband)
		d.logger.Info("volume deadband changed", "deadband", next.Volume.Deadband)
	}
	if next.Network.CacheTTL != prev.Network.CacheTTL && d.network != nil {
		d.network.SetCacheTTL(next.Network.CacheTTL.Duration())
		d.logger.Info("network cache ttl changed", "ttl", next.Network.CacheTTL.Duration())
	}

	if restartNeeded(prev, next) {
		d.logger.Warn("configuration changed, restart nowplayingd to apply all changes")
	}
	d.cfg = next
}

// restartNeeded reports whether next differs from prev in a setting that
// is only read at startup.
func restartNeeded(prev, next *config.DaemonConfig) bool {
	a, b := *prev, *next
	a.Log, b.Log = config.LogConfig{}, config.LogConfig{}
	a.Volume.Deadband, b.Volume.Deadband = 0, 0
	a.Network.CacheTTL, b.Network.CacheTTL = 0, 0
	return !reflect.DeepEqual(a, b)
}

func (d *Daemon) close() {
	if d.knob != nil {
		d.knob.Stop()
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Debug("error stopping config watcher", "error", err)
		}
	}
	d.monitor.Close()
	d.service.Close()
	d.closeDevice()
	d.logger.Info("nowplayingd stopped")
}

func (d *Daemon) closeDevice() {
	if !d.ownsDevice {
		return
	}
	if err := d.device.Close(); err != nil {
		d.logger.Warn("error closing display", "error", err)
	}
}

// loadTheme resolves the configured theme and applies the colour
// overrides. An unknown theme falls back to the default one.
func loadTheme(cfg config.ThemeConfig, dir string, logger *slog.Logger) (*theme.Theme, error) {
	if dir == "" {
		if d, err := theme.ThemesDir(); err == nil {
			dir = d
		}
	}

	th, err := theme.Load(cfg.Name, dir)
	if err != nil {
		logger.Warn("failed to load theme, using default", "theme", cfg.Name, "error", err)
		th = theme.NewDefaultTheme()
	}

	th, err = th.Apply(theme.Overrides{
		Font:   cfg.Font,
		Main:   cfg.MainColor,
		Volume: cfg.VolumeColors,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid theme override: %w", err)
	}
	logger.Debug("theme loaded", "theme", th.Name, "font", th.Font)
	return th, nil
}
