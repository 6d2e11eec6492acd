package volume

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Defaults for an ADS1115 fed from 3.3V at the 4.096V gain setting.
const (
	DefaultMaxRaw       = 32767 * 3.3 / 4.096
	DefaultPollInterval = 200 * time.Millisecond
	DefaultDeadband     = 0.01
)

// Config configures a Monitor.
type Config struct {
	MaxRaw       float64
	PollInterval time.Duration
	// Deadband is the fraction of MaxRaw a reading must move before it is
	// reported.
	Deadband float64
}

// Monitor polls a Sensor and reports volume changes.
type Monitor struct {
	mu     sync.Mutex
	logger *slog.Logger

	sensor Sensor
	set    func(percent int)
	cfg    Config

	last     float64
	reported bool
	failing  bool

	cancel  context.CancelFunc
	stopped chan struct{}
	running bool
}

// NewMonitor creates a stopped monitor that calls set with each new volume.
func NewMonitor(sensor Sensor, set func(percent int), cfg Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRaw <= 0 {
		cfg.MaxRaw = DefaultMaxRaw
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Deadband < 0 {
		cfg.Deadband = DefaultDeadband
	}

	return &Monitor{
		logger: logger.With("component", "volume"),
		sensor: sensor,
		set:    set,
		cfg:    cfg,
	}
}

// SetDeadband changes the deadband of a running monitor.
func (m *Monitor) SetDeadband(deadband float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if deadband >= 0 {
		m.cfg.Deadband = deadband
	}
}

// Start begins polling until ctx is done or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.stopped = make(chan struct{})
	m.running = true
	go m.loop(ctx, m.stopped)

	m.logger.Info("volume monitor started", "interval", m.cfg.PollInterval, "deadband", m.cfg.Deadband)
}

// Stop ends polling and waits for the loop to exit. Safe to call twice.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	stopped := m.stopped
	m.mu.Unlock()

	<-stopped
	m.logger.Debug("volume monitor stopped")
}

func (m *Monitor) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	m.Poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Poll takes one reading and reports it if it left the deadband. It
// returns whether a volume was reported.
func (m *Monitor) Poll() bool {
	raw, err := m.sensor.Read()

	m.mu.Lock()
	if err != nil {
		if !m.failing {
			m.logger.Warn("failed to read volume knob", "error", err)
		}
		m.failing = true
		m.mu.Unlock()
		return false
	}
	if m.failing {
		m.logger.Info("volume knob readable again")
		m.failing = false
	}

	if m.reported && math.Abs(raw-m.last) < m.cfg.Deadband*m.cfg.MaxRaw {
		m.mu.Unlock()
		return false
	}
	m.last, m.reported = raw, true
	percent := Percent(raw, m.cfg.MaxRaw)
	m.mu.Unlock()

	m.logger.Debug("volume knob moved", "raw", raw, "percent", percent)
	m.set(percent)
	return true
}

// Percent converts a raw reading to a volume in [0, 100].
func Percent(raw, maxRaw float64) int {
	if maxRaw <= 0 {
		return 0
	}
	p := math.RoundToEven(raw / maxRaw * 100)
	return int(min(max(p, 0), 100))
}
