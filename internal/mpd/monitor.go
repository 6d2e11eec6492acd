package mpd

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jmylchreest/nowplaying/internal/queue"
)

// Default monitor timings.
const (
	DefaultIdleTimeout  = time.Second
	DefaultReconnectMax = 30 * time.Second
)

var errStopped = errors.New("monitor stopped")

// idleSubsystems are the subsystems the monitor waits on.
var idleSubsystems = []string{"player", "mixer"}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// IdleTimeout bounds each wait for a change so Stop is observed promptly.
	IdleTimeout time.Duration
	// ReconnectMax caps the delay between reconnection attempts.
	ReconnectMax time.Duration
}

// Monitor keeps a connection in "idle" and publishes snapshots of the
// daemon's state to listeners. The watch loop runs on the monitor's own
// queue, which also owns the connection.
type Monitor struct {
	dial   Dialer
	cfg    MonitorConfig
	queue  *queue.Queue
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// watchCtx is cancelled by Stop so a reconnect backoff ends at once.
	watchMu     sync.Mutex
	watchCtx    context.Context
	watchCancel context.CancelFunc

	mixerListeners  listenerSet[MixerListener]
	playerListeners listenerSet[PlayerListener]

	snapshot atomic.Pointer[Snapshot]
	stop     atomic.Bool
	running  atomic.Bool

	// conn is only touched from the monitor queue.
	conn IdleConn
}

// NewMonitor creates a stopped monitor.
func NewMonitor(dial Dialer, cfg MonitorConfig, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = DefaultReconnectMax
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		dial:   dial,
		cfg:    cfg,
		queue:  queue.New("mpd-monitor", logger),
		logger: logger.With("component", "mpd-monitor"),
		ctx:    ctx,
		cancel: cancel,
	}
	m.queue.SetFailureHandler(func(err error) {
		m.running.Store(false)
		m.logger.Error("watch loop failed", "error", err)
	})
	return m
}

// AddMixerListener registers l for volume changes.
func (m *Monitor) AddMixerListener(l MixerListener) {
	m.mixerListeners.add(l)
}

// RemoveMixerListener unregisters l.
func (m *Monitor) RemoveMixerListener(l MixerListener) {
	m.mixerListeners.remove(l)
}

// AddPlayerListener registers l for player changes.
func (m *Monitor) AddPlayerListener(l PlayerListener) {
	m.playerListeners.add(l)
}

// RemovePlayerListener unregisters l.
func (m *Monitor) RemovePlayerListener(l PlayerListener) {
	m.playerListeners.remove(l)
}

// Snapshot returns the latest published snapshot and whether one exists.
func (m *Monitor) Snapshot() (Snapshot, bool) {
	s := m.snapshot.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// Running reports whether the watch loop is active.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Start begins watching if the monitor is not already doing so.
func (m *Monitor) Start() {
	m.watchMu.Lock()
	m.stop.Store(false)
	if m.watchCtx == nil || m.watchCtx.Err() != nil {
		m.watchCtx, m.watchCancel = context.WithCancel(m.ctx)
	}
	m.watchMu.Unlock()

	if m.running.Swap(true) {
		return
	}
	if err := m.queue.SubmitAsync(m.watch); err != nil {
		m.running.Store(false)
		m.logger.Warn("failed to start monitor", "error", err)
		return
	}
	m.logger.Debug("monitor started")
}

// Stop asks the watch loop to leave idle. It returns immediately; the loop
// notices within one idle timeout, or at once while reconnecting.
func (m *Monitor) Stop() {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	m.stop.Store(true)
	if m.watchCancel != nil {
		m.watchCancel()
	}
}

// watchContext returns the context of the current watch.
func (m *Monitor) watchContext() context.Context {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watchCtx == nil {
		return m.ctx
	}
	return m.watchCtx
}

// Close stops the monitor, waits for the loop to exit and closes the
// connection.
func (m *Monitor) Close() {
	m.stop.Store(true)
	m.cancel()
	_ = m.queue.SubmitSync(func() {
		if m.conn != nil {
			_ = m.conn.Close()
			m.conn = nil
		}
	})
	m.queue.Close()
}

// watch runs on the monitor queue until stopped.
func (m *Monitor) watch() {
	for {
		m.watchOnce()
		m.running.Store(false)
		// A Start that raced with the exit must not be lost.
		if m.stop.Load() || !m.running.CompareAndSwap(false, true) {
			m.logger.Debug("monitor stopped")
			return
		}
	}
}

func (m *Monitor) watchOnce() {
	for !m.stop.Load() {
		if m.conn == nil && !m.connect() {
			return
		}

		err := m.sync()
		for err == nil && !m.stop.Load() {
			err = m.idle()
		}

		if err != nil {
			m.logger.Warn("lost mpd connection", "error", err)
			_ = m.conn.Close()
			m.conn = nil
		}
	}
}

// connect dials with exponential backoff until it succeeds, the monitor is
// stopped or closed.
func (m *Monitor) connect() bool {
	ctx := m.watchContext()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(500*time.Millisecond, m.cfg.ReconnectMax)
	b.MaxInterval = m.cfg.ReconnectMax
	b.MaxElapsedTime = 0

	op := func() error {
		if m.stop.Load() {
			return backoff.Permanent(errStopped)
		}
		conn, err := m.dial(ctx)
		if err != nil {
			return err
		}
		m.conn = conn
		return nil
	}
	notify := func(err error, next time.Duration) {
		m.logger.Warn("failed to connect to mpd", "error", err, "retry_in", next)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return false
	}
	m.logger.Info("connected to mpd")
	return true
}

// sync takes a fresh snapshot and notifies whichever listener sets saw a
// change. Protocol errors leave the previous snapshot in place.
func (m *Monitor) sync() error {
	status, err := m.conn.Status()
	if err != nil {
		return m.protocolOnly(err, "status")
	}
	song, hasSong, err := m.conn.SongByID(status.SongID)
	if err != nil {
		return m.protocolOnly(err, "playlistid")
	}

	next := &Snapshot{Status: status, Song: song, HasSong: hasSong}
	prev := m.snapshot.Swap(next)
	if prev == nil || prev.Mixer() != next.Mixer() {
		m.notifyMixer(next.Mixer())
	}
	if prev == nil || prev.Player() != next.Player() {
		m.notifyPlayer(next.Player())
	}
	return nil
}

// idle performs one idle round trip.
func (m *Monitor) idle() error {
	if err := m.conn.BeginIdle(idleSubsystems...); err != nil {
		return err
	}

	for {
		ready, err := m.conn.WaitReady(m.cfg.IdleTimeout)
		if err != nil {
			return err
		}
		if ready {
			break
		}
		if m.stop.Load() {
			if err := m.conn.CancelIdle(); err != nil {
				return err
			}
			break
		}
	}

	events, err := m.conn.FetchIdle()
	if err != nil {
		return m.protocolOnly(err, "idle")
	}
	if len(events) == 0 {
		return nil
	}
	return m.handleEvents(events)
}

// handleEvents refreshes the snapshot after an idle reported changes.
func (m *Monitor) handleEvents(events []string) error {
	m.logger.Debug("mpd changed", "subsystems", events)

	status, err := m.conn.Status()
	if err != nil {
		return m.protocolOnly(err, "status")
	}

	prev := m.snapshot.Load()
	if prev == nil {
		prev = &Snapshot{}
	}
	next := &Snapshot{Status: status, Song: prev.Song, HasSong: prev.HasSong}

	var mixerChanged, playerChanged bool
	for _, ev := range events {
		switch ev {
		case "mixer":
			mixerChanged = true
		case "player":
			song, hasSong, err := m.conn.SongByID(status.SongID)
			if err != nil {
				if err := m.protocolOnly(err, "playlistid"); err != nil {
					return err
				}
				continue
			}
			next.Song, next.HasSong = song, hasSong
			playerChanged = true
		}
	}

	m.snapshot.Store(next)

	if mixerChanged && next.Mixer() != prev.Mixer() {
		m.notifyMixer(next.Mixer())
	}
	if playerChanged && next.Player() != prev.Player() {
		m.notifyPlayer(next.Player())
	}
	return nil
}

// protocolOnly logs and swallows ACK errors; anything else is returned so
// the caller reconnects.
func (m *Monitor) protocolOnly(err error, command string) error {
	if IsProtocolError(err) {
		m.logger.Warn("mpd command failed", "command", command, "error", err)
		return nil
	}
	return err
}

func (m *Monitor) notifyMixer(state MixerState) {
	m.logger.Debug("notifying mixer listeners", "volume", state.Volume, "listeners", m.mixerListeners.len())
	m.mixerListeners.each(func(l MixerListener) {
		l.OnMixerChanged(state)
	})
}

func (m *Monitor) notifyPlayer(state PlayerState) {
	m.logger.Debug("notifying player listeners", "state", state.State, "listeners", m.playerListeners.len())
	m.playerListeners.each(func(l PlayerListener) {
		l.OnPlayerChanged(state)
	})
}
