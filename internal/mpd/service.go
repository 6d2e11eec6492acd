package mpd

import (
	"fmt"
	"log/slog"

	gompd "github.com/fhs/gompd/v2/mpd"

	"github.com/jmylchreest/nowplaying/internal/queue"
)

// Service issues ordinary MPD commands. The client connection is owned by
// the service's queue; it is (re)opened lazily and dropped after a failed
// command so the next one reconnects.
type Service struct {
	addr     string
	password string
	queue    *queue.Queue
	logger   *slog.Logger

	// client is only touched from the service queue.
	client *gompd.Client
}

// NewService creates a service for the daemon at addr.
func NewService(addr, password string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		addr:     addr,
		password: password,
		queue:    queue.New("mpd-service", logger),
		logger:   logger.With("component", "mpd-service"),
	}
}

// Connect opens the command connection, waiting for the result.
func (s *Service) Connect() error {
	return s.run(func(*gompd.Client) error { return nil })
}

// Disconnect closes the command connection.
func (s *Service) Disconnect() {
	_ = s.queue.SubmitSync(s.disconnect)
}

// Close disconnects and stops the service queue.
func (s *Service) Close() {
	s.Disconnect()
	s.queue.Close()
}

// SetVolume sets the volume without waiting for the result.
func (s *Service) SetVolume(percent int) {
	percent = min(max(percent, 0), 100)
	s.async("setvol", func(c *gompd.Client) error {
		return c.SetVolume(percent)
	})
}

// TogglePause pauses when playing and resumes otherwise.
func (s *Service) TogglePause() {
	s.async("pause", func(c *gompd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return err
		}
		if PlayState(attrs["state"]) == StateStop {
			return c.Play(-1)
		}
		return c.Pause(PlayState(attrs["state"]) == StatePlay)
	})
}

// Next skips to the next track.
func (s *Service) Next() {
	s.async("next", func(c *gompd.Client) error { return c.Next() })
}

// Previous goes back to the previous track.
func (s *Service) Previous() {
	s.async("previous", func(c *gompd.Client) error { return c.Previous() })
}

// List fetches the distinct values of a tag and hands them to done on the
// service queue.
func (s *Service) List(field string, done func(values []string, err error)) {
	err := s.queue.SubmitAsync(func() {
		var values []string
		err := s.do(func(c *gompd.Client) error {
			var err error
			values, err = c.List(field)
			return err
		})
		if err != nil {
			err = fmt.Errorf("failed to list %s: %w", field, err)
		}
		done(values, err)
	})
	if err != nil {
		done(nil, err)
	}
}

// Status returns the current status, waiting for the result.
func (s *Service) Status() (Status, error) {
	var st Status
	err := s.run(func(c *gompd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return err
		}
		st = ParseStatus(attrs)
		return nil
	})
	return st, err
}

// CurrentSong returns the current song, waiting for the result.
func (s *Service) CurrentSong() (Song, bool, error) {
	var (
		song Song
		ok   bool
	)
	err := s.run(func(c *gompd.Client) error {
		attrs, err := c.CurrentSong()
		if err != nil {
			return err
		}
		if len(attrs) > 0 {
			song, ok = ParseSong(attrs), true
		}
		return nil
	})
	return song, ok, err
}

// Stats returns the raw "stats" response, waiting for the result.
func (s *Service) Stats() (map[string]string, error) {
	var stats map[string]string
	err := s.run(func(c *gompd.Client) error {
		attrs, err := c.Stats()
		stats = attrs
		return err
	})
	return stats, err
}

// run executes fn on the service queue and waits for it.
func (s *Service) run(fn func(*gompd.Client) error) error {
	var err error
	if qerr := s.queue.SubmitSync(func() { err = s.do(fn) }); qerr != nil {
		return qerr
	}
	return err
}

// async executes fn on the service queue and logs a failure.
func (s *Service) async(name string, fn func(*gompd.Client) error) {
	err := s.queue.SubmitAsync(func() {
		if err := s.do(fn); err != nil {
			s.logger.Warn("mpd command failed", "command", name, "error", err)
		}
	})
	if err != nil {
		s.logger.Warn("mpd command dropped", "command", name, "error", err)
	}
}

// do runs on the service queue.
func (s *Service) do(fn func(*gompd.Client) error) error {
	if s.client == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}

	err := fn(s.client)
	if err != nil && s.client.Ping() != nil {
		s.logger.Debug("dropping broken mpd connection", "error", err)
		s.disconnect()
	}
	return err
}

func (s *Service) connect() error {
	var (
		client *gompd.Client
		err    error
	)
	if s.password != "" {
		client, err = gompd.DialAuthenticated("tcp", s.addr, s.password)
	} else {
		client, err = gompd.Dial("tcp", s.addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w: %w", s.addr, ErrNotConnected, err)
	}

	s.client = client
	s.logger.Debug("connected to mpd", "addr", s.addr)
	return nil
}

func (s *Service) disconnect() {
	if s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		s.logger.Debug("error closing mpd connection", "error", err)
	}
	s.client = nil
}
