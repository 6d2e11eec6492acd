package mpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNotConnected is returned when a command is issued without a connection.
var ErrNotConnected = errors.New("not connected to mpd")

// ProtocolError is an ACK response. The connection stays usable after one.
type ProtocolError struct {
	Code    int
	Command string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mpd error %d in %q: %s", e.Code, e.Command, e.Message)
}

// IsProtocolError reports whether err is an ACK from the server rather than
// a transport failure.
func IsProtocolError(err error) bool {
	var perr *ProtocolError
	return errors.As(err, &perr)
}

var ackPattern = regexp.MustCompile(`^ACK \[(\d+)@\d+\] \{([^}]*)\} ?(.*)$`)

func parseAck(line string) *ProtocolError {
	m := ackPattern.FindStringSubmatch(line)
	if m == nil {
		return &ProtocolError{Message: strings.TrimPrefix(line, "ACK ")}
	}
	code, _ := strconv.Atoi(m[1])
	return &ProtocolError{Code: code, Command: m[2], Message: m[3]}
}

// IdleConn is the connection the monitor parks in "idle".
type IdleConn interface {
	Status() (Status, error)
	SongByID(id string) (Song, bool, error)
	BeginIdle(subsystems ...string) error
	// WaitReady blocks until the server has written something or timeout
	// elapses. It reports false on timeout.
	WaitReady(timeout time.Duration) (bool, error)
	// FetchIdle reads the subsystem list that ends an idle.
	FetchIdle() ([]string, error)
	// CancelIdle sends "noidle". The reply must still be read with FetchIdle.
	CancelIdle() error
	Close() error
}

// Dialer opens an IdleConn.
type Dialer func(ctx context.Context) (IdleConn, error)

// Conn is a raw MPD protocol connection that supports the idle/noidle
// handshake.
type Conn struct {
	netConn net.Conn
	text    *textproto.Conn
	version string
}

// Dial connects to addr, reads the greeting and authenticates when a
// password is given.
func Dial(ctx context.Context, addr, password string, timeout time.Duration) (*Conn, error) {
	d := net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	c := &Conn{netConn: nc, text: textproto.NewConn(nc)}

	if timeout > 0 {
		_ = nc.SetReadDeadline(time.Now().Add(timeout))
	}
	greeting, err := c.text.ReadLine()
	_ = nc.SetReadDeadline(time.Time{})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to read greeting: %w", err)
	}
	version, ok := strings.CutPrefix(greeting, "OK MPD ")
	if !ok {
		_ = c.Close()
		return nil, fmt.Errorf("unexpected greeting %q", greeting)
	}
	c.version = version

	if password != "" {
		if _, err := c.command("password %s", quote(password)); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	return c, nil
}

// IdleDialer returns a Dialer for the monitor.
func IdleDialer(addr, password string, timeout time.Duration) Dialer {
	return func(ctx context.Context) (IdleConn, error) {
		return Dial(ctx, addr, password, timeout)
	}
}

// Version returns the protocol version from the greeting.
func (c *Conn) Version() string {
	return c.version
}

// Status runs "status".
func (c *Conn) Status() (Status, error) {
	attrs, err := c.command("status")
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(attrs), nil
}

// CurrentSong runs "currentsong".
func (c *Conn) CurrentSong() (Song, bool, error) {
	attrs, err := c.command("currentsong")
	if err != nil || len(attrs) == 0 {
		return Song{}, false, err
	}
	return ParseSong(attrs), true, nil
}

// SongByID runs "playlistid". An unknown id yields no song and no error.
func (c *Conn) SongByID(id string) (Song, bool, error) {
	if id == "" {
		return Song{}, false, nil
	}
	attrs, err := c.command("playlistid %s", quote(id))
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) && perr.Code == ackNoExist {
			return Song{}, false, nil
		}
		return Song{}, false, err
	}
	if len(attrs) == 0 {
		return Song{}, false, nil
	}
	return ParseSong(attrs), true, nil
}

// ackNoExist is MPD's ACK_ERROR_NO_EXIST.
const ackNoExist = 50

// BeginIdle sends "idle" for the given subsystems (all when empty).
func (c *Conn) BeginIdle(subsystems ...string) error {
	line := "idle"
	if len(subsystems) > 0 {
		line += " " + strings.Join(subsystems, " ")
	}
	if err := c.text.PrintfLine("%s", line); err != nil {
		return fmt.Errorf("failed to send idle: %w", err)
	}
	return nil
}

// WaitReady implements IdleConn.
func (c *Conn) WaitReady(timeout time.Duration) (bool, error) {
	if c.text.R.Buffered() > 0 {
		return true, nil
	}

	_ = c.netConn.SetReadDeadline(time.Now().Add(timeout))
	_, err := c.text.R.Peek(1)
	_ = c.netConn.SetReadDeadline(time.Time{})

	if err == nil {
		return true, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false, nil
	}
	return false, fmt.Errorf("failed waiting for idle: %w", err)
}

// FetchIdle implements IdleConn.
func (c *Conn) FetchIdle() ([]string, error) {
	var changed []string
	for {
		line, err := c.text.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("failed to read idle response: %w", err)
		}
		switch {
		case line == "OK":
			return changed, nil
		case strings.HasPrefix(line, "ACK "):
			return nil, parseAck(line)
		}
		if sub, ok := strings.CutPrefix(line, "changed: "); ok {
			changed = append(changed, sub)
		}
	}
}

// CancelIdle implements IdleConn.
func (c *Conn) CancelIdle() error {
	if err := c.text.PrintfLine("noidle"); err != nil {
		return fmt.Errorf("failed to send noidle: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.text.Close()
}

// command sends one command and collects the key/value pairs of its reply.
// Repeated keys keep the first value.
func (c *Conn) command(format string, args ...any) (map[string]string, error) {
	if err := c.text.PrintfLine(format, args...); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	attrs := make(map[string]string)
	for {
		line, err := c.text.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if line == "OK" {
			return attrs, nil
		}
		if strings.HasPrefix(line, "ACK ") {
			return nil, parseAck(line)
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if _, seen := attrs[key]; !seen {
			attrs[key] = value
		}
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
