package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/nowplaying/internal/dbus"
)

// DefaultCacheTTL is how long a looked-up value is reused.
const DefaultCacheTTL = 60 * time.Second

// FallbackIP is reported when no outbound address can be determined.
const FallbackIP = "127.0.0.1"

// probeAddr is never contacted; dialing UDP only selects a route.
const probeAddr = "10.255.255.255:1"

const lookupTimeout = 2 * time.Second

// Lookup returns one value or an error.
type Lookup func(ctx context.Context) (string, error)

// Options configures an Info.
type Options struct {
	CacheTTL  time.Duration
	Interface string

	// IP and SSID replace the default lookups.
	IP   Lookup
	SSID Lookup

	Now func() time.Time
}

// Info serves the IP address and SSID, each cached for the TTL.
type Info struct {
	ip     cached
	ssid   cached
	logger *slog.Logger
}

type cached struct {
	name     string
	lookup   Lookup
	fallback string
	now      func() time.Time

	mu      sync.Mutex
	ttl     time.Duration
	value   string
	fetched time.Time
	valid   bool
}

// New creates an Info.
func New(opts Options, logger *slog.Logger) *Info {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IP == nil {
		opts.IP = LocalIP
	}
	if opts.SSID == nil {
		opts.SSID = First(NetworkManagerSSID(logger), IwgetidSSID(opts.Interface))
	}

	return &Info{
		ip: cached{
			name:     "ip",
			lookup:   opts.IP,
			fallback: FallbackIP,
			now:      opts.Now,
			ttl:      opts.CacheTTL,
		},
		ssid: cached{
			name:   "ssid",
			lookup: opts.SSID,
			now:    opts.Now,
			ttl:    opts.CacheTTL,
		},
		logger: logger.With("component", "network"),
	}
}

// IP returns the outbound IPv4 address, or FallbackIP.
func (i *Info) IP() string {
	return i.ip.get(i.logger)
}

// SSID returns the connected Wi-Fi network name, or "".
func (i *Info) SSID() string {
	return i.ssid.get(i.logger)
}

// SetCacheTTL changes the TTL. Cached values are kept.
func (i *Info) SetCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	i.ip.setTTL(ttl)
	i.ssid.setTTL(ttl)
}

// Invalidate forces the next call to look both values up again.
func (i *Info) Invalidate() {
	i.ip.invalidate()
	i.ssid.invalidate()
}

func (c *cached) get(logger *slog.Logger) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.valid && now.Sub(c.fetched) < c.ttl {
		return c.value
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	value, err := c.lookup(ctx)
	if err != nil || value == "" {
		logger.Debug("lookup failed", "value", c.name, "error", err)
		value = c.fallback
	}
	c.value, c.fetched, c.valid = value, now, true
	return value
}

func (c *cached) setTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

func (c *cached) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// LocalIP returns the source address the kernel picks for an outbound
// route.
func LocalIP(ctx context.Context) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", probeAddr)
	if err != nil {
		return "", fmt.Errorf("failed to resolve outbound address: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.IsUnspecified() {
		return "", errors.New("no outbound address")
	}
	return addr.IP.String(), nil
}

// NetworkManagerSSID looks the SSID up over the system bus.
func NetworkManagerSSID(logger *slog.Logger) Lookup {
	return func(context.Context) (string, error) {
		nm, err := dbus.ConnectNetworkManager(logger)
		if err != nil {
			return "", err
		}
		defer nm.Close()
		return nm.WirelessSSID()
	}
}

// IwgetidSSID runs "iwgetid -r", restricted to iface when set.
func IwgetidSSID(iface string) Lookup {
	return func(ctx context.Context) (string, error) {
		args := []string{"-r"}
		if iface != "" {
			args = append([]string{iface}, args...)
		}
		out, err := exec.CommandContext(ctx, "iwgetid", args...).Output()
		if err != nil {
			return "", fmt.Errorf("iwgetid failed: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}
}

// First returns the first non-empty result of lookups.
func First(lookups ...Lookup) Lookup {
	return func(ctx context.Context) (string, error) {
		var errs []error
		for _, l := range lookups {
			v, err := l(ctx)
			if err == nil && v != "" {
				return v, nil
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
		return "", errors.Join(errs...)
	}
}
