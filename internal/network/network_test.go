package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func counting(values ...string) (Lookup, *int) {
	calls := 0
	return func(context.Context) (string, error) {
		v := values[min(calls, len(values)-1)]
		calls++
		if v == "" {
			return "", errors.New("unavailable")
		}
		return v, nil
	}, &calls
}

func TestInfo_CachesForTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ip, ipCalls := counting("192.168.1.20", "192.168.1.21")
	ssid, ssidCalls := counting("home")

	info := New(Options{CacheTTL: time.Minute, IP: ip, SSID: ssid, Now: clock.now}, nil)

	assert.Equal(t, "192.168.1.20", info.IP())
	assert.Equal(t, "home", info.SSID())

	clock.advance(59 * time.Second)
	assert.Equal(t, "192.168.1.20", info.IP())
	assert.Equal(t, 1, *ipCalls)

	clock.advance(time.Second)
	assert.Equal(t, "192.168.1.21", info.IP())
	assert.Equal(t, 2, *ipCalls)
	assert.Equal(t, 1, *ssidCalls)
}

func TestInfo_Fallbacks(t *testing.T) {
	ip, _ := counting("")
	ssid, _ := counting("")

	info := New(Options{IP: ip, SSID: ssid}, nil)

	assert.Equal(t, FallbackIP, info.IP())
	assert.Equal(t, "", info.SSID())
}

func TestInfo_SetCacheTTLAndInvalidate(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ip, calls := counting("10.0.0.1", "10.0.0.2", "10.0.0.3")
	ssid, _ := counting("home")

	info := New(Options{CacheTTL: time.Hour, IP: ip, SSID: ssid, Now: clock.now}, nil)
	info.IP()

	info.SetCacheTTL(10 * time.Second)
	clock.advance(10 * time.Second)
	assert.Equal(t, "10.0.0.2", info.IP())

	info.Invalidate()
	assert.Equal(t, "10.0.0.3", info.IP())
	assert.Equal(t, 3, *calls)
}

func TestFirst(t *testing.T) {
	failing := func(context.Context) (string, error) { return "", errors.New("no bus") }
	empty := func(context.Context) (string, error) { return "", nil }
	ok := func(context.Context) (string, error) { return "cafe", nil }

	v, err := First(failing, empty, ok)(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "cafe", v)

	_, err = First(failing, empty)(context.Background())
	assert.ErrorContains(t, err, "no bus")
}
