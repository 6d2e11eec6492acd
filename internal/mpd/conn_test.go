package mpd

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers a handful of MPD commands on a loopback listener.
// Lines sent on changes are written as the reply to a pending idle.
type fakeServer struct {
	ln      net.Listener
	changes chan []string
}

func startFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{ln: ln, changes: make(chan []string, 4)}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) addr() string {
	return s.ln.Addr().String()
}

func (s *fakeServer) serve() {
	nc, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer nc.Close()

	w := bufio.NewWriter(nc)
	reply := func(lines ...string) {
		for _, l := range lines {
			_, _ = w.WriteString(l + "\n")
		}
		_ = w.Flush()
	}

	reply("OK MPD 0.23.5")
	lines := make(chan string)
	go func() {
		defer close(lines)
		r := bufio.NewScanner(nc)
		for r.Scan() {
			lines <- r.Text()
		}
	}()

	for line := range lines {
		switch {
		case line == "status":
			reply("volume: 65", "state: play", "songid: 4", "elapsed: 12.500", "duration: 240.000", "OK")
		case line == `playlistid "4"`:
			reply("file: Artist/Album/01.flac", "Title: First", "Artist: Artist", "Album: Album", "Date: 2001", "Id: 4", "OK")
		case strings.HasPrefix(line, "playlistid"):
			reply("ACK [50@0] {playlistid} No such song")
		case strings.HasPrefix(line, "idle"):
			select {
			case changed := <-s.changes:
				for _, c := range changed {
					reply("changed: " + c)
				}
				reply("OK")
			case next, ok := <-lines:
				if !ok {
					return
				}
				if next == "noidle" {
					reply("OK")
				}
			}
		default:
			reply("ACK [5@0] {" + line + "} unknown command")
		}
	}
}

func dialFake(t *testing.T, s *fakeServer) *Conn {
	t.Helper()
	c, err := Dial(context.Background(), s.addr(), "", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConn_StatusAndSong(t *testing.T) {
	s := startFakeServer(t)
	c := dialFake(t, s)
	assert.Equal(t, "0.23.5", c.Version())

	st, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{
		Volume:        65,
		State:         StatePlay,
		SongID:        "4",
		Elapsed:       12.5,
		ElapsedKnown:  true,
		Duration:      240,
		DurationKnown: true,
	}, st)

	song, ok, err := c.SongByID("4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "First", song.Title)
	assert.Equal(t, "Artist/Album/01.flac", song.Path)
	assert.Equal(t, "Album (2001)", song.AlbumLine())

	_, ok, err = c.SongByID("99")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConn_IdleRoundTrip(t *testing.T) {
	s := startFakeServer(t)
	c := dialFake(t, s)

	require.NoError(t, c.BeginIdle("player", "mixer"))
	ready, err := c.WaitReady(20 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ready)

	s.changes <- []string{"mixer", "player"}
	ready, err = c.WaitReady(time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	events, err := c.FetchIdle()
	require.NoError(t, err)
	assert.Equal(t, []string{"mixer", "player"}, events)

	// The connection is usable for commands afterwards.
	_, err = c.Status()
	require.NoError(t, err)
}

func TestConn_CancelIdle(t *testing.T) {
	s := startFakeServer(t)
	c := dialFake(t, s)

	require.NoError(t, c.BeginIdle())
	ready, err := c.WaitReady(20 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)

	require.NoError(t, c.CancelIdle())
	events, err := c.FetchIdle()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestConn_ProtocolError(t *testing.T) {
	s := startFakeServer(t)
	c := dialFake(t, s)

	_, err := c.command("bogus")
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 5, perr.Code)
	assert.Equal(t, "bogus", perr.Command)
}

func TestParseStatus_LegacyTime(t *testing.T) {
	st := ParseStatus(map[string]string{"state": "pause", "time": "30:200"})

	assert.Equal(t, StatePause, st.State)
	assert.Equal(t, -1, st.Volume)
	assert.True(t, st.ElapsedKnown)
	assert.Equal(t, 30.0, st.Elapsed)
	assert.True(t, st.DurationKnown)
	assert.Equal(t, 200.0, st.Duration)
}

func TestParseStatus_Empty(t *testing.T) {
	st := ParseStatus(map[string]string{})

	assert.Equal(t, StateStop, st.State)
	assert.False(t, st.ElapsedKnown)
	assert.False(t, st.DurationKnown)
	assert.Equal(t, "stopped", st.State.String())
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{61, "1:01"},
		{3725, "1:02:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clock(tt.in))
	}
}
