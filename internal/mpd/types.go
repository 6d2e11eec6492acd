package mpd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlayState is the player state reported by MPD.
type PlayState string

const (
	StateStop  PlayState = "stop"
	StatePlay  PlayState = "play"
	StatePause PlayState = "pause"
)

// String returns a human readable state.
func (s PlayState) String() string {
	switch s {
	case StatePlay:
		return "playing"
	case StatePause:
		return "paused"
	case StateStop:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the "status" response.
type Status struct {
	Volume int // -1 when MPD has no mixer
	State  PlayState
	SongID string // empty when nothing is queued

	Elapsed      float64 // seconds
	ElapsedKnown bool

	Duration      float64 // seconds
	DurationKnown bool
}

// Song is a snapshot of the current track.
type Song struct {
	ID          string
	Path        string
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	Date        string
	Duration    float64
}

// AlbumLine formats the album as "Album (Date)", or just the album when the
// date is unknown.
func (s Song) AlbumLine() string {
	if s.Album == "" {
		return ""
	}
	if s.Date == "" {
		return s.Album
	}
	return fmt.Sprintf("%s (%s)", s.Album, s.Date)
}

// Clock formats seconds as m:ss, or h:mm:ss for an hour or more.
func Clock(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// MixerState is what mixer listeners are told about.
type MixerState struct {
	Volume int
}

// PlayerState is what player listeners are told about.
type PlayerState struct {
	State PlayState

	Elapsed       float64
	ElapsedKnown  bool
	Duration      float64
	DurationKnown bool

	Song    Song
	HasSong bool
}

// Snapshot is the monitor's complete view of the daemon. Snapshots are
// values and never modified once published.
type Snapshot struct {
	Status  Status
	Song    Song
	HasSong bool
}

// Mixer returns the mixer part of the snapshot. Mixer and Player split the
// snapshot per listener set on purpose: each set is notified only when its
// own part changed.
func (s Snapshot) Mixer() MixerState {
	return MixerState{Volume: s.Status.Volume}
}

// Player returns the player part of the snapshot.
func (s Snapshot) Player() PlayerState {
	return PlayerState{
		State:         s.Status.State,
		Elapsed:       s.Status.Elapsed,
		ElapsedKnown:  s.Status.ElapsedKnown,
		Duration:      s.Status.Duration,
		DurationKnown: s.Status.DurationKnown,
		Song:          s.Song,
		HasSong:       s.HasSong,
	}
}

// ParseStatus builds a Status from the key/value pairs of a "status"
// response. Unknown or malformed fields are left at their zero value.
func ParseStatus(attrs map[string]string) Status {
	st := Status{
		Volume: -1,
		State:  PlayState(attrs["state"]),
		SongID: attrs["songid"],
	}
	if st.State == "" {
		st.State = StateStop
	}

	if v, err := strconv.Atoi(attrs["volume"]); err == nil {
		st.Volume = v
	}

	if v, err := strconv.ParseFloat(attrs["elapsed"], 64); err == nil {
		st.Elapsed, st.ElapsedKnown = v, true
	}
	if v, err := strconv.ParseFloat(attrs["duration"], 64); err == nil {
		st.Duration, st.DurationKnown = v, true
	}

	// Older servers only report "time: elapsed:total" in whole seconds.
	if elapsed, total, ok := strings.Cut(attrs["time"], ":"); ok {
		if v, err := strconv.ParseFloat(elapsed, 64); err == nil && !st.ElapsedKnown {
			st.Elapsed, st.ElapsedKnown = v, true
		}
		if v, err := strconv.ParseFloat(total, 64); err == nil && !st.DurationKnown && v > 0 {
			st.Duration, st.DurationKnown = v, true
		}
	}

	return st
}

// ParseSong builds a Song from the key/value pairs of a "currentsong" or
// "playlistid" response.
func ParseSong(attrs map[string]string) Song {
	song := Song{
		ID:          attrs["Id"],
		Path:        attrs["file"],
		Artist:      attrs["Artist"],
		AlbumArtist: attrs["AlbumArtist"],
		Album:       attrs["Album"],
		Title:       attrs["Title"],
		Date:        attrs["Date"],
	}

	if v, err := strconv.ParseFloat(attrs["duration"], 64); err == nil {
		song.Duration = v
	} else if v, err := strconv.ParseFloat(attrs["Time"], 64); err == nil {
		song.Duration = v
	}

	return song
}
