package output

import (
	"math"

	"github.com/jmylchreest/nowplaying/internal/mpd"
)

// Report is the printable view of the player.
type Report struct {
	State     string  `json:"state" yaml:"state"`
	StateName string  `json:"-" yaml:"-"`
	Volume    int     `json:"volume" yaml:"volume"`
	Elapsed   float64 `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Duration  float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Progress  int     `json:"progress" yaml:"progress"`

	File        string `json:"file,omitempty" yaml:"file,omitempty"`
	Artist      string `json:"artist,omitempty" yaml:"artist,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty" yaml:"album_artist,omitempty"`
	Album       string `json:"album,omitempty" yaml:"album,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
}

// NewReport builds a report from a status and the current song.
func NewReport(st mpd.Status, song mpd.Song, hasSong bool) Report {
	r := Report{
		State:     string(st.State),
		StateName: st.State.String(),
		Volume:    st.Volume,
	}
	if st.ElapsedKnown {
		r.Elapsed = st.Elapsed
	}
	if st.DurationKnown {
		r.Duration = st.Duration
	}
	if st.ElapsedKnown && st.DurationKnown && st.Duration > 0 {
		r.Progress = int(math.Round(min(st.Elapsed/st.Duration, 1) * 100))
	}

	if hasSong {
		r.File = song.Path
		r.Artist = song.Artist
		r.AlbumArtist = song.AlbumArtist
		r.Album = song.Album
		r.Title = song.Title
		r.Date = song.Date
		if !st.DurationKnown && song.Duration > 0 {
			r.Duration = song.Duration
		}
	}
	return r
}
