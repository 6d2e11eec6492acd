package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/nowplaying/internal/mpd"
)

func testReport() Report {
	return NewReport(
		mpd.Status{
			Volume:        70,
			State:         mpd.StatePlay,
			SongID:        "3",
			Elapsed:       65,
			ElapsedKnown:  true,
			Duration:      260,
			DurationKnown: true,
		},
		mpd.Song{ID: "3", Path: "a/b.flac", Artist: "Artist", Title: "Title", Album: "Album", Date: "1999"},
		true,
	)
}

func TestNewReport(t *testing.T) {
	r := testReport()

	assert.Equal(t, "play", r.State)
	assert.Equal(t, "playing", r.StateName)
	assert.Equal(t, 25, r.Progress)
	assert.Equal(t, "a/b.flac", r.File)

	stopped := NewReport(mpd.Status{Volume: -1, State: mpd.StateStop}, mpd.Song{}, false)
	assert.Equal(t, 0, stopped.Progress)
	assert.Empty(t, stopped.Title)
	assert.Equal(t, -1, stopped.Volume)
}

func TestPlainFormatter_Default(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testReport()))
	assert.Equal(t, "playing: Artist - Title [1:05/4:20] volume 70%\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{Template: "{{truncate .Title 4}}|{{.Album}}"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testReport()))
	assert.Equal(t, "T...|Album", buf.String())
}

func TestPlainFormatter_InvalidTemplate(t *testing.T) {
	_, err := NewPlainFormatter(FormatterOptions{Template: "{{.Title"})
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, testReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "play", decoded["state"])
	assert.Equal(t, "Title", decoded["title"])
	assert.NotContains(t, decoded, "StateName")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Artist", decoded["artist"])
	assert.Equal(t, 70, decoded["volume"])
}

func TestNewFormatter(t *testing.T) {
	for _, format := range ValidFormats() {
		f, err := NewFormatter(format, FormatterOptions{})
		require.NoError(t, err)
		assert.NotNil(t, f)
	}
}
