package dbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSSID(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("home-wifi"), "home-wifi"},
		{"padded", []byte("cafe\x00\x00"), "cafe"},
		{"utf8", []byte("café"), "café"},
		{"invalid", []byte{'a', 0xff, 'b'}, "a�b"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeSSID(tt.raw))
		})
	}
}

func TestActiveConnection_Wireless(t *testing.T) {
	assert.True(t, ActiveConnection{Type: "802-11-wireless"}.Wireless())
	assert.False(t, ActiveConnection{Type: "802-3-ethernet"}.Wireless())
}
