// Package mpd talks to the Music Player Daemon.
//
// Service runs ordinary commands (volume, library listing, transport
// control) through gompd on its own queue. Monitor keeps a second, dedicated
// connection parked in "idle" and turns the subsystem change notifications
// into MixerState and PlayerState snapshots delivered to registered
// listeners.
package mpd
