// Package screens holds the windows shown on the panel and the controllers
// that keep them current.
//
// Every widget mutation runs on the render queue. Listener callbacks from
// the MPD monitor arrive on the monitor's queue and hand their state to the
// render queue through the navigator.
package screens
