// Package dbus queries NetworkManager over the system bus.
package dbus
