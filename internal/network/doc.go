// Package network reports the device's address and Wi-Fi network for the
// now-playing header. Lookups are cached because the header redraws once a
// second.
package network
