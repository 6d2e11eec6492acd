// Package theme handles colour and font themes for the display.
// It supports loading themes from ~/.config/nowplaying/themes/ and provides
// embedded themes for use when no custom theme is configured.
package theme
