// Package display provides the transports that put rendered windows on a
// screen: the Linux framebuffer of the attached panel, a PNG file for
// debugging and snapshots, and an in-memory surface for the terminal
// preview.
package display
