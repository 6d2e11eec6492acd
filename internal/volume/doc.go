// Package volume turns a potentiometer read through an ADC into MPD volume
// changes.
package volume
