// Package ui implements the retained widget tree rendered onto a fixed-size
// raster surface.
//
// A Window owns the surface, its root widgets and the set of frames that were
// repainted since the last display pass. Drawing only repaints widgets whose
// content changed; displaying pushes either the whole surface or the cropped
// dirty frames to a Transport.
package ui
