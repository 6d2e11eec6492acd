// Package cover finds and decodes album art stored next to music files.
//
// A track's cover is the first regular file named "cover.*" in the track's
// directory. The track path is tried as given and then under each
// configured root, so both absolute paths and paths relative to the music
// directory resolve.
package cover
