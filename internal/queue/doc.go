// Package queue provides a single-worker FIFO task executor.
// Every resource that must not be touched concurrently (the display surface,
// each MPD connection) is owned by exactly one Queue and only mutated from
// tasks submitted to it.
package queue
