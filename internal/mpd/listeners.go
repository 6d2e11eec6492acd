package mpd

import (
	"slices"
	"sync"
)

// MixerListener is told when the volume changes.
type MixerListener interface {
	OnMixerChanged(state MixerState)
}

// PlayerListener is told when the player state or current song changes.
type PlayerListener interface {
	OnPlayerChanged(state PlayerState)
}

// listenerSet is a set of listeners that may be modified while a
// notification is being delivered. Each notification goes to the members
// present when it started.
type listenerSet[T comparable] struct {
	mu      sync.RWMutex
	members []T
}

func (s *listenerSet[T]) add(l T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.members, l) {
		return
	}
	s.members = append(s.members, l)
}

func (s *listenerSet[T]) remove(l T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = slices.DeleteFunc(s.members, func(m T) bool { return m == l })
}

func (s *listenerSet[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

func (s *listenerSet[T]) each(fn func(T)) {
	s.mu.RLock()
	members := slices.Clone(s.members)
	s.mu.RUnlock()

	for _, m := range members {
		fn(m)
	}
}
