// Package timer provides a single-slot, cancellable one-shot timer.
package timer

import (
	"sync"
	"time"
)

// Stopper is the handle returned by an AfterFunc implementation.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules fn to run after d. time.AfterFunc satisfies it once
// adapted with Real.
type AfterFunc func(d time.Duration, fn func()) Stopper

// Real is the AfterFunc backed by time.AfterFunc.
func Real(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}

// Slot holds at most one pending timer. Arming the slot cancels whatever
// was pending, and a timer that fires after being superseded is ignored.
type Slot struct {
	mu         sync.Mutex
	afterFunc  AfterFunc
	dispatch   func(func())
	pending    Stopper
	generation uint64
}

// NewSlot creates a slot. Fired callbacks are handed to dispatch, which lets
// callers run them on a specific queue; a nil dispatch runs them on the
// timer goroutine. A nil afterFunc uses Real.
func NewSlot(afterFunc AfterFunc, dispatch func(func())) *Slot {
	if afterFunc == nil {
		afterFunc = Real
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Slot{
		afterFunc: afterFunc,
		dispatch:  dispatch,
	}
}

// Arm cancels any pending timer and schedules fn after d.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	gen := s.generation
	s.pending = s.afterFunc(d, func() {
		s.dispatch(func() {
			if !s.claim(gen) {
				return
			}
			fn()
		})
	})
}

// Cancel stops the pending timer, if any. It is safe to call repeatedly.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Pending reports whether a timer is armed and has not fired yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Slot) cancelLocked() {
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// claim marks the timer of generation gen as fired. It returns false if the
// timer was cancelled or replaced in the meantime.
func (s *Slot) claim(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.pending == nil {
		return false
	}
	s.pending = nil
	return true
}
