// Package progress turns continuous playback position into coarse steps
// and schedules the next step exactly when it becomes true.
package progress

import (
	"log/slog"
	"math"
	"time"

	"github.com/jmylchreest/nowplaying/internal/timer"
)

// DefaultStep is the quantization step in percentage points.
const DefaultStep = 10

// Quantize returns the step mark for the given position and the number of
// seconds until the next mark. done is true when the mark is 100 and
// nothing further needs scheduling.
func Quantize(elapsed, duration float64, step int) (mark int, interval float64, done bool) {
	if step <= 0 {
		step = DefaultStep
	}
	exact := elapsed / duration * 100
	mark = int(math.RoundToEven(exact/float64(step))) * step
	mark = min(max(mark, 0), 100)
	if mark >= 100 {
		return 100, 0, true
	}
	interval = duration*float64(mark+step)/100 - elapsed
	return mark, interval, false
}

// Scheduler sets a progress value in quantized steps. It holds at most one
// pending timer; every Update cancels the previous one.
type Scheduler struct {
	step   int
	slot   *timer.Slot
	set    func(mark int)
	logger *slog.Logger
}

// New creates a scheduler that reports marks through set. Timers are armed
// in slot, whose dispatch decides where set runs.
func New(step int, slot *timer.Slot, set func(mark int), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if step <= 0 {
		step = DefaultStep
	}
	if slot == nil {
		slot = timer.NewSlot(nil, nil)
	}
	return &Scheduler{
		step:   step,
		slot:   slot,
		set:    set,
		logger: logger,
	}
}

// Update restarts the scheduler from the given position. When known is
// false or duration is not positive the progress is reset to 0 and no timer
// is armed.
func (s *Scheduler) Update(elapsed, duration float64, known bool) {
	s.slot.Cancel()

	if !known || duration <= 0 {
		s.set(0)
		return
	}

	mark, interval, done := Quantize(elapsed, duration, s.step)
	s.set(mark)
	if done {
		return
	}

	next := elapsed + interval
	s.logger.Debug("progress scheduled", "mark", mark, "next_in", interval)
	s.slot.Arm(seconds(interval), func() {
		s.Update(next, duration, true)
	})
}

// Show cancels the pending timer and sets the mark for the given position
// without scheduling the next one. Used while playback is paused.
func (s *Scheduler) Show(elapsed, duration float64, known bool) {
	s.slot.Cancel()
	if !known || duration <= 0 {
		s.set(0)
		return
	}
	mark, _, _ := Quantize(elapsed, duration, s.step)
	s.set(mark)
}

// Stop cancels the pending timer without touching the progress value.
func (s *Scheduler) Stop() {
	s.slot.Cancel()
}

// Pending reports whether a step is scheduled.
func (s *Scheduler) Pending() bool {
	return s.slot.Pending()
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
