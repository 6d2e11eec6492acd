package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/nowplaying/internal/timer"
)

type armed struct {
	d  time.Duration
	fn func()
}

type manualClock struct {
	timers []*armed
}

type stopper struct{}

func (stopper) Stop() bool { return true }

func (c *manualClock) AfterFunc(d time.Duration, fn func()) timer.Stopper {
	c.timers = append(c.timers, &armed{d: d, fn: fn})
	return stopper{}
}

func (c *manualClock) last() *armed {
	return c.timers[len(c.timers)-1]
}

func newTestScheduler() (*Scheduler, *manualClock, *[]int) {
	clock := &manualClock{}
	var marks []int
	s := New(DefaultStep, timer.NewSlot(clock.AfterFunc, nil), func(m int) {
		marks = append(marks, m)
	}, nil)
	return s, clock, &marks
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		duration float64
		mark     int
		interval float64
		done     bool
	}{
		{name: "half way rounds to even", elapsed: 95, duration: 200, mark: 50, interval: 25},
		{name: "start", elapsed: 0, duration: 100, mark: 0, interval: 10},
		{name: "rounds up", elapsed: 16, duration: 100, mark: 20, interval: 14},
		{name: "last step", elapsed: 96, duration: 100, mark: 100, done: true},
		{name: "past the end", elapsed: 150, duration: 100, mark: 100, done: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mark, interval, done := Quantize(tt.elapsed, tt.duration, DefaultStep)
			assert.Equal(t, tt.mark, mark)
			assert.Equal(t, tt.done, done)
			assert.InDelta(t, tt.interval, interval, 1e-9)
		})
	}
}

func TestScheduler_ArmsNextStep(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(95, 200, true)

	assert.Equal(t, []int{50}, *marks)
	require.Len(t, clock.timers, 1)
	assert.Equal(t, 25*time.Second, clock.last().d)
	assert.True(t, s.Pending())

	clock.last().fn()
	assert.Equal(t, []int{50, 60}, *marks)
	require.Len(t, clock.timers, 2)
	assert.Equal(t, 20*time.Second, clock.last().d)
}

func TestScheduler_StopsAtHundred(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(199, 200, true)

	assert.Equal(t, []int{100}, *marks)
	assert.Empty(t, clock.timers)
	assert.False(t, s.Pending())
}

func TestScheduler_RunsToCompletion(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(0, 50, true)
	for s.Pending() {
		clock.last().fn()
	}

	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, *marks)
}

func TestScheduler_UnknownResets(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(10, 100, true)
	require.True(t, s.Pending())

	s.Update(0, 0, false)
	assert.Equal(t, []int{10, 0}, *marks)
	assert.False(t, s.Pending())

	// The superseded timer firing late changes nothing.
	clock.timers[0].fn()
	assert.Equal(t, []int{10, 0}, *marks)
}

func TestScheduler_RestartCancelsPrevious(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(10, 100, true)
	s.Update(50, 100, true)
	require.Len(t, clock.timers, 2)

	clock.timers[0].fn()
	assert.Equal(t, []int{10, 50}, *marks)

	s.Stop()
	clock.timers[1].fn()
	assert.Equal(t, []int{10, 50}, *marks)
}

func TestScheduler_ShowDoesNotArm(t *testing.T) {
	s, clock, marks := newTestScheduler()

	s.Update(10, 100, true)
	s.Show(42, 100, true)

	assert.Equal(t, []int{10, 40}, *marks)
	assert.False(t, s.Pending())
	require.Len(t, clock.timers, 1)

	clock.timers[0].fn()
	assert.Equal(t, []int{10, 40}, *marks)

	s.Show(0, 0, false)
	assert.Equal(t, []int{10, 40, 0}, *marks)
}
