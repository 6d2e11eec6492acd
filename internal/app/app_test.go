package app

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/nowplaying/internal/ui"
)

type countingTransport struct {
	mu     sync.Mutex
	pushes int
}

func (c *countingTransport) Bounds() image.Rectangle {
	return image.Rect(0, 0, 32, 32)
}

func (c *countingTransport) Push(image.Image, int, int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushes++
	return nil
}

func (c *countingTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushes
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.events
	l.events = nil
	return events
}

type testController struct {
	BaseController
	log *eventLog
}

func newTestController(name string, nav Navigator, tr ui.Transport, log *eventLog) *testController {
	window := ui.NewWindow(name, tr, color.Black, nil)
	return &testController{
		BaseController: NewBaseController(name, window, nav, nil),
		log:            log,
	}
}

func (c *testController) WillAppear() {
	c.BaseController.WillAppear()
	c.log.add(c.Name() + ".appear")
}

func (c *testController) WillDisappear() {
	c.BaseController.WillDisappear()
	c.log.add(c.Name() + ".disappear")
}

func TestApp_PushPopLifecycleOrder(t *testing.T) {
	a := New(time.Hour, nil)
	defer a.Close()

	tr := &countingTransport{}
	log := &eventLog{}
	root := newTestController("A", a, tr, log)
	next := newTestController("C", a, tr, log)

	a.Push(root)
	a.Sync()
	assert.Equal(t, []string{"A.appear"}, log.take())

	// Display A so its window has been shown once.
	a.Render()
	require.True(t, root.Window().WasDisplayedOnce())

	a.Push(next)
	a.Sync()
	assert.Equal(t, []string{"A.disappear", "C.appear"}, log.take())
	assert.Equal(t, "C", a.Active())
	assert.Equal(t, 2, a.Depth())

	a.Pop()
	a.Sync()
	assert.Equal(t, []string{"C.disappear", "A.appear"}, log.take())
	assert.Equal(t, "A", a.Active())
	assert.False(t, root.Window().WasDisplayedOnce())
}

func TestApp_PopRootIsRefused(t *testing.T) {
	a := New(time.Hour, nil)
	defer a.Close()

	log := &eventLog{}
	root := newTestController("A", a, &countingTransport{}, log)
	a.Push(root)
	a.Pop()
	a.Sync()

	assert.Equal(t, []string{"A.appear"}, log.take())
	assert.Equal(t, 1, a.Depth())
	assert.Equal(t, "A", a.Active())
}

func TestApp_RenderWithEmptyStack(t *testing.T) {
	a := New(time.Hour, nil)
	defer a.Close()

	a.Render()
	assert.Equal(t, "", a.Active())
}

func TestApp_RunTicksAndShutsDown(t *testing.T) {
	a := New(10*time.Millisecond, nil)
	tr := &countingTransport{}
	log := &eventLog{}
	root := newTestController("A", a, tr, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx, root)
	}()

	require.Eventually(t, func() bool {
		return tr.count() >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{"A.appear", "A.disappear"}, log.take())
}

func TestBaseController_WillDisappearResetsWindow(t *testing.T) {
	a := New(time.Hour, nil)
	defer a.Close()

	c := newTestController("A", a, &countingTransport{}, &eventLog{})
	require.NoError(t, c.Window().Display())
	require.True(t, c.Window().WasDisplayedOnce())

	c.WillDisappear()
	assert.False(t, c.Window().WasDisplayedOnce())
	assert.NotEmpty(t, c.ID().String())
}

type tickingController struct {
	*testController
	ticks int
}

func (c *tickingController) Tick() {
	c.ticks++
}

func TestApp_RenderTicksActiveController(t *testing.T) {
	a := New(time.Hour, nil)
	defer a.Close()

	tr := &countingTransport{}
	c := &tickingController{testController: newTestController("T", a, tr, &eventLog{})}
	a.Push(c)
	a.Render()
	a.Render()

	// Ticks only ever run on the render queue.
	var ticks int
	a.Submit(func() { ticks = c.ticks })
	a.Sync()
	assert.Equal(t, 2, ticks)
}
