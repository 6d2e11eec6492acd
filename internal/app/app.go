package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/nowplaying/internal/queue"
)

// DefaultTickInterval is how often the active window is drawn and displayed.
const DefaultTickInterval = time.Second

// App owns the navigation stack and the render queue.
type App struct {
	queue  *queue.Queue
	logger *slog.Logger
	tick   time.Duration

	// stack is only touched from the render queue.
	stack []Controller
}

// New creates an app with an empty stack. Run installs the root controller.
func New(tick time.Duration, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if tick <= 0 {
		tick = DefaultTickInterval
	}

	q := queue.New("render", logger)
	a := &App{
		queue:  q,
		logger: logger,
		tick:   tick,
	}
	q.SetFailureHandler(func(err error) {
		a.logger.Error("render task failed", "error", err)
	})
	return a
}

// Submit runs fn on the render queue.
func (a *App) Submit(fn func()) {
	if err := a.queue.SubmitAsync(fn); err != nil {
		a.logger.Debug("render task dropped", "error", err)
	}
}

// Sync blocks until every task submitted so far has run. It must not be
// called from the render queue.
func (a *App) Sync() {
	_ = a.queue.SubmitSync(func() {})
}

// Push makes c the active controller.
func (a *App) Push(c Controller) {
	a.Submit(func() {
		if top := a.top(); top != nil {
			top.WillDisappear()
		}
		a.stack = append(a.stack, c)
		a.logger.Info("pushed controller", "controller", c.Name(), "depth", len(a.stack))
		c.WillAppear()
	})
}

// Pop removes the active controller and reactivates the one below it.
// The root controller is never popped.
func (a *App) Pop() {
	a.Submit(func() {
		if len(a.stack) <= 1 {
			a.logger.Warn("refusing to pop the root controller")
			return
		}

		current := a.stack[len(a.stack)-1]
		a.stack[len(a.stack)-1] = nil
		a.stack = a.stack[:len(a.stack)-1]
		current.WillDisappear()

		top := a.top()
		a.logger.Info("popped controller", "controller", current.Name(), "active", top.Name(), "depth", len(a.stack))
		top.WillAppear()
	})
}

// Active returns the name of the active controller, or "" when the stack is
// empty. It waits for pending render tasks and must not be called from the
// render queue.
func (a *App) Active() string {
	var name string
	_ = a.queue.SubmitSync(func() {
		if top := a.top(); top != nil {
			name = top.Name()
		}
	})
	return name
}

// Depth returns the number of controllers on the stack. It must not be
// called from the render queue.
func (a *App) Depth() int {
	var n int
	_ = a.queue.SubmitSync(func() {
		n = len(a.stack)
	})
	return n
}

// Render draws and displays the active window once, waiting for it to
// complete. It must not be called from the render queue.
func (a *App) Render() {
	_ = a.queue.SubmitSync(a.render)
}

// Run installs root as the only controller, fires its WillAppear hook and
// then renders on every tick until ctx is cancelled. On exit the active
// controller's WillDisappear hook runs and the render queue is closed.
func (a *App) Run(ctx context.Context, root Controller) error {
	err := a.queue.SubmitSync(func() {
		a.stack = []Controller{root}
		root.WillAppear()
	})
	if err != nil {
		return err
	}

	a.logger.Info("app running", "root", root.Name(), "tick", a.tick)

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		if err := a.queue.SubmitSync(a.render); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) shutdown() {
	_ = a.queue.SubmitSync(func() {
		if top := a.top(); top != nil {
			top.WillDisappear()
		}
	})
	a.queue.Close()
	a.logger.Info("app stopped")
}

// Close stops the render queue without running any lifecycle hook. Run
// closes it on its own; Close is for apps that were never run.
func (a *App) Close() {
	a.queue.Close()
}

func (a *App) top() Controller {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// render runs on the render queue.
func (a *App) render() {
	top := a.top()
	if top == nil {
		return
	}

	if t, ok := top.(Ticker); ok {
		t.Tick()
	}

	window := top.Window()
	window.Draw()
	if err := window.Display(); err != nil {
		a.logger.Warn("display failed, retrying on next tick", "controller", top.Name(), "error", err)
	}
}
