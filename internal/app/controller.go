package app

import (
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/nowplaying/internal/ui"
)

// Controller is a screen: a window plus the logic that keeps it current.
// Lifecycle hooks run on the render queue.
type Controller interface {
	Name() string
	Window() *ui.Window
	WillAppear()
	WillDisappear()
}

// Ticker is implemented by controllers that need to refresh state on every
// tick. Tick runs on the render queue just before the window is drawn.
type Ticker interface {
	Tick()
}

// Navigator changes the active controller and gives controllers access to
// the render queue.
type Navigator interface {
	Push(c Controller)
	Pop()
	// Submit runs fn on the render queue.
	Submit(fn func())
}

// BaseController implements the bookkeeping shared by every controller.
// Concrete controllers embed it and override the hooks they need, calling
// the embedded version first.
type BaseController struct {
	id        ulid.ULID
	name      string
	window    *ui.Window
	navigator Navigator
	logger    *slog.Logger
}

// NewBaseController creates the shared controller state.
func NewBaseController(name string, window *ui.Window, navigator Navigator, logger *slog.Logger) BaseController {
	if logger == nil {
		logger = slog.Default()
	}
	id := ulid.Make()
	return BaseController{
		id:        id,
		name:      name,
		window:    window,
		navigator: navigator,
		logger:    logger.With("controller", name, "id", id.String()),
	}
}

// ID returns the controller instance id.
func (c *BaseController) ID() ulid.ULID {
	return c.id
}

// Name returns the controller name.
func (c *BaseController) Name() string {
	return c.name
}

// Window returns the controller's window.
func (c *BaseController) Window() *ui.Window {
	return c.window
}

// Navigator returns the navigator the controller was created with.
func (c *BaseController) Navigator() Navigator {
	return c.navigator
}

// Logger returns the controller's logger.
func (c *BaseController) Logger() *slog.Logger {
	return c.logger
}

// Push shows next on top of this controller.
func (c *BaseController) Push(next Controller) {
	c.navigator.Push(next)
}

// Pop removes the active controller.
func (c *BaseController) Pop() {
	c.navigator.Pop()
}

// WillAppear is called when the controller becomes active.
func (c *BaseController) WillAppear() {
	c.logger.Debug("controller will appear")
}

// WillDisappear is called when the controller stops being active. The
// window does a full refresh when it comes back.
func (c *BaseController) WillDisappear() {
	c.logger.Debug("controller will disappear")
	c.window.ResetDisplayed()
}
