package daemon

import (
	"log/slog"
	"time"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/platform"
)

// Tracker turns window manager geometry changes of one window into
// controller calls. A burst of size changes is a live resize; it ends once
// no change arrived for the quiet period.
type Tracker struct {
	backend platform.Backend
	window  *Window
	ctrl    *controller.Controller
	d       mainloop.Dispatcher
	clock   mainloop.Clock
	quiet   time.Duration
	logger  *slog.Logger

	// Main loop state.
	last  platform.Rect
	timer mainloop.Timer
}

func newTracker(backend platform.Backend, w *Window, ctrl *controller.Controller, d mainloop.Dispatcher, clock mainloop.Clock, quiet time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		backend: backend,
		window:  w,
		ctrl:    ctrl,
		d:       d,
		clock:   clock,
		quiet:   quiet,
		logger:  logger,
	}
}

// HandleConfigure runs on the backend event goroutine.
func (t *Tracker) HandleConfigure() {
	r, err := t.backend.WindowBounds(t.window.ID())
	if err != nil {
		t.logger.Debug("window bounds unavailable", "window_id", uint32(t.window.ID()), "error", err)
		return
	}
	if t.window.isEcho(r) {
		t.d.Post(func() { t.last = r })
		return
	}
	t.d.Post(func() { t.apply(r) })
}

func (t *Tracker) apply(r platform.Rect) {
	prev := t.last
	t.last = r
	if r == prev || prev == (platform.Rect{}) {
		return
	}
	// While a transition runs the controller owns the frame; in full screen
	// the window manager does.
	if t.ctrl.Transitioning() {
		return
	}
	switch t.ctrl.Spec().Kind() {
	case layout.KindFullScreen, layout.KindFullScreenInteractive:
		return
	}

	origin := geometry.Point{X: float64(r.X), Y: float64(r.Y)}
	if r.Width != prev.Width || r.Height != prev.Height {
		requested := geometry.Size{W: float64(r.Width), H: float64(r.Height)}
		accepted := t.ctrl.ResizeWindow(requested, true)
		if accepted != requested {
			if err := t.window.SetFrame(geometry.RectFrom(origin, accepted)); err != nil {
				t.logger.Warn("failed to correct window size", "error", err)
			}
		}
		if t.timer != nil {
			t.timer.Stop()
		}
		t.timer = t.clock.AfterFunc(t.quiet, t.endResize)
	}
	if r.X != prev.X || r.Y != prev.Y {
		t.ctrl.NotifyWindowMoved(origin)
	}
}

func (t *Tracker) endResize() {
	t.timer = nil
	t.ctrl.EndLiveResize()
}

// stop cancels a pending end of resize. Main loop only.
func (t *Tracker) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
