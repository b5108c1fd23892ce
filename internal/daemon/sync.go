package daemon

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/platform"
)

// attached is everything the daemon keeps per player window.
type attached struct {
	info    platform.Window
	window  *Window
	ctrl    *controller.Controller
	tracker *Tracker
	engine  *engine.Recorder
}

// SyncDeps are the collaborators of a StateSynchronizer.
type SyncDeps struct {
	Backend    platform.Backend
	Dispatcher mainloop.Dispatcher
	Clock      mainloop.Clock
	Store      controller.Store
	Screens    controller.ScreenSource
	Registry   *controller.Registry
	Logger     *slog.Logger
}

// StateSynchronizer attaches controllers to player windows as they appear
// and tears them down when they close.
type StateSynchronizer struct {
	deps SyncDeps

	mu      sync.Mutex
	cfg     controller.Config
	quiet   time.Duration
	windows map[uint32]*attached
}

// NewStateSynchronizer creates a synchronizer with no windows attached.
func NewStateSynchronizer(cfg controller.Config, quiet time.Duration, deps SyncDeps) *StateSynchronizer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = controller.NewRegistry()
	}
	return &StateSynchronizer{
		deps:    deps,
		cfg:     cfg,
		quiet:   quiet,
		windows: make(map[uint32]*attached),
	}
}

// HandleWindowOpened attaches a controller to w unless one already is.
// Safe to call from any goroutine; the controller starts on the main loop.
func (s *StateSynchronizer) HandleWindowOpened(w platform.Window) {
	id := uint32(w.ID)
	s.mu.Lock()
	if _, ok := s.windows[id]; ok {
		s.mu.Unlock()
		return
	}
	logger := s.deps.Logger.With("window_id", id)
	win := NewWindow(s.deps.Backend, w.ID, logger)
	rec := &engine.Recorder{}
	ctrl := controller.New(s.cfg, controller.Deps{
		Dispatcher: s.deps.Dispatcher,
		Clock:      s.deps.Clock,
		Window:     win,
		Engine:     rec,
		Store:      s.deps.Store,
		Screens:    s.deps.Screens,
		Logger:     logger,
	})
	a := &attached{
		info:    w,
		window:  win,
		ctrl:    ctrl,
		engine:  rec,
		tracker: newTracker(s.deps.Backend, win, ctrl, s.deps.Dispatcher, s.deps.Clock, s.quiet, logger),
	}
	s.windows[id] = a
	s.mu.Unlock()

	s.deps.Logger.Info("player window found", "window_id", id, "title", w.Title, "pid", w.PID)
	s.deps.Registry.Register(id, ctrl)

	s.deps.Dispatcher.Post(func() {
		a.tracker.last = w.Bounds
		ctrl.Start()
	})
	if err := s.deps.Backend.Watch(w.ID, a.tracker.HandleConfigure, func() { s.HandleWindowClosed(id) }); err != nil {
		s.deps.Logger.Warn("failed to watch window", "window_id", id, "error", err)
	}
}

// HandleWindowClosed is called when a tracked window is destroyed. The
// controller persists its geometry and drops any queued work.
func (s *StateSynchronizer) HandleWindowClosed(windowID uint32) {
	s.mu.Lock()
	a, ok := s.windows[windowID]
	if !ok {
		s.mu.Unlock()
		return // Window not tracked, nothing to do
	}
	delete(s.windows, windowID)
	s.mu.Unlock()

	s.deps.Logger.Info("window closed, cleaning up", "window_id", windowID)
	s.deps.Registry.Remove(windowID)
	s.deps.Backend.Unwatch(a.window.ID())
	s.deps.Dispatcher.Post(func() {
		a.tracker.stop()
		a.ctrl.Close()
	})
}

// Reconcile attaches windows that appeared and detaches those that are gone.
func (s *StateSynchronizer) Reconcile(current []platform.Window) {
	seen := make(map[uint32]bool, len(current))
	for _, w := range current {
		seen[uint32(w.ID)] = true
		s.HandleWindowOpened(w)
	}
	for _, id := range s.WindowIDs() {
		if !seen[id] {
			s.HandleWindowClosed(id)
		}
	}
}

// NotifyScreens forwards a display change to every controller.
func (s *StateSynchronizer) NotifyScreens(change displayChange) {
	for _, a := range s.all() {
		switch change {
		case displaysRearranged:
			a.ctrl.NotifyScreensChanged()
		case displayParamsChanged:
			a.ctrl.NotifyScreenParamsChanged()
		}
	}
}

// UpdateConfig applies new tunables to every attached controller and to
// controllers attached later.
func (s *StateSynchronizer) UpdateConfig(cfg controller.Config, quiet time.Duration) {
	s.mu.Lock()
	s.cfg = cfg
	s.quiet = quiet
	s.mu.Unlock()
	for _, a := range s.all() {
		a := a
		s.deps.Dispatcher.Post(func() {
			a.tracker.quiet = quiet
			a.ctrl.UpdateConfig(cfg)
		})
	}
}

// CloseAll detaches every window. Main loop only.
func (s *StateSynchronizer) CloseAll() {
	for _, a := range s.all() {
		s.deps.Backend.Unwatch(a.window.ID())
		s.deps.Registry.Remove(uint32(a.window.ID()))
		a.tracker.stop()
		a.ctrl.Close()
	}
	s.mu.Lock()
	s.windows = make(map[uint32]*attached)
	s.mu.Unlock()
}

// WindowIDs lists attached windows in ascending order.
func (s *StateSynchronizer) WindowIDs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint32, 0, len(s.windows))
	for id := range s.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *StateSynchronizer) lookup(windowID uint32) (*attached, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.windows[windowID]
	return a, ok
}

func (s *StateSynchronizer) all() []*attached {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*attached, 0, len(s.windows))
	for _, a := range s.windows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].window.ID() < out[j].window.ID() })
	return out
}
