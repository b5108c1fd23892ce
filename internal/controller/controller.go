// Package controller owns the geometry of one player window. Every method
// except the Notify* family must be called on the main loop.
package controller

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/pipeline"
	"github.com/1broseidon/vidframe/internal/store"
	"github.com/1broseidon/vidframe/internal/ticket"
	"github.com/1broseidon/vidframe/internal/transition"
)

// ResizeTiming decides when a new video geometry may resize the window.
type ResizeTiming int

const (
	ResizeAlways ResizeTiming = iota
	ResizeOnlyWhenFileJustOpened
	ResizeNever
)

func (r ResizeTiming) String() string {
	switch r {
	case ResizeAlways:
		return "always"
	case ResizeOnlyWhenFileJustOpened:
		return "on_open"
	case ResizeNever:
		return "never"
	default:
		return fmt.Sprintf("ResizeTiming(%d)", int(r))
	}
}

// ParseResizeTiming maps a config name to a ResizeTiming.
func ParseResizeTiming(s string) (ResizeTiming, error) {
	switch s {
	case "always":
		return ResizeAlways, nil
	case "on_open", "only_when_file_just_opened":
		return ResizeOnlyWhenFileJustOpened, nil
	case "never":
		return ResizeNever, nil
	default:
		return ResizeNever, fmt.Errorf("unknown resize timing %q", s)
	}
}

// Window is the windowing-system side of one player window.
type Window interface {
	SetFrame(frame geometry.Rect) error
	SetFullScreen(on bool) error
	// ApplyStep handles the purely visual steps: fades, panel visibility,
	// bar placement, decorations and the video rect.
	ApplyStep(step transition.Step) error
}

// Store persists geometry across launches.
type Store interface {
	Load() (store.Snapshot, error)
	Save(store.Snapshot) error
}

// ScreenSource reports the current display configuration.
type ScreenSource interface {
	Screens() (geometry.Screens, error)
}

// Listener receives window events. Callbacks run on the main loop.
type Listener interface {
	WindowResized(frame geometry.Rect)
	WindowSizeAdjusted(frame geometry.Rect)
	WindowFullscreenChanged(on bool)
}

// Config holds the tunables of a controller.
type Config struct {
	Metrics       layout.Metrics
	MinVideoSize  geometry.Size
	LockAspect    bool
	Fit           geometry.FitOption
	ResizeTiming  ResizeTiming
	InitialSpec   layout.Spec
	InitialAspect float64
	// InitialViewport sizes a window that has nothing persisted.
	InitialViewport geometry.Size

	MusicMinWidth     float64
	MusicMaxWidth     float64
	PlaylistMinHeight float64

	// CoverCameraHousing lets legacy full screen draw under the notch.
	CoverCameraHousing bool

	Durations    transition.Durations
	StallTimeout time.Duration
	// ScreenSettle delays screen recomputes so bursts collapse into one.
	ScreenSettle time.Duration
}

// DefaultConfig matches the config package defaults.
func DefaultConfig() Config {
	return Config{
		Metrics:           layout.DefaultMetrics(),
		MinVideoSize:      geometry.Size{W: 285, H: 120},
		LockAspect:        true,
		Fit:               geometry.FitKeepInside,
		ResizeTiming:      ResizeOnlyWhenFileJustOpened,
		InitialSpec:       layout.DefaultSpec(),
		InitialAspect:     16.0 / 9.0,
		InitialViewport:   geometry.Size{W: 854, H: 480},
		MusicMinWidth:     300,
		PlaylistMinHeight: 200,
		Durations: transition.Durations{
			Fade:       150 * time.Millisecond,
			Panel:      200 * time.Millisecond,
			FullScreen: 300 * time.Millisecond,
		},
		StallTimeout: pipeline.DefaultStallTimeout,
		ScreenSettle: 100 * time.Millisecond,
	}
}

// Deps are the collaborators of a controller.
type Deps struct {
	Dispatcher mainloop.Dispatcher
	Clock      mainloop.Clock
	Window     Window
	Engine     engine.Engine
	Store      Store
	Screens    ScreenSource
	Logger     *slog.Logger
}

type work struct {
	tr    *transition.Transition
	phase transition.Phase
}

// Controller is the WindowGeometryController.
type Controller struct {
	cfg    Config
	d      mainloop.Dispatcher
	clock  mainloop.Clock
	window Window
	engine engine.Engine
	store  Store
	source ScreenSource
	logger *slog.Logger

	pipe    *pipeline.Pipeline[work]
	tickets ticket.Set
	// settle mirrors cfg.ScreenSettle for the Notify* family.
	settle atomic.Int64

	// Main loop state.
	state    layout.State
	current  geometry.Snapshot
	windowed geometry.Windowed
	music    geometry.Music
	hasMusic bool
	screens  geometry.Screens

	started        bool
	initial        bool
	closed         bool
	active         string
	pendingModes   []layout.Spec
	pendingVideo   *engine.VideoGeometry
	pendingRefit   bool
	lastVideo      engine.VideoGeometry
	fileJustOpened bool
	drag           *dragLock
	listeners      []Listener
	lastErr        error
}

// New creates a controller. Call Start on the main loop to apply the
// initial layout.
func New(cfg Config, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Engine == nil {
		deps.Engine = &engine.Recorder{}
	}
	c := &Controller{
		cfg:     cfg,
		d:       deps.Dispatcher,
		clock:   deps.Clock,
		window:  deps.Window,
		engine:  deps.Engine,
		store:   deps.Store,
		source:  deps.Screens,
		logger:  logger,
		initial: true,
	}
	c.settle.Store(int64(cfg.ScreenSettle))
	c.pipe = pipeline.New[work](c.d, c.clock, pipeline.RunnerFunc[work](c.runPhase), logger.With("component", "pipeline"))
	c.pipe.StallTimeout = cfg.StallTimeout
	c.pipe.OnIdle(c.drainPending)
	return c
}

// AddListener registers l for window events.
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Start restores persisted geometry and applies the first layout without
// animation.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.refreshScreens()

	spec := c.cfg.InitialSpec
	restored := false
	if c.store != nil {
		snap, err := c.store.Load()
		switch {
		case err == nil:
			if snap.Spec.Mode != nil {
				spec = snap.Spec
			}
			if snap.Windowed != nil {
				c.windowed = *snap.Windowed
				restored = true
			}
			if snap.Music != nil {
				c.music = *snap.Music
				c.hasMusic = true
			}
		case store.IsNotFound(err):
			c.logger.Debug("no persisted geometry")
		default:
			c.logger.Warn("failed to load persisted geometry", "error", err)
		}
	}
	if !restored {
		c.windowed = c.defaultWindowed()
	}
	c.logger.Info("controller started", "spec", spec.String(), "frame", c.windowed.Frame.String(), "restored", restored)
	c.startMode(spec)
}

func (c *Controller) defaultWindowed() geometry.Windowed {
	screen := c.screens.Primary()
	aspect := c.cfg.InitialAspect
	if !geometry.ValidAspect(aspect) {
		aspect = 16.0 / 9.0
	}
	vp := c.cfg.InitialViewport
	if vp.IsEmpty() {
		vp = geometry.Size{W: 854, H: 480}
	}
	vis := screen.VisibleFrame(false)
	g := geometry.Windowed{
		Frame:       geometry.CenteredAt(vis.Center(), vp),
		ScreenID:    screen.ID,
		Fit:         c.cfg.Fit,
		VideoAspect: aspect,
	}
	fit := c.cfg.Fit
	if fit == geometry.FitNoConstraints {
		fit = geometry.FitCenterInside
	}
	out, v := geometry.ScaleViewport(g, vp, fit, c.bounds(screen))
	c.report(v)
	return out
}

// Close persists the current geometry and turns every remaining phase into
// a no-op.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.persist()
	c.closed = true
	c.pendingModes = nil
	c.pendingVideo = nil
	c.logger.Info("controller closed")
}

// UpdateConfig swaps the tunables. Transitions already queued keep the
// durations they were compiled with.
func (c *Controller) UpdateConfig(cfg Config) {
	c.cfg = cfg
	c.settle.Store(int64(cfg.ScreenSettle))
	c.pipe.StallTimeout = cfg.StallTimeout
	c.logger.Info("controller config updated", "fit", cfg.Fit.String(), "resize_timing", cfg.ResizeTiming.String())
}

// Transitioning reports whether a transition is running or queued.
func (c *Controller) Transitioning() bool { return c.busy() }

// CommitAndPersist writes the current snapshots through the store.
func (c *Controller) CommitAndPersist() {
	if c.closed {
		return
	}
	c.persist()
}

func (c *Controller) persist() {
	if c.store == nil || !c.started {
		return
	}
	snap := store.Snapshot{Spec: c.state.Spec}
	w := c.windowed
	snap.Windowed = &w
	if c.hasMusic {
		m := c.music
		snap.Music = &m
	}
	if err := c.store.Save(snap); err != nil {
		c.lastErr = err
		c.logger.Warn("failed to persist geometry", "error", err)
		return
	}
	c.logger.Debug("geometry persisted", "frame", w.Frame.String())
}

func (c *Controller) bounds(s geometry.Screen) geometry.Bounds {
	return geometry.Bounds{Screen: s, MinVideoSize: c.cfg.MinVideoSize, LockAspect: c.cfg.LockAspect}
}

func (c *Controller) musicBounds(s geometry.Screen) geometry.MusicBounds {
	return geometry.MusicBounds{
		Screen:            s,
		MinWidth:          c.cfg.MusicMinWidth,
		MaxWidth:          c.cfg.MusicMaxWidth,
		PlaylistMinHeight: c.cfg.PlaylistMinHeight,
	}
}

func (c *Controller) screenOf(s geometry.Snapshot) geometry.Screen {
	return c.screens.Resolve(s.OnScreen(), s.WindowFrame())
}

// report logs a geometry violation. Invalid input is a warning; a broken
// invariant is an error.
func (c *Controller) report(v *geometry.Violation) {
	if v == nil {
		return
	}
	if v.Invariant {
		c.logger.Error("geometry invariant violated", "error", v)
		return
	}
	c.logger.Warn("invalid geometry input corrected", "error", v)
}

func (c *Controller) busy() bool {
	return c.pipe.Busy()
}

func (c *Controller) refreshScreens() {
	if c.source == nil {
		return
	}
	screens, err := c.source.Screens()
	if err != nil {
		c.logger.Warn("failed to query screens", "error", err)
		return
	}
	c.screens = screens
}

func (c *Controller) emitResized(frame geometry.Rect) {
	for _, l := range c.listeners {
		l.WindowResized(frame)
	}
}

func (c *Controller) emitSizeAdjusted(frame geometry.Rect) {
	for _, l := range c.listeners {
		l.WindowSizeAdjusted(frame)
	}
}

func (c *Controller) emitFullScreen(on bool) {
	for _, l := range c.listeners {
		l.WindowFullscreenChanged(on)
	}
}
