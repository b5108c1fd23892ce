// Package daemon attaches geometry controllers to player windows and keeps
// them in sync with the window manager and the display configuration.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/store"
)

// ErrNoWindow is returned when no player window is attached.
var ErrNoWindow = errors.New("no player window attached")

const shutdownTimeout = 2 * time.Second

// Options configure a Daemon.
type Options struct {
	Config *config.Config
	// ConfigPath is re-read by Reload; empty means the default location.
	ConfigPath string
	Backend    platform.Backend
	// Store defaults to a FileStore keyed by the config's state key.
	Store controller.Store
	// Clock defaults to wall time delivered through the daemon's queue.
	Clock  mainloop.Clock
	Logger *slog.Logger
}

// Daemon owns the main loop and every attached window.
type Daemon struct {
	configPath string
	backend    platform.Backend
	queue      *mainloop.Queue
	screens    *ScreenSource
	registry   *controller.Registry
	sync       *StateSynchronizer
	reconciler *Reconciler
	logger     *slog.Logger
	started    time.Time

	mu  sync.RWMutex
	cfg *config.Config
}

// New validates the config and builds the daemon. Nothing runs until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon: config is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("daemon: backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	ccfg, err := cfg.ControllerConfig()
	if err != nil {
		return nil, err
	}

	st := opts.Store
	if st == nil {
		fs, err := store.NewFileStore(cfg.StateKey())
		if err != nil {
			return nil, fmt.Errorf("open geometry store: %w", err)
		}
		st = fs
	}

	queue := mainloop.NewQueue(logger.With("component", "mainloop"))
	clock := opts.Clock
	if clock == nil {
		clock = mainloop.RealClock{D: queue}
	}

	d := &Daemon{
		configPath: opts.ConfigPath,
		backend:    opts.Backend,
		queue:      queue,
		screens:    NewScreenSource(opts.Backend, float64(cfg.Window.CameraHousingHeight)),
		registry:   controller.NewRegistry(),
		logger:     logger,
		started:    time.Now(),
		cfg:        cfg,
	}
	d.sync = NewStateSynchronizer(ccfg, ms(cfg.Daemon.LiveResizeQuietMS), SyncDeps{
		Backend:    opts.Backend,
		Dispatcher: queue,
		Clock:      clock,
		Store:      st,
		Screens:    d.screens,
		Registry:   d.registry,
		Logger:     logger.With("component", "controller"),
	})
	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval:    ms(cfg.Daemon.ScreenPollIntervalMS),
		WindowClass: cfg.Daemon.WindowClass,
		Logger:      logger.With("component", "reconciler"),
	}, opts.Backend, d.sync)
	return d, nil
}

// Run drives the main loop and the reconciler until ctx is cancelled, then
// closes every controller so geometry is persisted.
func (d *Daemon) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go d.queue.Run(loopCtx)

	// Attach to windows that already exist before serving requests.
	d.reconciler.ReconcileNow()

	recCtx, stopRec := context.WithCancel(ctx)
	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		d.reconciler.Run(recCtx)
	}()

	d.logger.Info("daemon started", "window_class", d.Config().Daemon.WindowClass)
	<-ctx.Done()
	stopRec()
	<-recDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := d.queue.Call(shutdownCtx, d.sync.CloseAll)
	stopLoop()
	<-d.queue.Done()
	d.logger.Info("daemon stopped")
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Config returns the effective configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Uptime reports how long ago the daemon was created.
func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.started)
}

// Do runs fn on the main loop with the controller of windowID. Zero picks
// the lowest attached window.
func (d *Daemon) Do(ctx context.Context, windowID uint32, fn func(*controller.Controller) error) error {
	a, err := d.resolve(windowID)
	if err != nil {
		return err
	}
	var fnErr error
	if err := d.queue.Call(ctx, func() { fnErr = fn(a.ctrl) }); err != nil {
		return err
	}
	return fnErr
}

// WindowStatus is the full state of one attached window.
type WindowStatus struct {
	WindowID         uint32            `json:"window_id"`
	Title            string            `json:"title,omitempty"`
	PID              int               `json:"pid,omitempty"`
	Controller       controller.Status `json:"controller"`
	Chrome           Chrome            `json:"chrome"`
	EngineScale      float64           `json:"engine_scale"`
	EngineFullScreen bool              `json:"engine_fullscreen"`
	ScaleRequests    int               `json:"scale_requests"`
}

// Status reports one window.
func (d *Daemon) Status(ctx context.Context, windowID uint32) (WindowStatus, error) {
	a, err := d.resolve(windowID)
	if err != nil {
		return WindowStatus{}, err
	}
	var st WindowStatus
	if err := d.queue.Call(ctx, func() { st = d.statusOf(a) }); err != nil {
		return WindowStatus{}, err
	}
	return st, nil
}

// Windows reports every attached window.
func (d *Daemon) Windows(ctx context.Context) ([]WindowStatus, error) {
	var out []WindowStatus
	err := d.queue.Call(ctx, func() {
		for _, a := range d.sync.all() {
			out = append(out, d.statusOf(a))
		}
	})
	return out, err
}

func (d *Daemon) statusOf(a *attached) WindowStatus {
	scale, fs, reqs := a.engine.State()
	return WindowStatus{
		WindowID:         uint32(a.window.ID()),
		Title:            a.info.Title,
		PID:              a.info.PID,
		Controller:       a.ctrl.Status(),
		Chrome:           a.window.Chrome(),
		EngineScale:      scale,
		EngineFullScreen: fs,
		ScaleRequests:    reqs,
	}
}

// Resize asks for a new window size outside of a live drag, applies the
// size the controller accepts and persists it.
func (d *Daemon) Resize(ctx context.Context, windowID uint32, size geometry.Size) (geometry.Rect, error) {
	a, err := d.resolve(windowID)
	if err != nil {
		return geometry.Rect{}, err
	}
	var frame geometry.Rect
	var setErr error
	err = d.queue.Call(ctx, func() {
		a.ctrl.ResizeWindow(size, false)
		st := a.ctrl.Status()
		if st.Frame == nil {
			setErr = fmt.Errorf("window has no geometry yet")
			return
		}
		frame = st.Frame.Round()
		setErr = a.window.SetFrame(frame)
		a.ctrl.CommitAndPersist()
	})
	if err != nil {
		return geometry.Rect{}, err
	}
	return frame, setErr
}

// Screens reports the display configuration as the controllers see it.
func (d *Daemon) Screens() (geometry.Screens, error) {
	return d.screens.Screens()
}

// Reload re-reads the config file and applies it to every controller.
// The state key and window class only take effect after a restart.
func (d *Daemon) Reload() (*config.Config, error) {
	var (
		res *config.LoadResult
		err error
	)
	if d.configPath != "" {
		res, err = config.LoadFromPath(d.configPath)
	} else {
		res, err = config.LoadWithSources()
	}
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	ccfg, err := cfg.ControllerConfig()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	d.screens.SetCameraHousingHeight(float64(cfg.Window.CameraHousingHeight))
	d.sync.UpdateConfig(ccfg, ms(cfg.Daemon.LiveResizeQuietMS))
	d.logger.Info("config reloaded", "files", len(res.Files))
	return cfg, nil
}

func (d *Daemon) resolve(windowID uint32) (*attached, error) {
	if windowID == 0 {
		ids := d.sync.WindowIDs()
		if len(ids) == 0 {
			return nil, ErrNoWindow
		}
		windowID = ids[0]
	}
	a, ok := d.sync.lookup(windowID)
	if !ok {
		return nil, fmt.Errorf("window %d: %w", windowID, ErrNoWindow)
	}
	return a, nil
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
