package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/vidframe/internal/platform"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval    time.Duration
	WindowClass string
	Logger      *slog.Logger
}

// Reconciler periodically checks displays and player windows for drift
// and reports it to the synchronizer.
type Reconciler struct {
	interval time.Duration
	class    string
	backend  platform.Backend
	sync     *StateSynchronizer
	logger   *slog.Logger

	displays []platform.Display
	primed   bool
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, backend platform.Backend, sync *StateSynchronizer) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		class:    cfg.WindowClass,
		backend:  backend,
		sync:     sync,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval, "window_class", r.class)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single reconciliation pass. Not safe for
// concurrent use.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	displays, err := r.backend.Displays()
	if err != nil {
		r.logger.Error("reconciler: failed to list displays", "error", err)
	} else {
		if r.primed {
			switch change := classifyDisplays(r.displays, displays); change {
			case displaysRearranged:
				r.logger.Info("reconciler: displays rearranged", "count", len(displays))
				r.sync.NotifyScreens(change)
			case displayParamsChanged:
				r.logger.Info("reconciler: display parameters changed")
				r.sync.NotifyScreens(change)
			}
		}
		r.displays = displays
		r.primed = true
	}

	windows, err := r.backend.FindWindows(r.class)
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}
	r.sync.Reconcile(windows)
}
