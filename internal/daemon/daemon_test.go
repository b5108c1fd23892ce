package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startDaemon(t *testing.T, b *fakeBackend, st *store.Memory) (*Daemon, context.CancelFunc, <-chan error) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Animation.Enabled = false
	cfg.Daemon.ScreenPollIntervalMS = 100

	d, err := New(Options{Config: cfg, Backend: b, Store: st, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()
	return d, cancel, errCh
}

// waitIdle polls until the first window finished its initial layout.
func waitIdle(t *testing.T, d *Daemon) WindowStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		st, err := d.Status(ctx, 0)
		cancel()
		if err == nil && st.Controller.Frame != nil && !st.Controller.Transitioning {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("daemon never attached a window")
	return WindowStatus{}
}

func stop(t *testing.T, cancel context.CancelFunc, errCh <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("daemon did not stop")
	}
}

func TestDaemon_RunAttachesAndPersistsOnShutdown(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(100, platform.Rect{X: 10, Y: 40, Width: 640, Height: 360})
	st := &store.Memory{}

	d, cancel, errCh := startDaemon(t, b, st)
	status := waitIdle(t, d)
	if status.WindowID != 100 || status.Title != "video 100" {
		t.Fatalf("status = %+v", status)
	}
	if !status.Chrome.Decorated {
		t.Fatalf("windowed layout should be decorated")
	}

	stop(t, cancel, errCh)

	snap, ok := st.Last()
	if !ok || snap.Windowed == nil {
		t.Fatalf("geometry not persisted on shutdown")
	}
	if snap.Spec.Kind() != layout.KindWindowed {
		t.Fatalf("persisted spec = %s", snap.Spec)
	}
}

func TestDaemon_DoAndResize(t *testing.T) {
	b := newFakeBackend()
	b.addWindow(100, platform.Rect{X: 10, Y: 40, Width: 640, Height: 360})
	d, cancel, errCh := startDaemon(t, b, &store.Memory{})
	defer stop(t, cancel, errCh)
	waitIdle(t, d)

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	frame, err := d.Resize(ctx, 0, geometry.Size{W: 1000, H: 400})
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if got, _ := b.lastMove(); got != toPlatformRect(frame) {
		t.Fatalf("window at %+v, controller says %v", got, frame)
	}

	err = d.Do(ctx, 100, func(c *controller.Controller) error {
		c.RequestMode(c.Spec().WithMode(layout.MusicMode{}))
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	st := waitIdle(t, d)
	if st.Controller.Mode != layout.KindMusicMode.String() {
		t.Fatalf("mode = %q", st.Controller.Mode)
	}
	if st.Chrome.Decorated {
		t.Fatalf("music mode should be borderless")
	}

	wantErr := errors.New("boom")
	if err := d.Do(ctx, 0, func(*controller.Controller) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("do error = %v", err)
	}
}

func TestDaemon_NoWindow(t *testing.T) {
	d, cancel, errCh := startDaemon(t, newFakeBackend(), &store.Memory{})
	defer stop(t, cancel, errCh)

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	if _, err := d.Status(ctx, 0); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("status error = %v", err)
	}
	if _, err := d.Status(ctx, 12345); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("status error = %v", err)
	}
	ss, err := d.Screens()
	if err != nil || len(ss) != 1 || ss[0].ID != "DP-1" {
		t.Fatalf("screens = %v, %v", ss, err)
	}
}

func TestNew_RequiresConfigAndBackend(t *testing.T) {
	if _, err := New(Options{Backend: newFakeBackend()}); err == nil {
		t.Fatalf("expected config error")
	}
	if _, err := New(Options{Config: config.DefaultConfig()}); err == nil {
		t.Fatalf("expected backend error")
	}
}
