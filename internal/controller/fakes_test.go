package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/store"
	"github.com/1broseidon/vidframe/internal/transition"
)

type fakeWindow struct {
	calls      []string
	frame      geometry.Rect
	fullScreen bool
}

func (w *fakeWindow) SetFrame(frame geometry.Rect) error {
	w.calls = append(w.calls, "frame:"+frame.String())
	w.frame = frame
	return nil
}

func (w *fakeWindow) SetFullScreen(on bool) error {
	w.calls = append(w.calls, fmt.Sprintf("fullscreen:%v", on))
	w.fullScreen = on
	return nil
}

func (w *fakeWindow) ApplyStep(step transition.Step) error {
	w.calls = append(w.calls, step.String())
	return nil
}

type fakeScreens struct {
	screens geometry.Screens
	queries int
}

func (s *fakeScreens) Screens() (geometry.Screens, error) {
	s.queries++
	return s.screens, nil
}

type events struct {
	resized    []geometry.Rect
	adjusted   []geometry.Rect
	fullScreen []bool
}

func (e *events) WindowResized(f geometry.Rect)      { e.resized = append(e.resized, f) }
func (e *events) WindowSizeAdjusted(f geometry.Rect) { e.adjusted = append(e.adjusted, f) }
func (e *events) WindowFullscreenChanged(on bool)    { e.fullScreen = append(e.fullScreen, on) }

// captureHandler records log messages with their attributes flattened.
type captureHandler struct {
	mu    sync.Mutex
	lines []string
	attrs []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Level.String() + " " + r.Message)
	for _, a := range h.attrs {
		b.WriteString(" " + a.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(" " + a.String())
		return true
	})
	h.mu.Lock()
	h.lines = append(h.lines, b.String())
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &shared{root: h, attrs: attrs}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

// shared forwards to the root handler so child loggers land in one log.
type shared struct {
	root  *captureHandler
	attrs []slog.Attr
}

func (s *shared) Enabled(ctx context.Context, l slog.Level) bool { return true }

func (s *shared) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(s.attrs...)
	return s.root.Handle(ctx, r)
}

func (s *shared) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &shared{root: s.root, attrs: append(append([]slog.Attr{}, s.attrs...), attrs...)}
}

func (s *shared) WithGroup(string) slog.Handler { return s }

func (h *captureHandler) matching(substr string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, l := range h.lines {
		if strings.Contains(l, substr) {
			out = append(out, l)
		}
	}
	return out
}

type harness struct {
	t       *testing.T
	d       *mainloop.Manual
	clock   *mainloop.FakeClock
	win     *fakeWindow
	eng     *engine.Recorder
	store   *store.Memory
	screens *fakeScreens
	events  *events
	log     *captureHandler
	c       *Controller
}

func testScreen() geometry.Screen {
	r := geometry.Rect{W: 1920, H: 1080}
	return geometry.Screen{ID: "DP-1", Frame: r, Visible: r, Primary: true}
}

// startFrame is the windowed frame restored at startup: 800x450, centered.
var startFrame = geometry.Rect{X: 560, Y: 315, W: 800, H: 450}

func newHarness(t *testing.T, tweak func(*Config)) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		d:       &mainloop.Manual{},
		clock:   mainloop.NewFakeClock(),
		win:     &fakeWindow{},
		eng:     &engine.Recorder{},
		store:   &store.Memory{},
		screens: &fakeScreens{screens: geometry.Screens{testScreen()}},
		events:  &events{},
		log:     &captureHandler{},
	}
	cfg := DefaultConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	_ = h.store.Save(store.Snapshot{
		Spec: layout.DefaultSpec(),
		Windowed: &geometry.Windowed{
			Frame:       startFrame,
			ScreenID:    "DP-1",
			Fit:         geometry.FitKeepInside,
			VideoAspect: 16.0 / 9.0,
		},
	})
	h.store.Saves = 0

	h.c = New(cfg, Deps{
		Dispatcher: h.d,
		Clock:      h.clock,
		Window:     h.win,
		Engine:     h.eng,
		Store:      h.store,
		Screens:    h.screens,
		Logger:     slog.New(h.log),
	})
	h.c.AddListener(h.events)
	h.c.Start()
	h.settle()
	return h
}

// settle runs the loop and the clock until nothing is left to do.
func (h *harness) settle() {
	h.t.Helper()
	for i := 0; i < 200; i++ {
		h.d.Drain()
		if !h.c.busy() && h.d.Pending() == 0 && h.clock.Pending() == 0 {
			return
		}
		h.clock.Advance(100 * time.Millisecond)
	}
	h.t.Fatalf("controller never settled: %+v", h.c.Status())
}

func (h *harness) windowed() geometry.Windowed {
	h.t.Helper()
	w, ok := h.c.current.(geometry.Windowed)
	if !ok {
		h.t.Fatalf("current geometry is %T, want Windowed", h.c.current)
	}
	return w
}
