package daemon

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/store"
)

type watch struct {
	onChange func()
	onGone   func()
}

// fakeBackend moves windows instantly and only delivers events when a
// test fires them.
type fakeBackend struct {
	mu         sync.Mutex
	displays   []platform.Display
	windows    []platform.Window
	bounds     map[platform.WindowID]platform.Rect
	moves      []platform.Rect
	fullScreen map[platform.WindowID]bool
	decorated  map[platform.WindowID]bool
	watches    map[platform.WindowID]watch
	displayErr error
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{
			ID:      0,
			Name:    "DP-1",
			Bounds:  platform.Rect{Width: 1920, Height: 1080},
			Usable:  platform.Rect{Y: 30, Width: 1920, Height: 1050},
			Primary: true,
		}},
		bounds:     make(map[platform.WindowID]platform.Rect),
		fullScreen: make(map[platform.WindowID]bool),
		decorated:  make(map[platform.WindowID]bool),
		watches:    make(map[platform.WindowID]watch),
	}
}

func (b *fakeBackend) addWindow(id platform.WindowID, r platform.Rect) platform.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := platform.Window{ID: id, PID: 4242, AppID: "mpv", Title: fmt.Sprintf("video %d", id), Bounds: r}
	b.windows = append(b.windows, w)
	b.bounds[id] = r
	return w
}

func (b *fakeBackend) removeWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.windows {
		if w.ID == id {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	delete(b.bounds, id)
}

func (b *fakeBackend) setDisplays(ds []platform.Display) {
	b.mu.Lock()
	b.displays = ds
	b.mu.Unlock()
}

// userResize simulates the window manager changing a window and fires
// its configure handler.
func (b *fakeBackend) userResize(id platform.WindowID, r platform.Rect) {
	b.mu.Lock()
	b.bounds[id] = r
	w := b.watches[id]
	b.mu.Unlock()
	if w.onChange != nil {
		w.onChange()
	}
}

// fire delivers a configure event for the current bounds.
func (b *fakeBackend) fire(id platform.WindowID) {
	b.mu.Lock()
	w := b.watches[id]
	b.mu.Unlock()
	if w.onChange != nil {
		w.onChange()
	}
}

func (b *fakeBackend) lastMove() (platform.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.moves) == 0 {
		return platform.Rect{}, false
	}
	return b.moves[len(b.moves)-1], true
}

func (b *fakeBackend) moveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.moves)
}

func (b *fakeBackend) isWatched(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.watches[id]
	return ok
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.displayErr != nil {
		return nil, b.displayErr
	}
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) FindWindows(class string) ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []platform.Window
	for _, w := range b.windows {
		if w.AppID == class {
			w.Bounds = b.bounds[w.ID]
			out = append(out, w)
		}
	}
	return out, nil
}

func (b *fakeBackend) WindowBounds(id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.bounds[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("no window %d", id)
	}
	return r, nil
}

func (b *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = append(b.moves, r)
	b.bounds[id] = r
	return nil
}

func (b *fakeBackend) SetFullScreen(id platform.WindowID, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fullScreen[id] = on
	return nil
}

func (b *fakeBackend) SetDecorated(id platform.WindowID, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decorated[id] = on
	return nil
}

func (b *fakeBackend) Watch(id platform.WindowID, onChange func(), onGone func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watches[id] = watch{onChange: onChange, onGone: onGone}
	return nil
}

func (b *fakeBackend) Unwatch(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watches, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syncHarness runs a synchronizer on a manual loop and a fake clock.
type syncHarness struct {
	t       *testing.T
	backend *fakeBackend
	d       *mainloop.Manual
	clock   *mainloop.FakeClock
	store   *store.Memory
	reg     *controller.Registry
	sync    *StateSynchronizer
}

func newSyncHarness(t *testing.T) *syncHarness {
	t.Helper()
	h := &syncHarness{
		t:       t,
		backend: newFakeBackend(),
		d:       &mainloop.Manual{},
		clock:   mainloop.NewFakeClock(),
		store:   &store.Memory{},
		reg:     controller.NewRegistry(),
	}
	h.sync = NewStateSynchronizer(controller.DefaultConfig(), 250*time.Millisecond, SyncDeps{
		Backend:    h.backend,
		Dispatcher: h.d,
		Clock:      h.clock,
		Store:      h.store,
		Screens:    NewScreenSource(h.backend, 0),
		Registry:   h.reg,
		Logger:     discardLogger(),
	})
	return h
}

// settle runs the loop and the clock until every controller is idle.
func (h *syncHarness) settle() {
	h.t.Helper()
	for i := 0; i < 200; i++ {
		h.d.Drain()
		busy := false
		for _, a := range h.sync.all() {
			busy = busy || a.ctrl.Transitioning()
		}
		if !busy && h.d.Pending() == 0 && h.clock.Pending() == 0 {
			return
		}
		h.clock.Advance(100 * time.Millisecond)
	}
	h.t.Fatalf("loop did not settle")
}

func (h *syncHarness) status(id uint32) controller.Status {
	h.t.Helper()
	a, ok := h.sync.lookup(id)
	if !ok {
		h.t.Fatalf("window %d not attached", id)
	}
	return a.ctrl.Status()
}
