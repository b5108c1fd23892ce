package ipc

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/mainloop"
	"github.com/1broseidon/vidframe/internal/runtimepath"
	"github.com/1broseidon/vidframe/internal/store"
	"github.com/1broseidon/vidframe/internal/transition"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	goleak.VerifyTestMain(m)
}

type nopWindow struct{}

func (nopWindow) SetFrame(geometry.Rect) error    { return nil }
func (nopWindow) SetFullScreen(bool) error        { return nil }
func (nopWindow) ApplyStep(transition.Step) error { return nil }

type staticScreens geometry.Screens

func (s staticScreens) Screens() (geometry.Screens, error) { return geometry.Screens(s), nil }

const testWindowID = 7

var testScreens = staticScreens{{
	ID:      "DP-1",
	Name:    "DP-1",
	Frame:   geometry.Rect{W: 1920, H: 1080},
	Visible: geometry.Rect{Y: 30, W: 1920, H: 1050},
	Primary: true,
}}

// fakeHost drives one real controller synchronously.
type fakeHost struct {
	mu        sync.Mutex
	cfg       *config.Config
	d         *mainloop.Manual
	clock     *mainloop.FakeClock
	store     *store.Memory
	ctrl      *controller.Controller
	reloads   int
	reloadErr error
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		cfg:   config.DefaultConfig(),
		d:     &mainloop.Manual{},
		clock: mainloop.NewFakeClock(),
		store: &store.Memory{},
	}
	ccfg := controller.DefaultConfig()
	ccfg.Durations = transition.Durations{}
	h.ctrl = controller.New(ccfg, controller.Deps{
		Dispatcher: h.d,
		Clock:      h.clock,
		Window:     nopWindow{},
		Store:      h.store,
		Screens:    testScreens,
	})
	h.ctrl.Start()
	h.settle(t)
	return h
}

func (h *fakeHost) settle(t *testing.T) {
	h.settleLocked()
	if h.ctrl.Transitioning() {
		t.Fatalf("controller never settled")
	}
}

func (h *fakeHost) settleLocked() {
	for i := 0; i < 200; i++ {
		h.d.Drain()
		if !h.ctrl.Transitioning() && h.d.Pending() == 0 && h.clock.Pending() == 0 {
			return
		}
		h.clock.Advance(100 * time.Millisecond)
	}
}

func (h *fakeHost) Config() *config.Config { return h.cfg }
func (h *fakeHost) Uptime() time.Duration  { return 90 * time.Second }

func (h *fakeHost) Do(_ context.Context, id uint32, fn func(*controller.Controller) error) error {
	if id != 0 && id != testWindowID {
		return daemon.ErrNoWindow
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	err := fn(h.ctrl)
	h.settleLocked()
	return err
}

func (h *fakeHost) status() daemon.WindowStatus {
	return daemon.WindowStatus{WindowID: testWindowID, Title: "video", Controller: h.ctrl.Status()}
}

func (h *fakeHost) Status(_ context.Context, id uint32) (daemon.WindowStatus, error) {
	if id != testWindowID {
		return daemon.WindowStatus{}, daemon.ErrNoWindow
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status(), nil
}

func (h *fakeHost) Windows(context.Context) ([]daemon.WindowStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return []daemon.WindowStatus{h.status()}, nil
}

func (h *fakeHost) Resize(_ context.Context, id uint32, size geometry.Size) (geometry.Rect, error) {
	var frame geometry.Rect
	err := h.Do(context.Background(), id, func(c *controller.Controller) error {
		c.ResizeWindow(size, false)
		frame = c.Status().Frame.Round()
		c.CommitAndPersist()
		return nil
	})
	return frame, err
}

func (h *fakeHost) Screens() (geometry.Screens, error) { return testScreens.Screens() }

func (h *fakeHost) Reload() (*config.Config, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	if h.reloadErr != nil {
		return nil, h.reloadErr
	}
	return h.cfg, nil
}

func startServer(t *testing.T, host Host) *Client {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv(runtimepath.EnvSocket, "")
	srv, err := NewServer(host)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)

	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("socket perm = %o, want 600", perm)
	}
	return NewClient()
}

func TestServer_GetStatus(t *testing.T) {
	client := startServer(t, newFakeHost(t))

	st, err := client.GetStatus(0)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.DaemonRunning || st.UptimeSeconds != 90 || st.WindowClass != "mpv" {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Windows) != 1 || st.Windows[0].WindowID != testWindowID {
		t.Fatalf("windows = %+v", st.Windows)
	}
	if st.Windows[0].Controller.Mode != "windowed" {
		t.Fatalf("mode = %q", st.Windows[0].Controller.Mode)
	}

	if _, err := client.GetStatus(99); err == nil || !strings.Contains(err.Error(), "no player window") {
		t.Fatalf("expected unknown window error, got %v", err)
	}
}

func TestServer_RequestModeRoundTrip(t *testing.T) {
	client := startServer(t, newFakeHost(t))

	data, err := client.RequestMode(ModePayload{Mode: "fullscreen"})
	if err != nil {
		t.Fatalf("request mode: %v", err)
	}
	if data.Spec != "fullscreen" || data.Queued {
		t.Fatalf("mode data = %+v", data)
	}
	st, err := client.GetStatus(testWindowID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if c := st.Windows[0].Controller; !c.FullScreen || c.Mode != "fullscreen" {
		t.Fatalf("controller after fullscreen = %+v", c)
	}

	if _, err := client.RequestMode(ModePayload{Mode: "windowed"}); err != nil {
		t.Fatalf("back to windowed: %v", err)
	}
	st, _ = client.GetStatus(testWindowID)
	if st.Windows[0].Controller.FullScreen {
		t.Fatal("still full screen after windowed request")
	}
}

func TestServer_RequestModeRejectsUnknownMode(t *testing.T) {
	client := startServer(t, newFakeHost(t))

	_, err := client.RequestMode(ModePayload{Mode: "sideways"})
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}

func TestServer_VideoGeometryAndFileOpened(t *testing.T) {
	host := newFakeHost(t)
	client := startServer(t, host)

	if err := client.FileOpened(0); err != nil {
		t.Fatalf("file opened: %v", err)
	}
	err := client.ReportVideoGeometry(VideoGeometryPayload{Width: 640, Height: 480, Scale: 1})
	if err != nil {
		t.Fatalf("video geometry: %v", err)
	}

	st, err := client.GetStatus(testWindowID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	c := st.Windows[0].Controller
	if c.LastVideo.RawPixelSize != (geometry.Size{W: 640, H: 480}) || !c.LastVideo.HasValidSize {
		t.Fatalf("last video = %+v", c.LastVideo)
	}
	if !geometry.AspectEqual(c.VideoAspect, 4.0/3.0) {
		t.Fatalf("video aspect = %v", c.VideoAspect)
	}
}

func TestServer_ResizeAndCommit(t *testing.T) {
	host := newFakeHost(t)
	client := startServer(t, host)

	data, err := client.Resize(ResizePayload{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if data.Frame.W != 1280 || data.Frame.H < 700 || data.Frame.H > 760 {
		t.Fatalf("frame = %v", data.Frame)
	}

	host.mu.Lock()
	saves := host.store.Saves
	host.mu.Unlock()
	if err := client.Commit(0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	host.mu.Lock()
	defer host.mu.Unlock()
	if host.store.Saves != saves+1 {
		t.Fatalf("saves = %d, want %d", host.store.Saves, saves+1)
	}

	if _, err := client.Resize(ResizePayload{Width: 0, Height: 10}); err == nil {
		t.Fatal("expected error for empty size")
	}
}

func TestServer_GetDisplays(t *testing.T) {
	client := startServer(t, newFakeHost(t))

	data, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("displays: %v", err)
	}
	want := []DisplayInfo{{
		ID:      "DP-1",
		Name:    "DP-1",
		Frame:   geometry.Rect{W: 1920, H: 1080},
		Visible: geometry.Rect{Y: 30, W: 1920, H: 1050},
		Primary: true,
	}}
	if diff := cmp.Diff(want, data.Displays); diff != "" {
		t.Fatalf("displays mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geometry.Screens(testScreens), data.Screens()); diff != "" {
		t.Fatalf("screens mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Errors(t *testing.T) {
	t.Setenv(runtimepath.EnvSocket, "")
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	if err := NewClient().Ping(); !errors.Is(err, ErrDaemonUnavailable) {
		t.Fatalf("ping without daemon = %v", err)
	}

	client := startServer(t, newFakeHost(t))
	err := client.Commit(99)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("commit error = %T %v", err, err)
	}
	if remote.Command != CommandCommit || !strings.Contains(remote.Message, "no player window") {
		t.Fatalf("remote error = %+v", remote)
	}
}

func TestServer_Reload(t *testing.T) {
	host := newFakeHost(t)
	client := startServer(t, host)

	if err := client.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	host.mu.Lock()
	host.reloadErr = errors.New("bad yaml")
	host.mu.Unlock()
	if err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error, got %v", err)
	}
	host.mu.Lock()
	defer host.mu.Unlock()
	if host.reloads != 2 {
		t.Fatalf("reloads = %d", host.reloads)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	client := startServer(t, newFakeHost(t))

	conn, err := net.Dial("unix", client.socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(`{"command":"DANCE"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(line, `"status":"ERROR"`) || !strings.Contains(line, "Unknown command: DANCE") {
		t.Fatalf("response = %s", line)
	}
}

func TestModePayload_Spec(t *testing.T) {
	yes := true
	base := layout.DefaultSpec()
	tests := []struct {
		name    string
		payload ModePayload
		legacy  bool
		want    string
		check   func(t *testing.T, s layout.Spec)
	}{
		{name: "empty keeps base", want: "windowed"},
		{name: "fullscreen default legacy", payload: ModePayload{Mode: "fullscreen"}, legacy: true, want: "fullscreen/legacy"},
		{name: "explicit legacy off", payload: ModePayload{Mode: "fullscreen", Legacy: new(bool)}, legacy: true, want: "fullscreen"},
		{name: "interactive tool", payload: ModePayload{Mode: "windowed-interactive", Tool: "free-select"}, want: "windowed-interactive/free-select"},
		{
			name:    "bars and sidebars",
			payload: ModePayload{TopBarPlacement: "outside", OSCPosition: "bottom", LeadingSidebar: &SidebarPayload{Visible: true, Tab: "playlist"}},
			want:    "windowed",
			check: func(t *testing.T, s layout.Spec) {
				if s.TopBarPlacement != layout.OutsideViewport || s.OSCPosition != layout.OSCBottom {
					t.Fatalf("bars = %v %v", s.TopBarPlacement, s.OSCPosition)
				}
				if !s.LeadingSidebar.Visible || s.LeadingSidebar.Tab != "playlist" {
					t.Fatalf("leading sidebar = %+v", s.LeadingSidebar)
				}
			},
		},
		{
			name:    "music playlist",
			payload: ModePayload{Mode: "music", MusicPlaylistVisible: &yes},
			want:    "music",
			check: func(t *testing.T, s layout.Spec) {
				if !s.MusicPlaylistVisible || !s.MusicVideoVisible {
					t.Fatalf("music flags = %v %v", s.MusicVideoVisible, s.MusicPlaylistVisible)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tt.payload.Spec(base, tt.legacy)
			if err != nil {
				t.Fatalf("spec: %v", err)
			}
			if spec.String() != tt.want {
				t.Fatalf("spec = %s, want %s", spec, tt.want)
			}
			if tt.check != nil {
				tt.check(t, spec)
			}
		})
	}

	for _, bad := range []ModePayload{
		{Mode: "sideways"},
		{BottomBarPlacement: "above"},
		{TrailingSidebar: &SidebarPayload{Placement: "nowhere"}},
	} {
		if _, err := bad.Spec(base, false); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}
