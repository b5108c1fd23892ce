package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/ipc"
	"github.com/google/go-cmp/cmp"
)

type fakeClient struct {
	status    *ipc.StatusData
	displays  *ipc.DisplaysData
	err       error
	modes     []ipc.ModePayload
	videos    []ipc.VideoGeometryPayload
	opened    []uint32
	statusIDs []uint32
}

func (f *fakeClient) GetStatus(id uint32) (*ipc.StatusData, error) {
	f.statusIDs = append(f.statusIDs, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeClient) GetDisplays() (*ipc.DisplaysData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.displays, nil
}

func (f *fakeClient) RequestMode(p ipc.ModePayload) (*ipc.ModeData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.modes = append(f.modes, p)
	return &ipc.ModeData{Spec: p.Mode, Queued: len(f.modes) > 1}, nil
}

func (f *fakeClient) ReportVideoGeometry(p ipc.VideoGeometryPayload) error {
	f.videos = append(f.videos, p)
	return f.err
}

func (f *fakeClient) FileOpened(id uint32) error {
	f.opened = append(f.opened, id)
	return f.err
}

var testDisplay = ipc.DisplayInfo{
	ID:      "DP-1",
	Name:    "DP-1",
	Frame:   geometry.Rect{W: 1920, H: 1080},
	Visible: geometry.Rect{Y: 30, W: 1920, H: 1050},
	Primary: true,
}

func newTestClient() *fakeClient {
	frame := geometry.Rect{X: 560, Y: 315, W: 800, H: 450}
	return &fakeClient{
		status: &ipc.StatusData{
			UptimeSeconds: 12,
			WindowClass:   "mpv",
			Windows: []daemon.WindowStatus{{
				WindowID: 7,
				Title:    "video",
				Controller: controller.Status{
					Mode:        "windowed",
					Spec:        "windowed",
					Frame:       &frame,
					VideoAspect: 16.0 / 9.0,
				},
			}},
		},
		displays: &ipc.DisplaysData{Displays: []ipc.DisplayInfo{testDisplay}},
	}
}

func TestHandleGetStatus(t *testing.T) {
	client := newTestClient()
	s := NewServer(config.DefaultConfig(), client)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{WindowID: 7})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	frame := geometry.Rect{X: 560, Y: 315, W: 800, H: 450}
	want := GetStatusOutput{
		UptimeSeconds: 12,
		WindowClass:   "mpv",
		Windows: []WindowSummary{{
			WindowID:    7,
			Title:       "video",
			Mode:        "windowed",
			Spec:        "windowed",
			Frame:       &frame,
			VideoAspect: 16.0 / 9.0,
		}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
	if len(client.statusIDs) != 1 || client.statusIDs[0] != 7 {
		t.Fatalf("status ids = %v", client.statusIDs)
	}
}

func TestHandleRequestMode(t *testing.T) {
	client := newTestClient()
	s := NewServer(config.DefaultConfig(), client)

	if _, _, err := s.handleRequestMode(context.Background(), nil, RequestModeInput{}); err == nil {
		t.Fatal("expected error without mode")
	}

	yes := true
	_, out, err := s.handleRequestMode(context.Background(), nil, RequestModeInput{
		WindowID:             3,
		Mode:                 "music",
		MusicPlaylistVisible: &yes,
	})
	if err != nil {
		t.Fatalf("request_mode: %v", err)
	}
	if out.Spec != "music" || out.Queued {
		t.Fatalf("output = %+v", out)
	}
	if len(client.modes) != 1 {
		t.Fatalf("modes = %+v", client.modes)
	}
	got := client.modes[0]
	if got.WindowID != 3 || got.MusicPlaylistVisible == nil || !*got.MusicPlaylistVisible {
		t.Fatalf("payload = %+v", got)
	}
}

func TestHandleReportVideoGeometry(t *testing.T) {
	client := newTestClient()
	s := NewServer(config.DefaultConfig(), client)

	_, out, err := s.handleReportVideoGeometry(context.Background(), nil, ReportVideoGeometryInput{
		Width:    1440,
		Height:   1080,
		DARWidth: 16, DARHeight: 9,
		FileOpen: true,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(client.opened) != 1 || len(client.videos) != 1 {
		t.Fatalf("opened=%v videos=%v", client.opened, client.videos)
	}
	if client.videos[0].DARWidth != 16 || client.videos[0].Width != 1440 {
		t.Fatalf("payload = %+v", client.videos[0])
	}
	if out.Frame == nil || out.VideoAspect != 16.0/9.0 {
		t.Fatalf("output = %+v", out)
	}

	if _, _, err := s.handleReportVideoGeometry(context.Background(), nil, ReportVideoGeometryInput{Width: -1}); err == nil {
		t.Fatal("expected error for negative width")
	}
}

func TestHandleListDisplays_PropagatesErrors(t *testing.T) {
	client := newTestClient()
	client.err = errors.New("failed to connect to daemon")
	s := NewServer(config.DefaultConfig(), client)

	if _, _, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFitPreview(t *testing.T) {
	screens := (&ipc.DisplaysData{Displays: []ipc.DisplayInfo{testDisplay}}).Screens()
	cfg := config.DefaultConfig()

	tests := []struct {
		name      string
		args      FitPreviewInput
		wantSize  geometry.Size
		wantFit   string
		wantError string
	}{
		{
			name:     "natural size",
			args:     FitPreviewInput{VideoWidth: 640, VideoHeight: 480},
			wantSize: geometry.Size{W: 640, H: 480},
			wantFit:  "keep_inside",
		},
		{
			name:     "taller than work area shrinks",
			args:     FitPreviewInput{VideoWidth: 1920, VideoHeight: 1080},
			wantSize: geometry.Size{W: 1867, H: 1050},
			wantFit:  "keep_inside",
		},
		{
			name:     "below minimum floors",
			args:     FitPreviewInput{VideoWidth: 1600, VideoHeight: 900, Width: 16, Height: 9, Fit: "center_inside"},
			wantSize: geometry.Size{W: 285, H: 160},
			wantFit:  "center_inside",
		},
		{name: "empty video", args: FitPreviewInput{}, wantError: "must be positive"},
		{name: "bad fit", args: FitPreviewInput{VideoWidth: 4, VideoHeight: 3, Fit: "stretch"}, wantError: "stretch"},
		{name: "unknown display", args: FitPreviewInput{VideoWidth: 4, VideoHeight: 3, DisplayID: "HDMI-9"}, wantError: "unknown display"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FitPreview(cfg, screens, tt.args)
			if tt.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantError) {
					t.Fatalf("expected error containing %q, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("preview: %v", err)
			}
			if out.Frame.Size() != tt.wantSize || out.Fit != tt.wantFit {
				t.Fatalf("frame = %v fit = %s, want %v %s", out.Frame, out.Fit, tt.wantSize, tt.wantFit)
			}
			if !screens[0].Visible.ContainsRect(out.Frame) {
				t.Fatalf("frame %v not inside work area", out.Frame)
			}
		})
	}
}

func TestHandleFitPreview_FallsBackWithoutDaemon(t *testing.T) {
	client := newTestClient()
	client.err = errors.New("failed to connect to daemon")
	s := NewServer(config.DefaultConfig(), client)

	_, out, err := s.handleFitPreview(context.Background(), nil, FitPreviewInput{VideoWidth: 640, VideoHeight: 360})
	if err != nil {
		t.Fatalf("fit_preview: %v", err)
	}
	if out.DisplayID != geometry.DefaultScreen().ID || !strings.Contains(out.Warning, "daemon unavailable") {
		t.Fatalf("output = %+v", out)
	}
}
