package mcp

import (
	"context"
	"fmt"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/ipc"
)

func summarize(w daemon.WindowStatus) WindowSummary {
	c := w.Controller
	return WindowSummary{
		WindowID:      w.WindowID,
		Title:         w.Title,
		Mode:          c.Mode,
		Spec:          c.Spec,
		Frame:         c.Frame,
		VideoRect:     c.VideoRect,
		VideoAspect:   c.VideoAspect,
		FullScreen:    c.FullScreen,
		Transitioning: c.Transitioning,
		LastError:     c.LastError,
	}
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.client.GetStatus(args.WindowID)
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	out := GetStatusOutput{
		UptimeSeconds: st.UptimeSeconds,
		WindowClass:   st.WindowClass,
		Windows:       make([]WindowSummary, 0, len(st.Windows)),
	}
	for _, w := range st.Windows {
		out.Windows = append(out.Windows, summarize(w))
	}
	return nil, out, nil
}

func (s *Server) handleRequestMode(_ context.Context, _ *mcpsdk.CallToolRequest, args RequestModeInput) (*mcpsdk.CallToolResult, RequestModeOutput, error) {
	if args.Mode == "" {
		return nil, RequestModeOutput{}, fmt.Errorf("mode is required")
	}
	data, err := s.client.RequestMode(ipc.ModePayload{
		WindowID:             args.WindowID,
		Mode:                 args.Mode,
		Tool:                 args.Tool,
		Legacy:               args.Legacy,
		TopBarPlacement:      args.TopBarPlacement,
		BottomBarPlacement:   args.BottomBarPlacement,
		OSCPosition:          args.OSCPosition,
		LeadingSidebar:       args.LeadingSidebar,
		TrailingSidebar:      args.TrailingSidebar,
		MusicVideoVisible:    args.MusicVideoVisible,
		MusicPlaylistVisible: args.MusicPlaylistVisible,
	})
	if err != nil {
		return nil, RequestModeOutput{}, err
	}
	log.Printf("MCP: requested mode %s (queued=%v)", data.Spec, data.Queued)
	return nil, RequestModeOutput{Spec: data.Spec, Queued: data.Queued}, nil
}

func (s *Server) handleReportVideoGeometry(_ context.Context, _ *mcpsdk.CallToolRequest, args ReportVideoGeometryInput) (*mcpsdk.CallToolResult, ReportVideoGeometryOutput, error) {
	if args.Width < 0 || args.Height < 0 {
		return nil, ReportVideoGeometryOutput{}, fmt.Errorf("width and height must not be negative")
	}
	if args.FileOpen {
		if err := s.client.FileOpened(args.WindowID); err != nil {
			return nil, ReportVideoGeometryOutput{}, err
		}
	}
	err := s.client.ReportVideoGeometry(ipc.VideoGeometryPayload{
		WindowID:  args.WindowID,
		Width:     args.Width,
		Height:    args.Height,
		DARWidth:  args.DARWidth,
		DARHeight: args.DARHeight,
		Rotation:  args.Rotation,
		Scale:     args.Scale,
	})
	if err != nil {
		return nil, ReportVideoGeometryOutput{}, err
	}

	st, err := s.client.GetStatus(args.WindowID)
	if err != nil || len(st.Windows) == 0 {
		// The report went through; only the follow-up read failed.
		return nil, ReportVideoGeometryOutput{}, nil
	}
	c := st.Windows[0].Controller
	return nil, ReportVideoGeometryOutput{VideoAspect: c.VideoAspect, Frame: c.Frame}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.client.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}
	return nil, ListDisplaysOutput{Displays: data.Displays}, nil
}

func (s *Server) handleFitPreview(_ context.Context, _ *mcpsdk.CallToolRequest, args FitPreviewInput) (*mcpsdk.CallToolResult, FitPreviewOutput, error) {
	var screens geometry.Screens
	var warning string
	if data, err := s.client.GetDisplays(); err == nil {
		screens = data.Screens()
	} else {
		warning = fmt.Sprintf("daemon unavailable, using a default display: %v", err)
	}
	out, err := FitPreview(s.config, screens, args)
	if err != nil {
		return nil, FitPreviewOutput{}, err
	}
	if out.Warning == "" {
		out.Warning = warning
	}
	return nil, out, nil
}

// FitPreview places a windowed player showing a video of the given size on
// one of screens, the way a controller with cfg would. No window moves.
func FitPreview(cfg *config.Config, screens geometry.Screens, args FitPreviewInput) (FitPreviewOutput, error) {
	video := geometry.Size{W: args.VideoWidth, H: args.VideoHeight}
	if video.IsEmpty() {
		return FitPreviewOutput{}, fmt.Errorf("video_width and video_height must be positive")
	}
	ccfg, err := cfg.ControllerConfig()
	if err != nil {
		return FitPreviewOutput{}, err
	}
	fit := ccfg.Fit
	if args.Fit != "" {
		if fit, err = geometry.ParseFitOption(args.Fit); err != nil {
			return FitPreviewOutput{}, err
		}
	}

	screen := screens.Primary()
	if len(screens) == 0 {
		screen = geometry.DefaultScreen()
	}
	if args.DisplayID != "" {
		var ok bool
		if screen, ok = screens.ByID(args.DisplayID); !ok {
			return FitPreviewOutput{}, fmt.Errorf("unknown display %q", args.DisplayID)
		}
	}

	desired := geometry.Size{W: args.Width, H: args.Height}
	if desired.IsEmpty() {
		desired = video
	}
	g := geometry.Windowed{
		Frame:       geometry.CenteredAt(screen.VisibleFrame(false).Center(), desired),
		ScreenID:    screen.ID,
		Fit:         fit,
		VideoAspect: video.Aspect(),
	}
	b := geometry.Bounds{Screen: screen, MinVideoSize: ccfg.MinVideoSize, LockAspect: ccfg.LockAspect}
	out, v := geometry.ScaleViewport(g, desired, fit, b)

	res := FitPreviewOutput{
		DisplayID: screen.ID,
		Fit:       fit.String(),
		Frame:     out.Frame.Round(),
		VideoRect: out.VideoRect(),
	}
	if v != nil {
		res.Warning = v.Error()
	}
	return res, nil
}
