package mcp

import (
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/ipc"
)

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"X11 window id (default: every attached player window)"`
}

// WindowSummary is a condensed view of one attached window.
type WindowSummary struct {
	WindowID      uint32         `json:"window_id"`
	Title         string         `json:"title,omitempty"`
	Mode          string         `json:"mode"`
	Spec          string         `json:"spec"`
	Frame         *geometry.Rect `json:"frame,omitempty"`
	VideoRect     *geometry.Rect `json:"video_rect,omitempty"`
	VideoAspect   float64        `json:"video_aspect"`
	FullScreen    bool           `json:"fullscreen"`
	Transitioning bool           `json:"transitioning"`
	LastError     string         `json:"last_error,omitempty"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	WindowClass   string          `json:"window_class"`
	Windows       []WindowSummary `json:"windows"`
}

// RequestModeInput is the input for the request_mode tool.
type RequestModeInput struct {
	WindowID             uint32              `json:"window_id,omitempty" jsonschema:"X11 window id (default: lowest attached window)"`
	Mode                 string              `json:"mode" jsonschema:"One of windowed, windowed-interactive, fullscreen, fullscreen-interactive, music"`
	Tool                 string              `json:"tool,omitempty" jsonschema:"Interactive tool: crop or free-select (interactive modes only)"`
	Legacy               *bool               `json:"legacy,omitempty" jsonschema:"Borderless full screen instead of the window manager full screen state"`
	TopBarPlacement      string              `json:"top_bar_placement,omitempty" jsonschema:"inside or outside the video"`
	BottomBarPlacement   string              `json:"bottom_bar_placement,omitempty" jsonschema:"inside or outside the video"`
	OSCPosition          string              `json:"osc_position,omitempty" jsonschema:"floating, top or bottom"`
	LeadingSidebar       *ipc.SidebarPayload `json:"leading_sidebar,omitempty" jsonschema:"Left sidebar visibility, placement and tab"`
	TrailingSidebar      *ipc.SidebarPayload `json:"trailing_sidebar,omitempty" jsonschema:"Right sidebar visibility, placement and tab"`
	MusicPlaylistVisible *bool               `json:"music_playlist_visible,omitempty" jsonschema:"Show the playlist in music mode"`
	MusicVideoVisible    *bool               `json:"music_video_visible,omitempty" jsonschema:"Show the video in music mode"`
}

// RequestModeOutput is the output for the request_mode tool.
type RequestModeOutput struct {
	Spec   string `json:"spec"`
	Queued bool   `json:"queued"`
}

// ReportVideoGeometryInput is the input for the report_video_geometry tool.
type ReportVideoGeometryInput struct {
	WindowID  uint32  `json:"window_id,omitempty" jsonschema:"X11 window id (default: lowest attached window)"`
	Width     float64 `json:"width" jsonschema:"Decoded frame width in pixels"`
	Height    float64 `json:"height" jsonschema:"Decoded frame height in pixels"`
	DARWidth  float64 `json:"dar_width,omitempty" jsonschema:"Display aspect numerator, for anamorphic video"`
	DARHeight float64 `json:"dar_height,omitempty" jsonschema:"Display aspect denominator, for anamorphic video"`
	Rotation  int     `json:"rotation,omitempty" jsonschema:"Rotation in degrees"`
	Scale     float64 `json:"scale,omitempty" jsonschema:"Current video scale factor"`
	FileOpen  bool    `json:"file_opened,omitempty" jsonschema:"Mark this report as the first one for a newly opened file"`
}

// ReportVideoGeometryOutput is the output for the report_video_geometry tool.
type ReportVideoGeometryOutput struct {
	VideoAspect float64        `json:"video_aspect"`
	Frame       *geometry.Rect `json:"frame,omitempty"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []ipc.DisplayInfo `json:"displays"`
}

// FitPreviewInput is the input for the fit_preview tool.
type FitPreviewInput struct {
	VideoWidth  float64 `json:"video_width" jsonschema:"Video width in pixels"`
	VideoHeight float64 `json:"video_height" jsonschema:"Video height in pixels"`
	Width       float64 `json:"width,omitempty" jsonschema:"Desired viewport width (default: video width)"`
	Height      float64 `json:"height,omitempty" jsonschema:"Desired viewport height (default: video height)"`
	Fit         string  `json:"fit,omitempty" jsonschema:"keep_inside, center_inside, scale_down or none (default: from config)"`
	DisplayID   string  `json:"display_id,omitempty" jsonschema:"Display to fit on (default: primary)"`
}

// FitPreviewOutput is the output for the fit_preview tool.
type FitPreviewOutput struct {
	DisplayID string        `json:"display_id"`
	Fit       string        `json:"fit"`
	Frame     geometry.Rect `json:"frame"`
	VideoRect geometry.Rect `json:"video_rect"`
	Warning   string        `json:"warning,omitempty"`
}
