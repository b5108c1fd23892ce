package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload        CommandType = "RELOAD"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetDisplays   CommandType = "GET_DISPLAYS"
	CommandRequestMode   CommandType = "REQUEST_MODE"
	CommandVideoGeometry CommandType = "VIDEO_GEOMETRY"
	CommandFileOpened    CommandType = "FILE_OPENED"
	CommandResize        CommandType = "RESIZE"
	CommandCommit        CommandType = "COMMIT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WindowPayload targets one window. Zero means the lowest attached window.
type WindowPayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64                 `json:"uptime_seconds"`
	DaemonRunning bool                  `json:"daemon_running"`
	WindowClass   string                `json:"window_class"`
	Windows       []daemon.WindowStatus `json:"windows"`
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Frame               geometry.Rect `json:"frame"`
	Visible             geometry.Rect `json:"visible"`
	CameraHousingHeight float64       `json:"camera_housing_height,omitempty"`
	Primary             bool          `json:"primary"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// NewDisplaysData describes screens for the wire.
func NewDisplaysData(screens geometry.Screens) DisplaysData {
	infos := make([]DisplayInfo, len(screens))
	for i, sc := range screens {
		infos[i] = DisplayInfo(sc)
	}
	return DisplaysData{Displays: infos}
}

// Screens converts the reply back to the fitter's screens.
func (d *DisplaysData) Screens() geometry.Screens {
	if d == nil {
		return nil
	}
	screens := make(geometry.Screens, len(d.Displays))
	for i, info := range d.Displays {
		screens[i] = geometry.Screen(info)
	}
	return screens
}

// SidebarPayload changes one sidebar.
type SidebarPayload struct {
	Visible   bool   `json:"visible"`
	Placement string `json:"placement,omitempty"`
	Tab       string `json:"tab,omitempty"`
}

// ModePayload is a partial layout: unset fields keep the current value.
type ModePayload struct {
	WindowID             uint32          `json:"window_id,omitempty"`
	Mode                 string          `json:"mode"`
	Tool                 string          `json:"tool,omitempty"`
	Legacy               *bool           `json:"legacy,omitempty"`
	TopBarPlacement      string          `json:"top_bar_placement,omitempty"`
	BottomBarPlacement   string          `json:"bottom_bar_placement,omitempty"`
	EnableOSC            *bool           `json:"enable_osc,omitempty"`
	OSCPosition          string          `json:"osc_position,omitempty"`
	LeadingSidebar       *SidebarPayload `json:"leading_sidebar,omitempty"`
	TrailingSidebar      *SidebarPayload `json:"trailing_sidebar,omitempty"`
	MusicVideoVisible    *bool           `json:"music_video_visible,omitempty"`
	MusicPlaylistVisible *bool           `json:"music_playlist_visible,omitempty"`
}

// Spec overlays the payload on base. defaultLegacy applies to full screen
// modes when the payload does not say.
func (p ModePayload) Spec(base layout.Spec, defaultLegacy bool) (layout.Spec, error) {
	legacy := defaultLegacy
	if p.Legacy != nil {
		legacy = *p.Legacy
	}
	spec := base
	if p.Mode != "" {
		mode, err := layout.ParseMode(p.Mode, p.Tool, legacy)
		if err != nil {
			return layout.Spec{}, err
		}
		spec.Mode = mode
	}
	spec.IsLegacyStyle = legacy

	var err error
	if p.TopBarPlacement != "" {
		if spec.TopBarPlacement, err = layout.ParsePlacement(p.TopBarPlacement); err != nil {
			return layout.Spec{}, err
		}
	}
	if p.BottomBarPlacement != "" {
		if spec.BottomBarPlacement, err = layout.ParsePlacement(p.BottomBarPlacement); err != nil {
			return layout.Spec{}, err
		}
	}
	if p.OSCPosition != "" {
		if spec.OSCPosition, err = layout.ParseOSCPosition(p.OSCPosition); err != nil {
			return layout.Spec{}, err
		}
	}
	if p.EnableOSC != nil {
		spec.EnableOSC = *p.EnableOSC
	}
	if p.LeadingSidebar != nil {
		if spec.LeadingSidebar, err = p.LeadingSidebar.sidebar(); err != nil {
			return layout.Spec{}, fmt.Errorf("leading sidebar: %w", err)
		}
	}
	if p.TrailingSidebar != nil {
		if spec.TrailingSidebar, err = p.TrailingSidebar.sidebar(); err != nil {
			return layout.Spec{}, fmt.Errorf("trailing sidebar: %w", err)
		}
	}
	if p.MusicVideoVisible != nil {
		spec.MusicVideoVisible = *p.MusicVideoVisible
	}
	if p.MusicPlaylistVisible != nil {
		spec.MusicPlaylistVisible = *p.MusicPlaylistVisible
	}
	return spec, nil
}

func (p SidebarPayload) sidebar() (layout.Sidebar, error) {
	placement, err := layout.ParsePlacement(p.Placement)
	if err != nil {
		return layout.Sidebar{}, err
	}
	return layout.Sidebar{Visible: p.Visible, Placement: placement, Tab: p.Tab}, nil
}

// ModeData is returned by REQUEST_MODE.
type ModeData struct {
	Spec string `json:"spec"`
	// Queued is true when another transition was still running.
	Queued bool `json:"queued"`
}

// VideoGeometryPayload is a decoder report. DAR fields are optional.
type VideoGeometryPayload struct {
	WindowID  uint32  `json:"window_id,omitempty"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	DARWidth  float64 `json:"dar_width,omitempty"`
	DARHeight float64 `json:"dar_height,omitempty"`
	Rotation  int     `json:"rotation,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// VideoGeometry converts the payload for the controller.
func (p VideoGeometryPayload) VideoGeometry() engine.VideoGeometry {
	return engine.VideoGeometry{
		RawPixelSize:      geometry.Size{W: p.Width, H: p.Height},
		DisplayAspectSize: geometry.Size{W: p.DARWidth, H: p.DARHeight},
		RotationDegrees:   p.Rotation,
		ScaleFactor:       p.Scale,
		HasValidSize:      p.Width > 0 && p.Height > 0,
	}
}

// ResizePayload asks for a window size.
type ResizePayload struct {
	WindowID uint32  `json:"window_id,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// ResizeData is the frame the window actually took.
type ResizeData struct {
	Frame geometry.Rect `json:"frame"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
