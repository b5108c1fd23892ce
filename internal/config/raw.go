package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawWindow struct {
	LockAspect          *bool   `yaml:"lock_aspect"`
	MinVideoWidth       *int    `yaml:"min_video_width"`
	MinVideoHeight      *int    `yaml:"min_video_height"`
	InitialWidth        *int    `yaml:"initial_width"`
	InitialHeight       *int    `yaml:"initial_height"`
	ResizeTiming        *string `yaml:"resize_timing"`
	Fit                 *string `yaml:"fit"`
	LegacyFullScreen    *bool   `yaml:"legacy_fullscreen"`
	CameraHousingHeight *int    `yaml:"camera_housing_height"`
	CoverCameraHousing  *bool   `yaml:"cover_camera_housing"`
	EnableOSC           *bool   `yaml:"enable_osc"`
	OSCPosition         *string `yaml:"osc_position"`
	TopBarPlacement     *string `yaml:"top_bar_placement"`
	BottomBarPlacement  *string `yaml:"bottom_bar_placement"`
}

type RawMetrics struct {
	TitleBarHeight         *int `yaml:"title_bar_height"`
	OSCBarHeight           *int `yaml:"osc_bar_height"`
	InteractivePanelHeight *int `yaml:"interactive_panel_height"`
	MusicControlBarHeight  *int `yaml:"music_control_bar_height"`
	MusicMinWidth          *int `yaml:"music_min_width"`
	MusicMaxWidth          *int `yaml:"music_max_width"`
	PlaylistMinHeight      *int `yaml:"playlist_min_height"`
	SidebarWidth           *int `yaml:"sidebar_width"`
}

type RawAnimation struct {
	Enabled        *bool `yaml:"enabled"`
	FadeMS         *int  `yaml:"fade_ms"`
	PanelMS        *int  `yaml:"panel_ms"`
	FullScreenMS   *int  `yaml:"fullscreen_ms"`
	StallTimeoutMS *int  `yaml:"stall_timeout_ms"`
	ScreenSettleMS *int  `yaml:"screen_settle_ms"`
}

type RawDaemon struct {
	WindowClass          *string `yaml:"window_class"`
	StateKey             *string `yaml:"state_key"`
	ScreenPollIntervalMS *int    `yaml:"screen_poll_interval_ms"`
	LiveResizeQuietMS    *int    `yaml:"live_resize_quiet_ms"`
}

type RawConfig struct {
	Include    IncludeList   `yaml:"include"`
	Display    *string       `yaml:"display"`
	XAuthority *string       `yaml:"xauthority"`
	LogLevel   *string       `yaml:"log_level"`
	Window     *RawWindow    `yaml:"window"`
	Metrics    *RawMetrics   `yaml:"metrics"`
	Animation  *RawAnimation `yaml:"animation"`
	Daemon     *RawDaemon    `yaml:"daemon"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Window != nil {
		var base RawWindow
		if out.Window != nil {
			base = *out.Window
		}
		merged := base.merge(*overlay.Window)
		out.Window = &merged
	}
	if overlay.Metrics != nil {
		var base RawMetrics
		if out.Metrics != nil {
			base = *out.Metrics
		}
		merged := base.merge(*overlay.Metrics)
		out.Metrics = &merged
	}
	if overlay.Animation != nil {
		var base RawAnimation
		if out.Animation != nil {
			base = *out.Animation
		}
		merged := base.merge(*overlay.Animation)
		out.Animation = &merged
	}
	if overlay.Daemon != nil {
		var base RawDaemon
		if out.Daemon != nil {
			base = *out.Daemon
		}
		merged := base.merge(*overlay.Daemon)
		out.Daemon = &merged
	}

	return out
}

func (w RawWindow) merge(o RawWindow) RawWindow {
	out := w
	if o.LockAspect != nil {
		out.LockAspect = o.LockAspect
	}
	if o.MinVideoWidth != nil {
		out.MinVideoWidth = o.MinVideoWidth
	}
	if o.MinVideoHeight != nil {
		out.MinVideoHeight = o.MinVideoHeight
	}
	if o.InitialWidth != nil {
		out.InitialWidth = o.InitialWidth
	}
	if o.InitialHeight != nil {
		out.InitialHeight = o.InitialHeight
	}
	if o.ResizeTiming != nil {
		out.ResizeTiming = o.ResizeTiming
	}
	if o.Fit != nil {
		out.Fit = o.Fit
	}
	if o.LegacyFullScreen != nil {
		out.LegacyFullScreen = o.LegacyFullScreen
	}
	if o.CameraHousingHeight != nil {
		out.CameraHousingHeight = o.CameraHousingHeight
	}
	if o.CoverCameraHousing != nil {
		out.CoverCameraHousing = o.CoverCameraHousing
	}
	if o.EnableOSC != nil {
		out.EnableOSC = o.EnableOSC
	}
	if o.OSCPosition != nil {
		out.OSCPosition = o.OSCPosition
	}
	if o.TopBarPlacement != nil {
		out.TopBarPlacement = o.TopBarPlacement
	}
	if o.BottomBarPlacement != nil {
		out.BottomBarPlacement = o.BottomBarPlacement
	}
	return out
}

func (m RawMetrics) merge(o RawMetrics) RawMetrics {
	out := m
	if o.TitleBarHeight != nil {
		out.TitleBarHeight = o.TitleBarHeight
	}
	if o.OSCBarHeight != nil {
		out.OSCBarHeight = o.OSCBarHeight
	}
	if o.InteractivePanelHeight != nil {
		out.InteractivePanelHeight = o.InteractivePanelHeight
	}
	if o.MusicControlBarHeight != nil {
		out.MusicControlBarHeight = o.MusicControlBarHeight
	}
	if o.MusicMinWidth != nil {
		out.MusicMinWidth = o.MusicMinWidth
	}
	if o.MusicMaxWidth != nil {
		out.MusicMaxWidth = o.MusicMaxWidth
	}
	if o.PlaylistMinHeight != nil {
		out.PlaylistMinHeight = o.PlaylistMinHeight
	}
	if o.SidebarWidth != nil {
		out.SidebarWidth = o.SidebarWidth
	}
	return out
}

func (a RawAnimation) merge(o RawAnimation) RawAnimation {
	out := a
	if o.Enabled != nil {
		out.Enabled = o.Enabled
	}
	if o.FadeMS != nil {
		out.FadeMS = o.FadeMS
	}
	if o.PanelMS != nil {
		out.PanelMS = o.PanelMS
	}
	if o.FullScreenMS != nil {
		out.FullScreenMS = o.FullScreenMS
	}
	if o.StallTimeoutMS != nil {
		out.StallTimeoutMS = o.StallTimeoutMS
	}
	if o.ScreenSettleMS != nil {
		out.ScreenSettleMS = o.ScreenSettleMS
	}
	return out
}

func (d RawDaemon) merge(o RawDaemon) RawDaemon {
	out := d
	if o.WindowClass != nil {
		out.WindowClass = o.WindowClass
	}
	if o.StateKey != nil {
		out.StateKey = o.StateKey
	}
	if o.ScreenPollIntervalMS != nil {
		out.ScreenPollIntervalMS = o.ScreenPollIntervalMS
	}
	if o.LiveResizeQuietMS != nil {
		out.LiveResizeQuietMS = o.LiveResizeQuietMS
	}
	return out
}
