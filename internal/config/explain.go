package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	xauthority
//	log_level
//	window.lock_aspect
//	window.resize_timing
//	window.fit
//	metrics.title_bar_height
//	animation.fade_ms
//	daemon.window_class
//
// and every other leaf of the window, metrics, animation and daemon sections.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		switch parts[0] {
		case "display":
			return cfg.Display, nil
		case "xauthority":
			return cfg.XAuthority, nil
		case "log_level":
			return cfg.LogLevel, nil
		case "window":
			return cfg.Window, nil
		case "metrics":
			return cfg.Metrics, nil
		case "animation":
			return cfg.Animation, nil
		case "daemon":
			return cfg.Daemon, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	var fields map[string]any
	switch parts[0] {
	case "window":
		w := cfg.Window
		fields = map[string]any{
			"lock_aspect":           w.LockAspect,
			"min_video_width":       w.MinVideoWidth,
			"min_video_height":      w.MinVideoHeight,
			"initial_width":         w.InitialWidth,
			"initial_height":        w.InitialHeight,
			"resize_timing":         w.ResizeTiming,
			"fit":                   w.Fit,
			"legacy_fullscreen":     w.LegacyFullScreen,
			"camera_housing_height": w.CameraHousingHeight,
			"cover_camera_housing":  w.CoverCameraHousing,
			"enable_osc":            w.EnableOSC,
			"osc_position":          w.OSCPosition,
			"top_bar_placement":     w.TopBarPlacement,
			"bottom_bar_placement":  w.BottomBarPlacement,
		}
	case "metrics":
		m := cfg.Metrics
		fields = map[string]any{
			"title_bar_height":         m.TitleBarHeight,
			"osc_bar_height":           m.OSCBarHeight,
			"interactive_panel_height": m.InteractivePanelHeight,
			"music_control_bar_height": m.MusicControlBarHeight,
			"music_min_width":          m.MusicMinWidth,
			"music_max_width":          m.MusicMaxWidth,
			"playlist_min_height":      m.PlaylistMinHeight,
			"sidebar_width":            m.SidebarWidth,
		}
	case "animation":
		a := cfg.Animation
		fields = map[string]any{
			"enabled":          a.Enabled,
			"fade_ms":          a.FadeMS,
			"panel_ms":         a.PanelMS,
			"fullscreen_ms":    a.FullScreenMS,
			"stall_timeout_ms": a.StallTimeoutMS,
			"screen_settle_ms": a.ScreenSettleMS,
		}
	case "daemon":
		d := cfg.Daemon
		fields = map[string]any{
			"window_class":            d.WindowClass,
			"state_key":               cfg.StateKey(),
			"screen_poll_interval_ms": d.ScreenPollIntervalMS,
			"live_resize_quiet_ms":    d.LiveResizeQuietMS,
		}
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	v, ok := fields[parts[1]]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return v, nil
}
