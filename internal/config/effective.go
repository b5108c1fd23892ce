package config

import (
	"fmt"
	"time"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/transition"
)

// ValidationError reports a bad value at a dotted yaml path, located in the
// file that set it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw on the defaults. Validation is separate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if w := raw.Window; w != nil {
		out := &cfg.Window
		out.LockAspect = derefBool(w.LockAspect, out.LockAspect)
		out.MinVideoWidth = derefInt(w.MinVideoWidth, out.MinVideoWidth)
		out.MinVideoHeight = derefInt(w.MinVideoHeight, out.MinVideoHeight)
		out.InitialWidth = derefInt(w.InitialWidth, out.InitialWidth)
		out.InitialHeight = derefInt(w.InitialHeight, out.InitialHeight)
		out.ResizeTiming = derefString(w.ResizeTiming, out.ResizeTiming)
		out.Fit = derefString(w.Fit, out.Fit)
		out.LegacyFullScreen = derefBool(w.LegacyFullScreen, out.LegacyFullScreen)
		out.CameraHousingHeight = derefInt(w.CameraHousingHeight, out.CameraHousingHeight)
		out.CoverCameraHousing = derefBool(w.CoverCameraHousing, out.CoverCameraHousing)
		out.EnableOSC = derefBool(w.EnableOSC, out.EnableOSC)
		out.OSCPosition = derefString(w.OSCPosition, out.OSCPosition)
		out.TopBarPlacement = derefString(w.TopBarPlacement, out.TopBarPlacement)
		out.BottomBarPlacement = derefString(w.BottomBarPlacement, out.BottomBarPlacement)
	}

	if m := raw.Metrics; m != nil {
		out := &cfg.Metrics
		out.TitleBarHeight = derefInt(m.TitleBarHeight, out.TitleBarHeight)
		out.OSCBarHeight = derefInt(m.OSCBarHeight, out.OSCBarHeight)
		out.InteractivePanelHeight = derefInt(m.InteractivePanelHeight, out.InteractivePanelHeight)
		out.MusicControlBarHeight = derefInt(m.MusicControlBarHeight, out.MusicControlBarHeight)
		out.MusicMinWidth = derefInt(m.MusicMinWidth, out.MusicMinWidth)
		out.MusicMaxWidth = derefInt(m.MusicMaxWidth, out.MusicMaxWidth)
		out.PlaylistMinHeight = derefInt(m.PlaylistMinHeight, out.PlaylistMinHeight)
		out.SidebarWidth = derefInt(m.SidebarWidth, out.SidebarWidth)
	}

	if a := raw.Animation; a != nil {
		out := &cfg.Animation
		out.Enabled = derefBool(a.Enabled, out.Enabled)
		out.FadeMS = derefInt(a.FadeMS, out.FadeMS)
		out.PanelMS = derefInt(a.PanelMS, out.PanelMS)
		out.FullScreenMS = derefInt(a.FullScreenMS, out.FullScreenMS)
		out.StallTimeoutMS = derefInt(a.StallTimeoutMS, out.StallTimeoutMS)
		out.ScreenSettleMS = derefInt(a.ScreenSettleMS, out.ScreenSettleMS)
	}

	if d := raw.Daemon; d != nil {
		out := &cfg.Daemon
		out.WindowClass = derefString(d.WindowClass, out.WindowClass)
		out.StateKey = derefString(d.StateKey, out.StateKey)
		out.ScreenPollIntervalMS = derefInt(d.ScreenPollIntervalMS, out.ScreenPollIntervalMS)
		out.LiveResizeQuietMS = derefInt(d.LiveResizeQuietMS, out.LiveResizeQuietMS)
	}

	return cfg, nil
}

// InitialSpec is the windowed layout the daemon starts with when nothing
// is persisted.
func (c *Config) InitialSpec() layout.Spec {
	spec := layout.DefaultSpec()
	spec.EnableOSC = c.Window.EnableOSC
	spec.OSCPosition, _ = layout.ParseOSCPosition(c.Window.OSCPosition)
	spec.TopBarPlacement, _ = layout.ParsePlacement(c.Window.TopBarPlacement)
	spec.BottomBarPlacement, _ = layout.ParsePlacement(c.Window.BottomBarPlacement)
	return spec
}

// ControllerConfig converts the effective config for the geometry
// controller. The config must have been validated.
func (c *Config) ControllerConfig() (controller.Config, error) {
	timing, err := controller.ParseResizeTiming(c.Window.ResizeTiming)
	if err != nil {
		return controller.Config{}, &ValidationError{Path: "window.resize_timing", Err: err}
	}
	fit, err := geometry.ParseFitOption(c.Window.Fit)
	if err != nil {
		return controller.Config{}, &ValidationError{Path: "window.fit", Err: err}
	}

	out := controller.DefaultConfig()
	out.Metrics = layout.Metrics{
		TitleBarHeight:         float64(c.Metrics.TitleBarHeight),
		OSCBarHeight:           float64(c.Metrics.OSCBarHeight),
		InteractivePanelHeight: float64(c.Metrics.InteractivePanelHeight),
		MusicControlBarHeight:  float64(c.Metrics.MusicControlBarHeight),
		SidebarWidth:           float64(c.Metrics.SidebarWidth),
	}
	out.MinVideoSize = geometry.Size{W: float64(c.Window.MinVideoWidth), H: float64(c.Window.MinVideoHeight)}
	out.LockAspect = c.Window.LockAspect
	out.Fit = fit
	out.ResizeTiming = timing
	out.InitialSpec = c.InitialSpec()
	out.InitialViewport = geometry.Size{W: float64(c.Window.InitialWidth), H: float64(c.Window.InitialHeight)}
	out.MusicMinWidth = float64(c.Metrics.MusicMinWidth)
	out.MusicMaxWidth = float64(c.Metrics.MusicMaxWidth)
	out.PlaylistMinHeight = float64(c.Metrics.PlaylistMinHeight)
	out.CoverCameraHousing = c.Window.CoverCameraHousing
	out.StallTimeout = ms(c.Animation.StallTimeoutMS)
	out.ScreenSettle = ms(c.Animation.ScreenSettleMS)
	if c.Animation.Enabled {
		out.Durations = transition.Durations{
			Fade:       ms(c.Animation.FadeMS),
			Panel:      ms(c.Animation.PanelMS),
			FullScreen: ms(c.Animation.FullScreenMS),
		}
	} else {
		out.Durations = transition.Durations{}
	}
	return out, nil
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
