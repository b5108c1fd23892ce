package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"gopkg.in/yaml.v3"
)

// WindowConfig controls how the player window is sized and placed.
type WindowConfig struct {
	LockAspect     bool `yaml:"lock_aspect"`
	MinVideoWidth  int  `yaml:"min_video_width"`
	MinVideoHeight int  `yaml:"min_video_height"`
	// InitialWidth and InitialHeight size the viewport when nothing is persisted.
	InitialWidth  int `yaml:"initial_width"`
	InitialHeight int `yaml:"initial_height"`
	// ResizeTiming is one of: always, on_open, never.
	ResizeTiming string `yaml:"resize_timing"`
	// Fit is one of: keep_inside, center_inside, scale_down, none.
	Fit              string `yaml:"fit"`
	LegacyFullScreen bool   `yaml:"legacy_fullscreen"`
	// CameraHousingHeight marks the top of the primary display as unusable
	// (0 = no housing).
	CameraHousingHeight int  `yaml:"camera_housing_height"`
	CoverCameraHousing  bool `yaml:"cover_camera_housing"`
	EnableOSC           bool `yaml:"enable_osc"`
	// OSCPosition is one of: floating, top, bottom.
	OSCPosition string `yaml:"osc_position"`
	// TopBarPlacement and BottomBarPlacement are inside or outside.
	TopBarPlacement    string `yaml:"top_bar_placement"`
	BottomBarPlacement string `yaml:"bottom_bar_placement"`
}

// MetricsConfig holds chrome sizes in pixels.
type MetricsConfig struct {
	TitleBarHeight         int `yaml:"title_bar_height"`
	OSCBarHeight           int `yaml:"osc_bar_height"`
	InteractivePanelHeight int `yaml:"interactive_panel_height"`
	MusicControlBarHeight  int `yaml:"music_control_bar_height"`
	MusicMinWidth          int `yaml:"music_min_width"`
	MusicMaxWidth          int `yaml:"music_max_width"` // 0 = screen width
	PlaylistMinHeight      int `yaml:"playlist_min_height"`
	SidebarWidth           int `yaml:"sidebar_width"`
}

// AnimationConfig sets phase durations. With Enabled false every phase
// completes as soon as its steps ran.
type AnimationConfig struct {
	Enabled        bool `yaml:"enabled"`
	FadeMS         int  `yaml:"fade_ms"`
	PanelMS        int  `yaml:"panel_ms"`
	FullScreenMS   int  `yaml:"fullscreen_ms"`
	StallTimeoutMS int  `yaml:"stall_timeout_ms"`
	ScreenSettleMS int  `yaml:"screen_settle_ms"`
}

type DaemonConfig struct {
	// WindowClass selects the player window by WM_CLASS.
	WindowClass string `yaml:"window_class"`
	// StateKey names the persisted geometry file (default: the window class).
	StateKey             string `yaml:"state_key,omitempty"`
	ScreenPollIntervalMS int    `yaml:"screen_poll_interval_ms"`
	LiveResizeQuietMS    int    `yaml:"live_resize_quiet_ms"`
}

type Config struct {
	Display    string          `yaml:"display,omitempty"`
	XAuthority string          `yaml:"xauthority,omitempty"`
	LogLevel   string          `yaml:"log_level"`
	Window     WindowConfig    `yaml:"window"`
	Metrics    MetricsConfig   `yaml:"metrics"`
	Animation  AnimationConfig `yaml:"animation"`
	Daemon     DaemonConfig    `yaml:"daemon"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			LockAspect:         true,
			MinVideoWidth:      285,
			MinVideoHeight:     120,
			InitialWidth:       854,
			InitialHeight:      480,
			ResizeTiming:       "on_open",
			Fit:                "keep_inside",
			EnableOSC:          true,
			OSCPosition:        "floating",
			TopBarPlacement:    "inside",
			BottomBarPlacement: "inside",
		},
		Metrics: MetricsConfig{
			TitleBarHeight:         28,
			OSCBarHeight:           44,
			InteractivePanelHeight: 60,
			MusicControlBarHeight:  72,
			MusicMinWidth:          300,
			PlaylistMinHeight:      200,
			SidebarWidth:           280,
		},
		Animation: AnimationConfig{
			Enabled:        true,
			FadeMS:         150,
			PanelMS:        200,
			FullScreenMS:   300,
			StallTimeoutMS: 5000,
			ScreenSettleMS: 100,
		},
		Daemon: DaemonConfig{
			WindowClass:          "mpv",
			ScreenPollIntervalMS: 2000,
			LiveResizeQuietMS:    250,
		},
	}
}

// StateKey returns the key the daemon persists geometry under.
func (c *Config) StateKey() string {
	if key := strings.TrimSpace(c.Daemon.StateKey); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(c.Daemon.WindowClass))
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// includes from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	w := c.Window
	if w.MinVideoWidth <= 0 || w.MinVideoHeight <= 0 {
		return &ValidationError{Path: "window.min_video_width", Err: fmt.Errorf("minimum video size must be positive")}
	}
	if w.InitialWidth < w.MinVideoWidth || w.InitialHeight < w.MinVideoHeight {
		return &ValidationError{Path: "window.initial_width", Err: fmt.Errorf("initial size %dx%d is below the minimum video size", w.InitialWidth, w.InitialHeight)}
	}
	if _, err := controller.ParseResizeTiming(w.ResizeTiming); err != nil {
		return &ValidationError{Path: "window.resize_timing", Err: fmt.Errorf("resize_timing must be one of: always, on_open, never")}
	}
	if _, err := geometry.ParseFitOption(w.Fit); err != nil {
		return &ValidationError{Path: "window.fit", Err: err}
	}
	if w.CameraHousingHeight < 0 {
		return &ValidationError{Path: "window.camera_housing_height", Err: fmt.Errorf("camera_housing_height must be >= 0")}
	}
	if _, err := layout.ParseOSCPosition(w.OSCPosition); err != nil {
		return &ValidationError{Path: "window.osc_position", Err: err}
	}
	if _, err := layout.ParsePlacement(w.TopBarPlacement); err != nil {
		return &ValidationError{Path: "window.top_bar_placement", Err: err}
	}
	if _, err := layout.ParsePlacement(w.BottomBarPlacement); err != nil {
		return &ValidationError{Path: "window.bottom_bar_placement", Err: err}
	}

	m := c.Metrics
	for _, f := range []struct {
		path string
		v    int
	}{
		{"metrics.title_bar_height", m.TitleBarHeight},
		{"metrics.osc_bar_height", m.OSCBarHeight},
		{"metrics.interactive_panel_height", m.InteractivePanelHeight},
		{"metrics.music_control_bar_height", m.MusicControlBarHeight},
		{"metrics.music_min_width", m.MusicMinWidth},
		{"metrics.music_max_width", m.MusicMaxWidth},
		{"metrics.playlist_min_height", m.PlaylistMinHeight},
		{"metrics.sidebar_width", m.SidebarWidth},
	} {
		if f.v < 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("must be >= 0")}
		}
	}
	if m.MusicMaxWidth > 0 && m.MusicMaxWidth < m.MusicMinWidth {
		return &ValidationError{Path: "metrics.music_max_width", Err: fmt.Errorf("music_max_width must be 0 or >= music_min_width")}
	}

	a := c.Animation
	if a.FadeMS < 0 || a.PanelMS < 0 || a.FullScreenMS < 0 {
		return &ValidationError{Path: "animation", Err: fmt.Errorf("durations must be >= 0")}
	}
	if a.StallTimeoutMS <= 0 {
		return &ValidationError{Path: "animation.stall_timeout_ms", Err: fmt.Errorf("stall_timeout_ms must be positive")}
	}
	if a.ScreenSettleMS < 0 {
		return &ValidationError{Path: "animation.screen_settle_ms", Err: fmt.Errorf("screen_settle_ms must be >= 0")}
	}

	if strings.TrimSpace(c.Daemon.WindowClass) == "" {
		return &ValidationError{Path: "daemon.window_class", Err: fmt.Errorf("window_class is required")}
	}
	if strings.ContainsAny(c.StateKey(), `/\`) {
		return &ValidationError{Path: "daemon.state_key", Err: fmt.Errorf("state_key must not contain path separators")}
	}
	if c.Daemon.ScreenPollIntervalMS < 100 {
		return &ValidationError{Path: "daemon.screen_poll_interval_ms", Err: fmt.Errorf("screen_poll_interval_ms must be >= 100")}
	}
	if c.Daemon.LiveResizeQuietMS <= 0 {
		return &ValidationError{Path: "daemon.live_resize_quiet_ms", Err: fmt.Errorf("live_resize_quiet_ms must be positive")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string
	if !c.Window.LockAspect && c.Window.Fit == "scale_down" {
		warnings = append(warnings, "fit scale_down with lock_aspect false may change the video aspect")
	}
	if c.Window.CoverCameraHousing && c.Window.CameraHousingHeight == 0 {
		warnings = append(warnings, "cover_camera_housing has no effect without camera_housing_height")
	}
	return warnings
}
