// Package engine describes the playback engine as seen by the window: the
// video geometry it reports and the requests it accepts.
package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/1broseidon/vidframe/internal/geometry"
)

// VideoGeometry is reported once per decoder reconfiguration.
type VideoGeometry struct {
	RawPixelSize geometry.Size `json:"raw_pixel_size"`
	// DisplayAspectSize carries the display aspect (anamorphic content has a
	// different aspect than its pixels).
	DisplayAspectSize geometry.Size `json:"display_aspect_size"`
	RotationDegrees   int           `json:"rotation_degrees"`
	ScaleFactor       float64       `json:"scale_factor"`
	HasValidSize      bool          `json:"has_valid_size"`
}

// IsRotatedQuarter reports a 90 or 270 degree rotation.
func (g VideoGeometry) IsRotatedQuarter() bool {
	r := ((g.RotationDegrees % 360) + 360) % 360
	return r == 90 || r == 270
}

// DisplaySize is the size the video would have at scale 1, after
// anamorphic correction and rotation.
func (g VideoGeometry) DisplaySize() geometry.Size {
	size := g.RawPixelSize
	if a := g.DisplayAspectSize.Aspect(); a > 0 && size.H > 0 {
		size = geometry.Size{W: size.H * a, H: size.H}
	}
	if g.IsRotatedQuarter() {
		size = geometry.Size{W: size.H, H: size.W}
	}
	return size
}

// Aspect is the displayed aspect ratio, or false when the engine has no
// usable size yet.
func (g VideoGeometry) Aspect() (float64, bool) {
	if !g.HasValidSize {
		return 0, false
	}
	a := g.DisplaySize().Aspect()
	if !geometry.ValidAspect(a) {
		return 0, false
	}
	return a, true
}

// ScaledSize is the display size times ScaleFactor (1 when unset).
func (g VideoGeometry) ScaledSize() geometry.Size {
	s := g.ScaleFactor
	if s <= 0 || math.IsNaN(s) {
		s = 1
	}
	d := g.DisplaySize()
	return geometry.Size{W: d.W * s, H: d.H * s}
}

func (g VideoGeometry) String() string {
	if !g.HasValidSize {
		return "invalid"
	}
	return fmt.Sprintf("%s rot=%d scale=%g", g.DisplaySize(), g.RotationDegrees, g.ScaleFactor)
}

// Engine accepts requests from the window.
type Engine interface {
	// RequestVideoScale asks the engine to render at scale (window pixels
	// per video pixel).
	RequestVideoScale(scale float64)
	// NotifyFullScreen tells the engine the window is entering or leaving
	// full screen.
	NotifyFullScreen(on bool)
}

// Recorder is an Engine that remembers the last requests. The daemon uses
// it when no engine is attached so that status output can show them.
type Recorder struct {
	mu         sync.Mutex
	scale      float64
	fullScreen bool
	requests   int
}

func (r *Recorder) RequestVideoScale(scale float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scale = scale
	r.requests++
}

func (r *Recorder) NotifyFullScreen(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fullScreen = on
	r.requests++
}

// State returns the last requested scale, the full screen flag and the
// total number of requests.
func (r *Recorder) State() (scale float64, fullScreen bool, requests int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scale, r.fullScreen, r.requests
}
