package controller

import (
	"sync"

	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// Status is a read-only view of a controller for the control surfaces.
type Status struct {
	Mode             string               `json:"mode"`
	Spec             string               `json:"spec"`
	Frame            *geometry.Rect       `json:"frame,omitempty"`
	ScreenID         string               `json:"screen_id,omitempty"`
	VideoAspect      float64              `json:"video_aspect"`
	VideoRect        *geometry.Rect       `json:"video_rect,omitempty"`
	WindowedFrame    geometry.Rect        `json:"windowed_frame"`
	MusicFrame       *geometry.Rect       `json:"music_frame,omitempty"`
	FullScreen       bool                 `json:"fullscreen"`
	Transitioning    bool                 `json:"transitioning"`
	ActiveTransition string               `json:"active_transition,omitempty"`
	QueuedPhases     int                  `json:"queued_phases"`
	QueuedRequests   int                  `json:"queued_requests"`
	PendingVideo     bool                 `json:"pending_video"`
	DragAxis         string               `json:"drag_axis,omitempty"`
	LastVideo        engine.VideoGeometry `json:"last_video"`
	Tickets          map[string]uint64    `json:"tickets"`
	Screens          []geometry.Screen    `json:"screens"`
	LastError        string               `json:"last_error,omitempty"`
}

// Status reports the current state.
func (c *Controller) Status() Status {
	st := Status{
		Mode:             c.state.Mode().String(),
		Spec:             c.state.Spec.String(),
		VideoAspect:      c.windowed.VideoAspect,
		WindowedFrame:    c.windowed.Frame,
		FullScreen:       c.state.IsFullScreen(),
		Transitioning:    c.busy(),
		ActiveTransition: c.active,
		QueuedPhases:     c.pipe.Len(),
		QueuedRequests:   len(c.pendingModes),
		PendingVideo:     c.pendingVideo != nil,
		LastVideo:        c.lastVideo,
		Tickets:          c.tickets.Snapshot(),
		Screens:          c.screens,
	}
	if c.current != nil {
		f := c.current.WindowFrame()
		st.Frame = &f
		st.ScreenID = c.current.OnScreen()
		switch g := c.current.(type) {
		case geometry.Windowed:
			r := g.VideoRect()
			st.VideoRect = &r
		case geometry.FullScreen:
			r := g.VideoRect()
			st.VideoRect = &r
		case geometry.Music:
			if size, ok := g.VideoSize(); ok {
				r := geometry.RectFrom(g.Frame.Origin(), size)
				st.VideoRect = &r
			}
		}
	}
	if c.hasMusic {
		f := c.music.Frame
		st.MusicFrame = &f
	}
	if axis, ok := c.DragAxisLocked(); ok && c.cfg.LockAspect {
		st.DragAxis = axis.String()
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// Spec returns the layout currently in effect.
func (c *Controller) Spec() layout.Spec { return c.state.Spec }

// Registry maps window IDs to controllers. Windows never hold a pointer to
// their controller; event handlers look it up here instead.
type Registry struct {
	mu          sync.RWMutex
	controllers map[uint32]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[uint32]*Controller)}
}

func (r *Registry) Register(id uint32, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers[id] = c
}

func (r *Registry) Lookup(id uint32) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[id]
	return c, ok
}

func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, id)
}

// IDs lists the registered windows.
func (r *Registry) IDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint32, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	return ids
}
