package controller

import (
	"fmt"
	"math"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// DragAxis is the dimension the user controls during a live resize when
// the aspect is locked; the other one is derived.
type DragAxis int

const (
	// DeriveHeight keeps the requested width.
	DeriveHeight DragAxis = iota
	// DeriveWidth keeps the requested height.
	DeriveWidth
)

func (a DragAxis) String() string {
	if a == DeriveWidth {
		return "derive-width"
	}
	return "derive-height"
}

type dragLock struct {
	axis  DragAxis
	start geometry.Rect
}

// chooseAxis picks the dimension the user moved more. Equal deltas derive
// height from width.
func chooseAxis(from geometry.Size, to geometry.Size) DragAxis {
	dW := math.Abs(to.W - from.W)
	dH := math.Abs(to.H - from.H)
	if dH > dW {
		return DeriveWidth
	}
	return DeriveHeight
}

// ResizeWindow answers a resize request from the windowing system with the
// size the window should actually take. For a live drag with a locked
// aspect the derived axis is chosen on the first event and kept until
// EndLiveResize.
func (c *Controller) ResizeWindow(requested geometry.Size, isLiveDrag bool) geometry.Size {
	if c.closed || c.current == nil || c.busy() {
		if c.current == nil {
			return requested
		}
		return c.current.WindowFrame().Size().Round()
	}

	var accepted geometry.Size
	switch m := c.state.Spec.Mode.(type) {
	case layout.Windowed, layout.WindowedInteractive:
		accepted = c.resizeWindowed(requested, isLiveDrag)
	case layout.MusicMode:
		mm := c.current.(geometry.Music)
		b := c.musicBounds(c.screenOf(mm))
		mm = geometry.ResizeMusic(mm, requested, b)
		c.music, c.current = mm, mm
		accepted = mm.Frame.Size().Round()
	case layout.FullScreen, layout.FullScreenInteractive:
		// Full screen windows are sized by the screen.
		accepted = c.current.WindowFrame().Size().Round()
	default:
		panic(fmt.Sprintf("controller: unhandled mode %T", m))
	}

	if accepted != requested.Round() {
		frame := geometry.RectFrom(c.current.WindowFrame().Origin(), accepted)
		c.emitSizeAdjusted(frame)
	}
	return accepted
}

func (c *Controller) resizeWindowed(requested geometry.Size, live bool) geometry.Size {
	w := c.windowed
	b := c.bounds(c.screenOf(w))
	origin := w.Frame.Origin()

	// The fit policy runs once the gesture ends, not on every event.
	fit := c.cfg.Fit
	if live {
		fit = geometry.FitNoConstraints
		if c.drag == nil {
			c.drag = &dragLock{axis: chooseAxis(w.Frame.Size(), requested), start: w.Frame}
			c.logger.Debug("live resize started", "axis", c.drag.axis.String(), "locked", c.cfg.LockAspect, "from", w.Frame.String())
		}
	} else {
		c.drag = nil
	}

	var out geometry.Windowed
	var v *geometry.Violation
	switch {
	case !c.cfg.LockAspect:
		out, v = geometry.ScaleWindow(w, requested, fit, b)
	case live:
		out, v = geometry.ScaleViewport(w, c.derive(w, requested, c.drag.axis), fit, b)
	default:
		out, v = geometry.ScaleViewport(w, c.derive(w, requested, chooseAxis(w.Frame.Size(), requested)), fit, b)
	}
	c.report(v)

	if live || c.cfg.Fit == geometry.FitNoConstraints {
		// The window manager owns the position while the user drags.
		out.Frame.X, out.Frame.Y = origin.X, origin.Y
	}
	c.windowed, c.current = out, out
	return out.Frame.Size().Round()
}

// derive returns the viewport size for requested with one dimension
// following the video aspect.
func (c *Controller) derive(w geometry.Windowed, requested geometry.Size, axis DragAxis) geometry.Size {
	aspect, _ := geometry.SanitizeAspect(w.VideoAspect)
	vp := requested.Shrink(w.OutsideBars.Add(geometry.Insets{Top: w.TopMarginHeight}))
	if axis == DeriveWidth {
		return geometry.Size{W: vp.H * aspect, H: vp.H}
	}
	return geometry.Size{W: vp.W, H: vp.W / aspect}
}

// EndLiveResize releases the drag axis and commits the final frame.
func (c *Controller) EndLiveResize() {
	if c.drag == nil {
		return
	}
	c.logger.Debug("live resize ended", "axis", c.drag.axis.String(), "from", c.drag.start.String())
	start := c.drag.start
	c.drag = nil

	w, ok := c.current.(geometry.Windowed)
	if !ok {
		return
	}
	if c.cfg.Fit != geometry.FitNoConstraints {
		out, v := geometry.Fit(w, c.cfg.Fit, c.bounds(c.screenOf(w)))
		c.report(v)
		if out.Frame != w.Frame {
			if err := c.window.SetFrame(out.Frame.Round()); err != nil {
				c.logger.Warn("failed to set window frame", "error", err)
			}
		}
		w = out
		c.windowed, c.current = w, w
	}
	if frame := w.Frame.Round(); frame != start.Round() {
		c.emitResized(frame)
	}
	c.CommitAndPersist()
}

// DragAxisLocked reports the axis of the current live resize, if any. The
// axis only constrains the size while the aspect is locked.
func (c *Controller) DragAxisLocked() (DragAxis, bool) {
	if c.drag == nil {
		return 0, false
	}
	return c.drag.axis, true
}
