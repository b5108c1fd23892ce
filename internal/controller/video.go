package controller

import (
	"fmt"

	"github.com/1broseidon/vidframe/internal/engine"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/transition"
)

// NotifyFileOpened marks the next video geometry change as belonging to a
// freshly opened file.
func (c *Controller) NotifyFileOpened() {
	c.fileJustOpened = true
}

// ApplyVideoGeometryChange reacts to a new video geometry from the engine.
// Reports that arrive during a transition are coalesced: only the latest is
// applied, once the pipeline is idle.
func (c *Controller) ApplyVideoGeometryChange(g engine.VideoGeometry) {
	if c.closed {
		return
	}
	if !c.started || c.busy() {
		c.pendingVideo = &g
		c.logger.Debug("video geometry change deferred", "video", g.String())
		return
	}
	c.applyVideo(g)
}

func (c *Controller) applyVideo(g engine.VideoGeometry) {
	if !g.HasValidSize {
		// The window keeps its geometry and a pending file open still
		// counts for the next report.
		c.logger.Warn("video geometry without a size, keeping current frame",
			"frame", c.current.WindowFrame().String(),
			"file_just_opened", c.fileJustOpened)
		return
	}
	c.lastVideo = g
	justOpened := c.fileJustOpened
	c.fileJustOpened = false

	aspect, ok := g.Aspect()
	if !ok {
		c.logger.Warn("invalid video geometry, using 1:1", "video", g.String())
		aspect = 1
	}

	resize := c.cfg.ResizeTiming == ResizeAlways ||
		c.cfg.ResizeTiming == ResizeOnlyWhenFileJustOpened && justOpened

	var target geometry.Snapshot
	switch m := c.state.Spec.Mode.(type) {
	case layout.Windowed, layout.WindowedInteractive:
		w := c.videoWindowed(c.windowed, g, aspect, resize)
		target = w
		c.requestScale(w, g)
	case layout.FullScreen, layout.FullScreenInteractive:
		// The window keeps its frame; remember the new size for when full
		// screen ends.
		c.windowed = c.videoWindowed(c.windowed, g, aspect, resize)
		fs := c.current.(geometry.FullScreen)
		fs.VideoAspect = aspect
		target = fs
	case layout.MusicMode:
		c.windowed = c.videoWindowed(c.windowed, g, aspect, false)
		mm := c.current.(geometry.Music)
		target = geometry.MusicWithAspect(mm, aspect, c.musicBounds(c.screenOf(mm)))
	default:
		panic(fmt.Sprintf("controller: unhandled mode %T", m))
	}

	c.logger.Info("video geometry applied",
		"video", g.String(),
		"resize", resize,
		"frame", target.WindowFrame().String())
	c.submit(transition.New("video-geometry", c.state, c.state, c.current, target, false))
}

// videoWindowed applies a new aspect to a windowed snapshot. A full resize
// scales the window to the video's natural size. Otherwise the width is
// kept and only the height follows the aspect, shrinking both dimensions
// when the taller window would not fit on screen.
func (c *Controller) videoWindowed(w geometry.Windowed, g engine.VideoGeometry, aspect float64, resize bool) geometry.Windowed {
	w.VideoAspect = aspect
	screen := c.screenOf(w)
	b := c.bounds(screen)

	if resize {
		out, v := geometry.ScaleVideo(w, g.ScaledSize(), c.cfg.Fit, b)
		c.report(v)
		return out
	}
	if !c.cfg.LockAspect {
		out, v := geometry.Refit(w, c.cfg.Fit, b)
		c.report(v)
		return out
	}

	vp := w.ViewportSize()
	desired := geometry.Size{W: vp.W, H: vp.W / aspect}
	limit := screen.VisibleFrame(false).Size().Shrink(w.OutsideBars.Add(geometry.Insets{Top: w.TopMarginHeight}))
	if desired.H > limit.H && !limit.IsEmpty() {
		desired = geometry.AspectFit(aspect, geometry.Size{W: desired.W, H: limit.H})
	}
	fit := c.cfg.Fit
	if fit == geometry.FitNoConstraints {
		fit = geometry.FitKeepInside
	}
	out, v := geometry.ScaleViewport(w, desired, fit, b)
	c.report(v)
	return out
}

// requestScale tells the engine how large the video is drawn relative to
// its natural size.
func (c *Controller) requestScale(w geometry.Windowed, g engine.VideoGeometry) {
	natural := g.DisplaySize()
	if natural.W <= 0 {
		return
	}
	c.engine.RequestVideoScale(w.VideoSize().W / natural.W)
}
