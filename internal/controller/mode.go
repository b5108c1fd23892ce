package controller

import (
	"fmt"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/transition"
)

// RequestMode moves the window to spec. While a transition is running the
// request waits for that transition's post phase.
func (c *Controller) RequestMode(spec layout.Spec) {
	if c.closed {
		return
	}
	if spec.Mode == nil {
		spec.Mode = layout.Windowed{}
	}
	if !c.started || c.busy() {
		c.pendingModes = append(c.pendingModes, spec)
		c.logger.Debug("mode request queued", "spec", spec.String(), "queued", len(c.pendingModes))
		return
	}
	c.startMode(spec)
}

func (c *Controller) startMode(spec layout.Spec) {
	if spec == c.state.Spec && !c.initial {
		c.logger.Debug("mode request is a no-op", "spec", spec.String())
		return
	}
	to := layout.Resolve(spec, c.cfg.Metrics)
	target := c.targetGeometry(to)
	name := fmt.Sprintf("%s->%s", c.state.Spec, spec)
	if c.initial {
		name = "initial:" + spec.String()
	}
	c.submit(transition.New(name, c.state, to, c.current, target, c.initial))
}

// targetGeometry computes the output geometry for a resolved layout from
// the cached per-mode snapshots.
func (c *Controller) targetGeometry(to layout.State) geometry.Snapshot {
	switch m := to.Spec.Mode.(type) {
	case layout.Windowed, layout.WindowedInteractive:
		return c.windowedFor(to)
	case layout.FullScreen:
		return c.fullScreenFor(to, m.Legacy)
	case layout.FullScreenInteractive:
		return c.fullScreenFor(to, m.Legacy)
	case layout.MusicMode:
		return c.musicFor(to)
	default:
		panic(fmt.Sprintf("controller: unhandled mode %T", m))
	}
}

func (c *Controller) windowedFor(to layout.State) geometry.Windowed {
	g := geometry.WithBars(c.windowed, to.OutsideBars, to.InsideBars, 0)
	screen := c.screenOf(g)
	out, v := geometry.Refit(g, c.cfg.Fit, c.bounds(screen))
	c.report(v)
	return out
}

func (c *Controller) fullScreenFor(to layout.State, legacy bool) geometry.FullScreen {
	screen := c.screenOf(c.windowed)
	return geometry.FullScreenFrom(c.windowed, screen, legacy, c.cfg.CoverCameraHousing, to.InsideBars)
}

func (c *Controller) musicFor(to layout.State) geometry.Music {
	aspect := c.windowed.VideoAspect
	var m geometry.Music
	if c.hasMusic {
		m = c.music
		m.VideoAspect = aspect
		m.ControlBarHeight = to.BottomBarHeight
	} else {
		screen := c.screenOf(c.windowed)
		m = geometry.DefaultMusic(aspect, to.BottomBarHeight, c.musicBounds(screen))
	}
	b := c.musicBounds(c.screens.Resolve(m.ScreenID, m.Frame))
	return geometry.MusicWithVisibility(m, to.Spec.MusicVideoVisible, to.Spec.MusicPlaylistVisible, b)
}
