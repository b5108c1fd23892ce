package controller

import (
	"fmt"
	"time"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/ticket"
	"github.com/1broseidon/vidframe/internal/transition"
)

// NotifyScreensChanged reports that displays were added, removed or
// rearranged. Safe to call from any goroutine.
func (c *Controller) NotifyScreensChanged() {
	c.scheduleRecompute(ticket.ScreenChanged)
}

// NotifyScreenParamsChanged reports a resolution or work area change on
// existing displays. Safe to call from any goroutine.
func (c *Controller) NotifyScreenParamsChanged() {
	c.scheduleRecompute(ticket.ScreenParamsChanged)
}

func (c *Controller) scheduleRecompute(class ticket.Class) {
	tk := c.tickets.Take(class)
	c.clock.AfterFunc(c.screenSettle(), func() { c.recompute(class, tk) })
}

func (c *Controller) screenSettle() time.Duration {
	return time.Duration(c.settle.Load())
}

func (c *Controller) recompute(class ticket.Class, tk ticket.Ticket) {
	if !c.tickets.IsCurrent(class, tk) {
		c.logger.Debug("stale recompute dropped", "class", class.String(), "ticket", tk, "current", c.tickets.Current(class))
		return
	}
	if c.closed || !c.started {
		return
	}
	c.refreshScreens()
	if c.busy() {
		c.pendingRefit = true
		return
	}
	c.refitToScreens()
}

// NotifyWindowMoved records a window move made by the window manager. The
// cached geometry is updated once the moves settle. Safe to call from any
// goroutine.
func (c *Controller) NotifyWindowMoved(origin geometry.Point) {
	tk := c.tickets.Take(ticket.CachedGeometryUpdate)
	c.clock.AfterFunc(c.screenSettle(), func() {
		if c.tickets.IsCurrent(ticket.CachedGeometryUpdate, tk) {
			c.updateOrigin(origin)
		}
	})
}

func (c *Controller) updateOrigin(origin geometry.Point) {
	if c.closed || c.busy() || c.current == nil {
		return
	}
	switch g := c.current.(type) {
	case geometry.Windowed:
		g.Frame.X, g.Frame.Y = origin.X, origin.Y
		g.ScreenID = c.screens.ForRect(g.Frame).ID
		c.windowed, c.current = g, g
	case geometry.Music:
		g.Frame.X, g.Frame.Y = origin.X, origin.Y
		g.ScreenID = c.screens.ForRect(g.Frame).ID
		c.music, c.current = g, g
	case geometry.FullScreen:
		return
	default:
		panic(fmt.Sprintf("controller: unhandled snapshot %T", g))
	}
	c.logger.Debug("window moved", "origin", fmt.Sprintf("%g,%g", origin.X, origin.Y))
}

// refitToScreens re-applies the fit policy against the current screens and
// animates to the result when anything changed.
func (c *Controller) refitToScreens() {
	if c.current == nil {
		return
	}
	var target geometry.Snapshot
	switch m := c.state.Spec.Mode.(type) {
	case layout.Windowed, layout.WindowedInteractive:
		w := c.current.(geometry.Windowed)
		out, v := geometry.Refit(w, c.cfg.Fit, c.bounds(c.screenOf(w)))
		c.report(v)
		target = out
	case layout.FullScreen:
		target = c.fullScreenFor(c.state, m.Legacy)
	case layout.FullScreenInteractive:
		target = c.fullScreenFor(c.state, m.Legacy)
	case layout.MusicMode:
		mm := c.current.(geometry.Music)
		target = geometry.RefitMusic(mm, c.musicBounds(c.screenOf(mm)))
	default:
		panic(fmt.Sprintf("controller: unhandled mode %T", m))
	}

	if target.WindowFrame() == c.current.WindowFrame() && target.OnScreen() == c.current.OnScreen() {
		return
	}
	c.logger.Info("screen change moved window", "from", c.current.WindowFrame().String(), "to", target.WindowFrame().String())
	c.submit(transition.New("screen-refit", c.state, c.state, c.current, target, false))
}
