package controller

import (
	"fmt"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/pipeline"
	"github.com/1broseidon/vidframe/internal/transition"
)

// submit compiles tr and queues its phases.
func (c *Controller) submit(tr transition.Transition) {
	phases := transition.Phases(tr, c.cfg.Durations)
	tasks := make([]pipeline.Task[work], len(phases))
	for i, p := range phases {
		tasks[i] = pipeline.Task[work]{
			Name:     tr.Name + "/" + p.Kind.String(),
			Duration: p.Duration,
			Value:    work{tr: &tr, phase: p},
		}
	}
	c.logger.Debug("transition submitted", "transition", tr.String(), "phases", len(phases))
	c.pipe.Submit(tasks...)
}

// runPhase executes the steps of one phase. Steps run synchronously; the
// pipeline holds the next phase until the phase duration has passed.
func (c *Controller) runPhase(task pipeline.Task[work], done func()) {
	defer done()
	if c.closed {
		// The window is gone: finish the remaining phases without effect.
		return
	}
	for _, step := range task.Value.phase.Steps {
		c.applyStep(task.Value.tr, step)
	}
}

func (c *Controller) applyStep(tr *transition.Transition, step transition.Step) {
	switch step.Op {
	case transition.OpBegin:
		c.active = tr.Name
	case transition.OpRememberWindowed:
		if w, ok := step.Frame.(geometry.Windowed); ok {
			c.windowed = w
		}
	case transition.OpNotifyEngine:
		c.engine.NotifyFullScreen(step.Flag)
	case transition.OpSetFrame:
		if step.Frame == nil {
			return
		}
		frame := step.Frame.WindowFrame().Round()
		if err := c.window.SetFrame(frame); err != nil {
			c.lastErr = err
			c.logger.Warn("failed to set window frame", "frame", frame.String(), "error", err)
		}
	case transition.OpSetFullScreen:
		if err := c.window.SetFullScreen(step.Flag); err != nil {
			c.lastErr = err
			c.logger.Warn("failed to set full screen", "on", step.Flag, "error", err)
		}
	case transition.OpEnd:
		c.commit(tr)
	case transition.OpFadeOut, transition.OpHide, transition.OpSetBorderless, transition.OpSetPlacement,
		transition.OpShow, transition.OpFadeIn, transition.OpApplyVideoRect:
		if err := c.window.ApplyStep(step); err != nil {
			c.logger.Warn("window step failed", "step", step.String(), "error", err)
		}
	default:
		panic(fmt.Sprintf("controller: unhandled step %v", step.Op))
	}
}

// commit makes the output of tr the current state, caches its geometry and
// tells everyone about it.
func (c *Controller) commit(tr *transition.Transition) {
	prevFrame := geometry.Rect{}
	if c.current != nil {
		prevFrame = c.current.WindowFrame().Round()
	}
	wasFullScreen := c.state.IsFullScreen()

	c.state = tr.To
	c.current = tr.ToGeometry
	switch g := tr.ToGeometry.(type) {
	case geometry.Windowed:
		c.windowed = g
	case geometry.Music:
		c.music = g
		c.hasMusic = true
	case geometry.FullScreen, nil:
	default:
		panic(fmt.Sprintf("controller: unhandled snapshot %T", g))
	}
	c.checkAuthoritative()
	c.initial = false
	c.active = ""

	c.logger.Info("transition finished", "transition", tr.Name, "mode", c.state.Mode().String())
	if c.current != nil {
		if frame := c.current.WindowFrame().Round(); frame != prevFrame {
			c.emitResized(frame)
		}
	}
	if wasFullScreen != c.state.IsFullScreen() || tr.IsInitialLayout && c.state.IsFullScreen() {
		c.emitFullScreen(c.state.IsFullScreen())
	}
	c.persist()
}

// checkAuthoritative verifies that the committed snapshot variant matches
// the mode.
func (c *Controller) checkAuthoritative() {
	ok := true
	switch c.state.Spec.Mode.(type) {
	case layout.Windowed, layout.WindowedInteractive:
		_, ok = c.current.(geometry.Windowed)
	case layout.FullScreen, layout.FullScreenInteractive:
		_, ok = c.current.(geometry.FullScreen)
	case layout.MusicMode:
		_, ok = c.current.(geometry.Music)
	default:
		panic(fmt.Sprintf("controller: unhandled mode %T", c.state.Spec.Mode))
	}
	if !ok {
		c.logger.Error("committed geometry does not match mode",
			"mode", c.state.Mode().String(),
			"geometry", fmt.Sprintf("%T", c.current))
	}
}

// drainPending starts the next deferred piece of work once the pipeline is
// idle. Video changes coalesce into one; mode requests run in order.
func (c *Controller) drainPending() {
	if c.closed || c.busy() {
		return
	}
	if c.pendingVideo != nil {
		g := *c.pendingVideo
		c.pendingVideo = nil
		c.applyVideo(g)
		if c.busy() {
			return
		}
	}
	if c.pendingRefit {
		c.pendingRefit = false
		c.refitToScreens()
		if c.busy() {
			return
		}
	}
	for len(c.pendingModes) > 0 && !c.busy() {
		spec := c.pendingModes[0]
		c.pendingModes = c.pendingModes[1:]
		c.startMode(spec)
	}
}
