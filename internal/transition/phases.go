package transition

import (
	"fmt"
	"time"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// PhaseKind orders the phases of a transition. Phases always run in this
// order; a phase with nothing to do is left out.
type PhaseKind int

const (
	PreTransition PhaseKind = iota
	FadeOutOldChrome
	CloseOldPanels
	UpdateStructure
	OpenNewPanels
	FadeInNewChrome
	PostTransition
)

func (k PhaseKind) String() string {
	switch k {
	case PreTransition:
		return "pre"
	case FadeOutOldChrome:
		return "fade-out"
	case CloseOldPanels:
		return "close-panels"
	case UpdateStructure:
		return "update-structure"
	case OpenNewPanels:
		return "open-panels"
	case FadeInNewChrome:
		return "fade-in"
	case PostTransition:
		return "post"
	default:
		return fmt.Sprintf("PhaseKind(%d)", int(k))
	}
}

// Op is one effect a phase asks the window to perform.
type Op int

const (
	// OpBegin marks the window as transitioning.
	OpBegin Op = iota
	// OpRememberWindowed saves the windowed frame before it is replaced.
	OpRememberWindowed
	// OpNotifyEngine tells the playback engine about full screen (Flag).
	OpNotifyEngine
	OpFadeOut
	OpHide
	// OpSetFrame commits Frame to the window.
	OpSetFrame
	// OpSetBorderless switches window decorations off (Flag) or on.
	OpSetBorderless
	// OpSetFullScreen flips the window manager's full screen state (Flag).
	OpSetFullScreen
	// OpSetPlacement moves Element inside (Flag false) or outside the viewport.
	OpSetPlacement
	// OpShow makes Element visible with Visibility, without animation.
	OpShow
	OpFadeIn
	// OpApplyVideoRect lays the video out inside Frame.
	OpApplyVideoRect
	// OpEnd clears the transitioning state and emits notifications.
	OpEnd
)

func (o Op) String() string {
	switch o {
	case OpBegin:
		return "begin"
	case OpRememberWindowed:
		return "remember-windowed"
	case OpNotifyEngine:
		return "notify-engine"
	case OpFadeOut:
		return "fade-out"
	case OpHide:
		return "hide"
	case OpSetFrame:
		return "set-frame"
	case OpSetBorderless:
		return "set-borderless"
	case OpSetFullScreen:
		return "set-fullscreen"
	case OpSetPlacement:
		return "set-placement"
	case OpShow:
		return "show"
	case OpFadeIn:
		return "fade-in"
	case OpApplyVideoRect:
		return "apply-video-rect"
	case OpEnd:
		return "end"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Step is a single effect. Only the fields relevant to Op are set.
type Step struct {
	Op         Op
	Element    layout.Element
	Visibility layout.Visibility
	Frame      geometry.Snapshot
	Flag       bool
}

func (s Step) String() string {
	switch s.Op {
	case OpFadeOut, OpHide, OpFadeIn:
		return fmt.Sprintf("%s(%s)", s.Op, s.Element)
	case OpShow:
		return fmt.Sprintf("%s(%s=%s)", s.Op, s.Element, s.Visibility)
	case OpSetPlacement:
		return fmt.Sprintf("%s(%s outside=%v)", s.Op, s.Element, s.Flag)
	case OpSetFrame, OpApplyVideoRect:
		if s.Frame == nil {
			return s.Op.String()
		}
		return fmt.Sprintf("%s(%s)", s.Op, s.Frame.WindowFrame())
	case OpNotifyEngine, OpSetBorderless, OpSetFullScreen:
		return fmt.Sprintf("%s(%v)", s.Op, s.Flag)
	default:
		return s.Op.String()
	}
}

// Phase is a group of steps that completes as a unit.
type Phase struct {
	Kind     PhaseKind
	Duration time.Duration
	Steps    []Step
}

// Durations are the animation lengths used when compiling phases.
type Durations struct {
	Fade       time.Duration
	Panel      time.Duration
	FullScreen time.Duration
}

// Phases compiles t into its ordered phase list. The initial layout gets
// zero durations and no fades.
func Phases(t Transition, d Durations) []Phase {
	if t.IsInitialLayout {
		d = Durations{}
	}
	c := compiler{t: t, d: d}
	phases := []Phase{c.pre()}
	for _, p := range []Phase{c.fadeOut(), c.closePanels(), c.updateStructure(), c.openPanels(), c.fadeIn()} {
		if len(p.Steps) > 0 {
			phases = append(phases, p)
		}
	}
	return append(phases, c.post())
}

type compiler struct {
	t Transition
	d Durations
}

func (c compiler) pre() Phase {
	t := c.t
	steps := []Step{{Op: OpBegin}}
	if !t.IsInitialLayout && t.From.IsWindowed() && !t.To.IsWindowed() {
		steps = append(steps, Step{Op: OpRememberWindowed, Frame: t.FromGeometry})
	}
	if t.IsTogglingFullScreen() {
		steps = append(steps, Step{Op: OpNotifyEngine, Flag: t.IsEnteringFullScreen()})
	}
	return Phase{Kind: PreTransition, Steps: steps}
}

// closing lists elements visible before and gone after.
func (c compiler) closing() []layout.Element {
	var out []layout.Element
	for _, e := range layout.Elements() {
		if c.t.From.Visibility(e).Shown() && !c.t.To.Visibility(e).Shown() {
			out = append(out, e)
		}
	}
	return out
}

// opening lists elements that appear or change how they are shown.
func (c compiler) opening() []layout.Element {
	var out []layout.Element
	for _, e := range layout.Elements() {
		from, to := c.t.From.Visibility(e), c.t.To.Visibility(e)
		if to.Shown() && from != to {
			out = append(out, e)
		}
	}
	return out
}

func (c compiler) fadeOut() Phase {
	p := Phase{Kind: FadeOutOldChrome, Duration: c.d.Fade}
	if c.t.IsInitialLayout {
		return p
	}
	for _, e := range c.closing() {
		p.Steps = append(p.Steps, Step{Op: OpFadeOut, Element: e})
	}
	return p
}

func (c compiler) closePanels() Phase {
	p := Phase{Kind: CloseOldPanels, Duration: c.d.Panel}
	for _, e := range c.closing() {
		p.Steps = append(p.Steps, Step{Op: OpHide, Element: e})
	}
	if c.t.Middle != nil {
		p.Steps = append(p.Steps, Step{Op: OpSetFrame, Frame: *c.t.Middle})
	}
	if len(p.Steps) == 0 {
		return p
	}
	if c.t.Middle == nil {
		// Hiding alone is instant.
		p.Duration = 0
	}
	return p
}

func (c compiler) updateStructure() Phase {
	t := c.t
	p := Phase{Kind: UpdateStructure}
	fromBorderless := t.From.IsLegacyFullScreen() || t.From.IsMusicMode()
	toBorderless := t.To.IsLegacyFullScreen() || t.To.IsMusicMode()
	if fromBorderless != toBorderless || t.IsInitialLayout {
		p.Steps = append(p.Steps, Step{Op: OpSetBorderless, Flag: toBorderless})
	}
	if t.IsTogglingNativeFullScreen() {
		p.Steps = append(p.Steps, Step{Op: OpSetFullScreen, Flag: t.To.IsNativeFullScreen()})
	}
	if t.IsTopBarPlacementChanging() {
		p.Steps = append(p.Steps, Step{Op: OpSetPlacement, Element: layout.TitleBar, Flag: t.To.TopBarPlacement == layout.OutsideViewport})
	}
	if t.IsBottomBarPlacementChanging() {
		p.Steps = append(p.Steps, Step{Op: OpSetPlacement, Element: layout.BottomOSC, Flag: t.To.BottomBarPlacement == layout.OutsideViewport})
	}
	return p
}

func (c compiler) openPanels() Phase {
	t := c.t
	p := Phase{Kind: OpenNewPanels, Duration: c.d.Panel}
	if t.IsTogglingFullScreen() {
		p.Duration = c.d.FullScreen
	}
	for _, e := range c.opening() {
		vis := t.To.Visibility(e)
		if !t.IsInitialLayout && vis.Fadeable() {
			// Fadeable chrome appears in the fade-in phase.
			continue
		}
		p.Steps = append(p.Steps, Step{Op: OpShow, Element: e, Visibility: vis})
	}
	if t.ToGeometry != nil && (t.IsWindowFrameChanging() || t.IsInitialLayout) {
		p.Steps = append(p.Steps, Step{Op: OpSetFrame, Frame: t.ToGeometry})
	}
	if t.ToGeometry != nil {
		p.Steps = append(p.Steps, Step{Op: OpApplyVideoRect, Frame: t.ToGeometry})
	}
	if !t.IsWindowFrameChanging() && !t.IsTogglingFullScreen() {
		// Nothing moves, so there is nothing to wait for.
		p.Duration = 0
	}
	return p
}

func (c compiler) fadeIn() Phase {
	p := Phase{Kind: FadeInNewChrome, Duration: c.d.Fade}
	if c.t.IsInitialLayout {
		return p
	}
	for _, e := range c.opening() {
		if vis := c.t.To.Visibility(e); vis.Fadeable() {
			p.Steps = append(p.Steps, Step{Op: OpFadeIn, Element: e, Visibility: vis})
		}
	}
	return p
}

func (c compiler) post() Phase {
	return Phase{Kind: PostTransition, Steps: []Step{{Op: OpEnd, Flag: c.t.To.IsFullScreen()}}}
}
