// Package transition diffs two resolved layouts and compiles the difference
// into ordered phases of plain data.
package transition

import (
	"fmt"
	"math"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// Transition is a one-shot plan from one layout to another. It is built
// once and never modified.
type Transition struct {
	// Name is for logs only.
	Name string

	From, To                 layout.State
	FromGeometry, ToGeometry geometry.Snapshot

	// Middle is the intermediate frame committed while old bars close and
	// before the window takes its final size. Nil when not needed.
	Middle *geometry.Windowed

	// IsInitialLayout is set only for the first layout of a new window.
	IsInitialLayout bool
}

// New builds a transition and derives its middle geometry.
func New(name string, from, to layout.State, fromGeo, toGeo geometry.Snapshot, initial bool) Transition {
	t := Transition{
		Name:            name,
		From:            from,
		To:              to,
		FromGeometry:    fromGeo,
		ToGeometry:      toGeo,
		IsInitialLayout: initial,
	}
	if t.NeedsMiddleGeometry() {
		w := fromGeo.(geometry.Windowed)
		mid := geometry.WithBars(w,
			minInsets(from.OutsideBars, to.OutsideBars),
			minInsets(from.InsideBars, to.InsideBars),
			w.TopMarginHeight)
		t.Middle = &mid
	}
	return t
}

func (t Transition) String() string {
	return fmt.Sprintf("%s (%s -> %s)", t.Name, t.From.Spec, t.To.Spec)
}

func (t Transition) IsEnteringFullScreen() bool {
	return !t.From.IsFullScreen() && t.To.IsFullScreen()
}

func (t Transition) IsExitingFullScreen() bool {
	return t.From.IsFullScreen() && !t.To.IsFullScreen()
}

func (t Transition) IsTogglingFullScreen() bool {
	return t.IsEnteringFullScreen() || t.IsExitingFullScreen()
}

func (t Transition) IsEnteringLegacyFullScreen() bool {
	return !t.From.IsLegacyFullScreen() && t.To.IsLegacyFullScreen()
}

func (t Transition) IsExitingLegacyFullScreen() bool {
	return t.From.IsLegacyFullScreen() && !t.To.IsLegacyFullScreen()
}

// IsTogglingNativeFullScreen is true when the window manager's full screen
// state has to flip.
func (t Transition) IsTogglingNativeFullScreen() bool {
	return t.From.IsNativeFullScreen() != t.To.IsNativeFullScreen()
}

func (t Transition) IsEnteringMusicMode() bool {
	return !t.From.IsMusicMode() && t.To.IsMusicMode()
}

func (t Transition) IsExitingMusicMode() bool {
	return t.From.IsMusicMode() && !t.To.IsMusicMode()
}

func (t Transition) IsTogglingMusicMode() bool {
	return t.IsEnteringMusicMode() || t.IsExitingMusicMode()
}

func (t Transition) IsEnteringInteractiveMode() bool {
	return !t.From.IsInteractiveMode() && t.To.IsInteractiveMode()
}

func (t Transition) IsExitingInteractiveMode() bool {
	return t.From.IsInteractiveMode() && !t.To.IsInteractiveMode()
}

func (t Transition) IsTogglingInteractiveMode() bool {
	return t.IsEnteringInteractiveMode() || t.IsExitingInteractiveMode()
}

func (t Transition) IsTopBarPlacementChanging() bool {
	return t.From.TopBarPlacement != t.To.TopBarPlacement
}

func (t Transition) IsBottomBarPlacementChanging() bool {
	return t.From.BottomBarPlacement != t.To.BottomBarPlacement
}

func (t Transition) IsShowingLeadingSidebar() bool {
	return t.isShowing(layout.LeadingSidebar)
}

func (t Transition) IsHidingLeadingSidebar() bool {
	return t.isHiding(layout.LeadingSidebar)
}

func (t Transition) IsShowingTrailingSidebar() bool {
	return t.isShowing(layout.TrailingSidebar)
}

func (t Transition) IsHidingTrailingSidebar() bool {
	return t.isHiding(layout.TrailingSidebar)
}

// IsWindowFrameChanging compares the committed frames at both ends.
func (t Transition) IsWindowFrameChanging() bool {
	if t.FromGeometry == nil || t.ToGeometry == nil {
		return t.ToGeometry != nil
	}
	return t.FromGeometry.WindowFrame() != t.ToGeometry.WindowFrame()
}

// NeedsMiddleGeometry is true when a windowed window loses outside chrome
// and changes size: the bars close first against the old viewport, then the
// window resizes.
func (t Transition) NeedsMiddleGeometry() bool {
	if t.IsInitialLayout || !t.From.IsWindowed() || !t.To.IsWindowed() {
		return false
	}
	if _, ok := t.FromGeometry.(geometry.Windowed); !ok {
		return false
	}
	if !t.IsWindowFrameChanging() {
		return false
	}
	return shrinks(t.From.OutsideBars, t.To.OutsideBars) || shrinks(t.From.InsideBars, t.To.InsideBars)
}

func (t Transition) isShowing(e layout.Element) bool {
	return !t.From.Visibility(e).Shown() && t.To.Visibility(e).Shown()
}

func (t Transition) isHiding(e layout.Element) bool {
	return t.From.Visibility(e).Shown() && !t.To.Visibility(e).Shown()
}

// shrinks reports whether any side of b is thinner than in a.
func shrinks(a, b geometry.Insets) bool {
	return b.Top < a.Top || b.Bottom < a.Bottom || b.Leading < a.Leading || b.Trailing < a.Trailing
}

func minInsets(a, b geometry.Insets) geometry.Insets {
	return geometry.Insets{
		Top:      math.Min(a.Top, b.Top),
		Bottom:   math.Min(a.Bottom, b.Bottom),
		Leading:  math.Min(a.Leading, b.Leading),
		Trailing: math.Min(a.Trailing, b.Trailing),
	}
}
