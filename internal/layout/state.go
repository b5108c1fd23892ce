package layout

import (
	"fmt"

	"github.com/1broseidon/vidframe/internal/geometry"
)

// Metrics holds the chrome thicknesses a layout is resolved against. They
// come from config; Resolve never reads anything else.
type Metrics struct {
	TitleBarHeight         float64
	OSCBarHeight           float64
	InteractivePanelHeight float64
	MusicControlBarHeight  float64
	SidebarWidth           float64
}

// DefaultMetrics mirrors the config defaults.
func DefaultMetrics() Metrics {
	return Metrics{
		TitleBarHeight:         28,
		OSCBarHeight:           44,
		InteractivePanelHeight: 60,
		MusicControlBarHeight:  72,
		SidebarWidth:           280,
	}
}

// Visibility is how a chrome element is shown.
type Visibility int

const (
	Hidden Visibility = iota
	ShowFadeableTopBar
	ShowFadeableNonTopBar
	AlwaysShow
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case ShowFadeableTopBar:
		return "fadeable-top"
	case ShowFadeableNonTopBar:
		return "fadeable"
	case AlwaysShow:
		return "always"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// Shown reports whether the element exists in the layout at all.
func (v Visibility) Shown() bool { return v != Hidden }

// Fadeable reports whether the element hides with the cursor.
func (v Visibility) Fadeable() bool {
	return v == ShowFadeableTopBar || v == ShowFadeableNonTopBar
}

// Element identifies one piece of chrome.
type Element int

const (
	TitleBar Element = iota
	TopOSC
	BottomOSC
	FloatingOSC
	LeadingSidebar
	TrailingSidebar
	InteractivePanel
	MusicControlBar
	Playlist
	numElements
)

// Elements lists every element in a fixed order.
func Elements() []Element {
	out := make([]Element, 0, numElements)
	for e := Element(0); e < numElements; e++ {
		out = append(out, e)
	}
	return out
}

func (e Element) String() string {
	switch e {
	case TitleBar:
		return "title-bar"
	case TopOSC:
		return "top-osc"
	case BottomOSC:
		return "bottom-osc"
	case FloatingOSC:
		return "floating-osc"
	case LeadingSidebar:
		return "leading-sidebar"
	case TrailingSidebar:
		return "trailing-sidebar"
	case InteractivePanel:
		return "interactive-panel"
	case MusicControlBar:
		return "music-control-bar"
	case Playlist:
		return "playlist"
	default:
		return fmt.Sprintf("Element(%d)", int(e))
	}
}

// State is a fully resolved layout. It is derived from a Spec and Metrics
// and never mutated.
type State struct {
	Spec Spec

	TitleBarHeight       float64
	TopOSCHeight         float64
	TopBarHeight         float64
	BottomBarHeight      float64
	LeadingSidebarWidth  float64
	TrailingSidebarWidth float64
	TopBarPlacement      Placement
	BottomBarPlacement   Placement
	LeadingSidebarPlace  Placement
	TrailingSidebarPlace Placement

	// OutsideBars and InsideBars are ready to drop into a geometry snapshot.
	OutsideBars geometry.Insets
	InsideBars  geometry.Insets

	visibility [numElements]Visibility
}

// Visibility returns how e is shown in this layout.
func (s State) Visibility(e Element) Visibility {
	if e < 0 || e >= numElements {
		return Hidden
	}
	return s.visibility[e]
}

func (s State) Mode() ModeKind { return s.Spec.Kind() }

func (s State) IsFullScreen() bool {
	k := s.Mode()
	return k == KindFullScreen || k == KindFullScreenInteractive
}

func (s State) IsLegacyFullScreen() bool {
	switch m := s.Spec.Mode.(type) {
	case FullScreen:
		return m.Legacy
	case FullScreenInteractive:
		return m.Legacy
	case Windowed, WindowedInteractive, MusicMode, nil:
		return false
	default:
		panic(fmt.Sprintf("layout: unhandled mode %T", m))
	}
}

func (s State) IsNativeFullScreen() bool { return s.IsFullScreen() && !s.IsLegacyFullScreen() }
func (s State) IsMusicMode() bool        { return s.Mode() == KindMusicMode }

func (s State) IsWindowed() bool {
	k := s.Mode()
	return k == KindWindowed || k == KindWindowedInteractive
}

func (s State) IsInteractiveMode() bool {
	_, ok := s.Spec.Interactive()
	return ok
}

func (s State) String() string {
	return fmt.Sprintf("%s top=%g(%s) bottom=%g(%s)", s.Spec, s.TopBarHeight, s.TopBarPlacement, s.BottomBarHeight, s.BottomBarPlacement)
}

// Resolve derives the layout state for spec. It is pure: equal inputs give
// equal outputs.
func Resolve(spec Spec, m Metrics) State {
	if spec.Mode == nil {
		spec.Mode = Windowed{}
	}
	st := State{Spec: spec}

	switch mode := spec.Mode.(type) {
	case Windowed:
		resolveWindowed(&st, m)
	case WindowedInteractive:
		resolveWindowedInteractive(&st, m)
	case FullScreen:
		resolveFullScreen(&st, m, false)
	case FullScreenInteractive:
		resolveFullScreen(&st, m, true)
	case MusicMode:
		resolveMusic(&st, m)
	default:
		panic(fmt.Sprintf("layout: unhandled mode %T", mode))
	}

	st.TopBarHeight = st.TitleBarHeight + st.TopOSCHeight
	st.OutsideBars, st.InsideBars = st.bars()
	return st
}

func resolveWindowed(st *State, m Metrics) {
	spec := st.Spec
	st.TopBarPlacement = spec.TopBarPlacement
	if spec.IsLegacyStyle {
		st.TopBarPlacement = OutsideViewport
	}
	st.BottomBarPlacement = spec.BottomBarPlacement

	st.TitleBarHeight = m.TitleBarHeight
	st.visibility[TitleBar] = placementVisibility(st.TopBarPlacement, ShowFadeableTopBar)

	if spec.EnableOSC {
		switch spec.OSCPosition {
		case OSCTop:
			st.TopOSCHeight = m.OSCBarHeight
			st.visibility[TopOSC] = placementVisibility(st.TopBarPlacement, ShowFadeableTopBar)
		case OSCBottom:
			st.BottomBarHeight = m.OSCBarHeight
			st.visibility[BottomOSC] = placementVisibility(st.BottomBarPlacement, ShowFadeableNonTopBar)
		case OSCFloating:
			st.visibility[FloatingOSC] = ShowFadeableNonTopBar
		default:
			panic(fmt.Sprintf("layout: unhandled osc position %v", spec.OSCPosition))
		}
	}
	resolveSidebars(st, m, true)
}

func resolveWindowedInteractive(st *State, m Metrics) {
	st.TopBarPlacement = OutsideViewport
	st.BottomBarPlacement = OutsideViewport
	st.TitleBarHeight = m.TitleBarHeight
	st.visibility[TitleBar] = AlwaysShow
	st.BottomBarHeight = m.InteractivePanelHeight
	st.visibility[InteractivePanel] = AlwaysShow
	resolveSidebars(st, m, false)
}

func resolveFullScreen(st *State, m Metrics, interactive bool) {
	spec := st.Spec
	st.TopBarPlacement = InsideViewport
	st.BottomBarPlacement = InsideViewport

	if interactive {
		st.BottomBarHeight = m.InteractivePanelHeight
		st.visibility[InteractivePanel] = AlwaysShow
		resolveSidebars(st, m, false)
		return
	}
	if spec.EnableOSC {
		switch spec.OSCPosition {
		case OSCTop:
			st.TopOSCHeight = m.OSCBarHeight
			st.visibility[TopOSC] = ShowFadeableTopBar
		case OSCBottom:
			st.BottomBarHeight = m.OSCBarHeight
			st.visibility[BottomOSC] = ShowFadeableNonTopBar
		case OSCFloating:
			st.visibility[FloatingOSC] = ShowFadeableNonTopBar
		default:
			panic(fmt.Sprintf("layout: unhandled osc position %v", spec.OSCPosition))
		}
	}
	resolveSidebars(st, m, true)
	// Full screen sidebars always overlay the video.
	st.LeadingSidebarPlace = InsideViewport
	st.TrailingSidebarPlace = InsideViewport
}

func resolveMusic(st *State, m Metrics) {
	st.TopBarPlacement = OutsideViewport
	st.BottomBarPlacement = OutsideViewport
	st.BottomBarHeight = m.MusicControlBarHeight
	st.visibility[MusicControlBar] = AlwaysShow
	if st.Spec.MusicPlaylistVisible {
		st.visibility[Playlist] = AlwaysShow
	}
	resolveSidebars(st, m, false)
}

func resolveSidebars(st *State, m Metrics, allowed bool) {
	if !allowed {
		return
	}
	if sb := st.Spec.LeadingSidebar; sb.Visible {
		st.LeadingSidebarWidth = m.SidebarWidth
		st.LeadingSidebarPlace = sb.Placement
		st.visibility[LeadingSidebar] = AlwaysShow
	}
	if sb := st.Spec.TrailingSidebar; sb.Visible {
		st.TrailingSidebarWidth = m.SidebarWidth
		st.TrailingSidebarPlace = sb.Placement
		st.visibility[TrailingSidebar] = AlwaysShow
	}
}

func placementVisibility(p Placement, fadeable Visibility) Visibility {
	if p == OutsideViewport {
		return AlwaysShow
	}
	return fadeable
}

// bars splits the chrome into what steals from the window and what overlays
// the viewport. Music mode bars are owned by the music geometry, not here.
func (s State) bars() (outside, inside geometry.Insets) {
	if s.IsMusicMode() {
		return geometry.Insets{}, geometry.Insets{}
	}
	add := func(p Placement, in geometry.Insets) {
		if p == OutsideViewport {
			outside = outside.Add(in)
		} else {
			inside = inside.Add(in)
		}
	}
	add(s.TopBarPlacement, geometry.Insets{Top: s.TopBarHeight})
	add(s.BottomBarPlacement, geometry.Insets{Bottom: s.BottomBarHeight})
	add(s.LeadingSidebarPlace, geometry.Insets{Leading: s.LeadingSidebarWidth})
	add(s.TrailingSidebarPlace, geometry.Insets{Trailing: s.TrailingSidebarWidth})
	return outside, inside
}
