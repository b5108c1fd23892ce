package layout

import "fmt"

// ModeKind names a mode for logging, persistence and comparisons.
type ModeKind int

const (
	KindWindowed ModeKind = iota
	KindWindowedInteractive
	KindFullScreen
	KindFullScreenInteractive
	KindMusicMode
)

func (k ModeKind) String() string {
	switch k {
	case KindWindowed:
		return "windowed"
	case KindWindowedInteractive:
		return "windowed-interactive"
	case KindFullScreen:
		return "fullscreen"
	case KindFullScreenInteractive:
		return "fullscreen-interactive"
	case KindMusicMode:
		return "music"
	default:
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}
}

// InteractiveKind is the tool active in an interactive mode.
type InteractiveKind int

const (
	Crop InteractiveKind = iota
	FreeSelect
)

func (k InteractiveKind) String() string {
	switch k {
	case Crop:
		return "crop"
	case FreeSelect:
		return "free-select"
	default:
		return fmt.Sprintf("InteractiveKind(%d)", int(k))
	}
}

// Mode is a closed set of variants, each carrying only the fields that make
// sense for it. Switch on it with a type switch that panics in default.
type Mode interface {
	Kind() ModeKind
	mode()
}

type Windowed struct{}

type WindowedInteractive struct {
	Tool InteractiveKind
}

type FullScreen struct {
	Legacy bool
}

type FullScreenInteractive struct {
	Tool   InteractiveKind
	Legacy bool
}

type MusicMode struct{}

func (Windowed) Kind() ModeKind              { return KindWindowed }
func (WindowedInteractive) Kind() ModeKind   { return KindWindowedInteractive }
func (FullScreen) Kind() ModeKind            { return KindFullScreen }
func (FullScreenInteractive) Kind() ModeKind { return KindFullScreenInteractive }
func (MusicMode) Kind() ModeKind             { return KindMusicMode }

func (Windowed) mode()              {}
func (WindowedInteractive) mode()   {}
func (FullScreen) mode()            {}
func (FullScreenInteractive) mode() {}
func (MusicMode) mode()             {}

// Placement says whether a bar overlays the viewport or sits beside it.
type Placement int

const (
	InsideViewport Placement = iota
	OutsideViewport
)

func (p Placement) String() string {
	if p == OutsideViewport {
		return "outside"
	}
	return "inside"
}

// OSCPosition is where the on-screen controller lives in windowed mode.
type OSCPosition int

const (
	OSCFloating OSCPosition = iota
	OSCTop
	OSCBottom
)

func (p OSCPosition) String() string {
	switch p {
	case OSCFloating:
		return "floating"
	case OSCTop:
		return "top"
	case OSCBottom:
		return "bottom"
	default:
		return fmt.Sprintf("OSCPosition(%d)", int(p))
	}
}

// Sidebar describes one sidebar in a spec.
type Sidebar struct {
	Visible   bool
	Placement Placement
	Tab       string
}

// Spec is the declarative description of a desired layout. It is a
// comparable value: two equal specs always resolve to equal states.
type Spec struct {
	Mode               Mode
	TopBarPlacement    Placement
	BottomBarPlacement Placement
	LeadingSidebar     Sidebar
	TrailingSidebar    Sidebar
	IsLegacyStyle      bool
	EnableOSC          bool
	OSCPosition        OSCPosition
	// Music mode only.
	MusicVideoVisible    bool
	MusicPlaylistVisible bool
}

// Interactive returns the interactive tool, if the mode has one.
func (s Spec) Interactive() (InteractiveKind, bool) {
	switch m := s.Mode.(type) {
	case WindowedInteractive:
		return m.Tool, true
	case FullScreenInteractive:
		return m.Tool, true
	case Windowed, FullScreen, MusicMode, nil:
		return 0, false
	default:
		panic(fmt.Sprintf("layout: unhandled mode %T", m))
	}
}

// Kind returns the mode kind; a nil mode counts as windowed.
func (s Spec) Kind() ModeKind {
	if s.Mode == nil {
		return KindWindowed
	}
	return s.Mode.Kind()
}

// WithMode returns a copy of s in a different mode.
func (s Spec) WithMode(m Mode) Spec {
	s.Mode = m
	return s
}

func (s Spec) String() string {
	name := s.Kind().String()
	if tool, ok := s.Interactive(); ok {
		name += "/" + tool.String()
	}
	if fs, ok := s.Mode.(FullScreen); ok && fs.Legacy {
		name += "/legacy"
	}
	return name
}

// DefaultSpec is the windowed layout a fresh window starts in.
func DefaultSpec() Spec {
	return Spec{
		Mode:               Windowed{},
		TopBarPlacement:    InsideViewport,
		BottomBarPlacement: InsideViewport,
		EnableOSC:          true,
		OSCPosition:        OSCFloating,
		MusicVideoVisible:  true,
	}
}
