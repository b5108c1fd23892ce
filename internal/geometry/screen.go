package geometry

import "fmt"

// FitOption is the policy for reconciling a window with its screen.
type FitOption int

const (
	// FitNoConstraints leaves the frame where it is, even off-screen.
	FitNoConstraints FitOption = iota
	// FitKeepInside clamps the origin so the window lies inside the visible
	// frame. The size is kept unless it cannot fit at all.
	FitKeepInside
	// FitCenterInside centers the window in the visible frame.
	FitCenterInside
	// FitScaleDown shrinks the window until it fits, then centers it.
	FitScaleDown
)

func (f FitOption) String() string {
	switch f {
	case FitNoConstraints:
		return "none"
	case FitKeepInside:
		return "keep_inside"
	case FitCenterInside:
		return "center_inside"
	case FitScaleDown:
		return "scale_down"
	default:
		return fmt.Sprintf("FitOption(%d)", int(f))
	}
}

// ParseFitOption maps a config/CLI name back to a FitOption.
func ParseFitOption(s string) (FitOption, error) {
	switch s {
	case "none", "no_constraints":
		return FitNoConstraints, nil
	case "keep_inside", "keep":
		return FitKeepInside, nil
	case "center_inside", "center":
		return FitCenterInside, nil
	case "scale_down":
		return FitScaleDown, nil
	default:
		return FitNoConstraints, fmt.Errorf("unknown fit option %q", s)
	}
}

// DefaultScreenID names the built-in screen used when nothing else resolves.
const DefaultScreenID = "default"

// Screen describes one display.
type Screen struct {
	ID   string
	Name string
	// Frame is the full display bounds.
	Frame Rect
	// Visible excludes panels, docks and menu bars.
	Visible Rect
	// CameraHousingHeight is the notch exclusion at the top of Frame.
	CameraHousingHeight float64
	Primary             bool
}

// DefaultScreen is the last resort when no display can be resolved.
func DefaultScreen() Screen {
	r := Rect{W: 1920, H: 1080}
	return Screen{ID: DefaultScreenID, Name: "default", Frame: r, Visible: r, Primary: true}
}

// VisibleFrame returns the area a window may occupy. With fullCoverage the
// whole display minus the camera housing is returned; otherwise the work
// area, additionally pushed below the camera housing if it overlaps it.
func (s Screen) VisibleFrame(fullCoverage bool) Rect {
	if fullCoverage {
		return s.Frame.Inset(Insets{Top: s.CameraHousingHeight})
	}
	vis := s.Visible
	if vis.Size().IsEmpty() {
		vis = s.Frame
	}
	if s.CameraHousingHeight > 0 {
		housingBottom := s.Frame.Y + s.CameraHousingHeight
		if vis.Y < housingBottom {
			cut := housingBottom - vis.Y
			vis = vis.Inset(Insets{Top: cut})
		}
	}
	return vis
}

// Screens is the current display configuration.
type Screens []Screen

// ByID looks a screen up by its identifier.
func (ss Screens) ByID(id string) (Screen, bool) {
	if id == "" {
		return Screen{}, false
	}
	for _, s := range ss {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}

// Primary returns the primary screen, the first screen, or DefaultScreen.
func (ss Screens) Primary() Screen {
	for _, s := range ss {
		if s.Primary {
			return s
		}
	}
	if len(ss) > 0 {
		return ss[0]
	}
	return DefaultScreen()
}

// ForRect returns the screen that owns r: the one containing its top-left
// corner, else the one containing its top-right corner, else the primary.
func (ss Screens) ForRect(r Rect) Screen {
	topLeft := Point{X: r.X, Y: r.Y}
	for _, s := range ss {
		if s.Frame.ContainsPoint(topLeft) {
			return s
		}
	}
	topRight := Point{X: r.MaxX() - 1, Y: r.Y}
	for _, s := range ss {
		if s.Frame.ContainsPoint(topRight) {
			return s
		}
	}
	return ss.Primary()
}

// Resolve prefers an explicit screen ID and falls back to ForRect.
func (ss Screens) Resolve(id string, r Rect) Screen {
	if s, ok := ss.ByID(id); ok {
		return s
	}
	return ss.ForRect(r)
}

// Fit reconciles g with screen under the given option (the ScreenFitter).
// Only the origin moves unless the window cannot fit, or opt is
// FitScaleDown, in which case the viewport shrinks aspect-preserving first.
func Fit(g Windowed, opt FitOption, b Bounds) (Windowed, *Violation) {
	g.Fit = opt
	g.ScreenID = b.Screen.ID
	if opt == FitNoConstraints {
		return g, nil
	}

	aspect, v := SanitizeAspect(g.VideoAspect)
	if v != nil {
		g.VideoAspect = aspect
		return g, v
	}

	vis := b.Screen.VisibleFrame(false)
	if g.Frame.W > vis.W || g.Frame.H > vis.H {
		vp := shrinkViewport(g.ViewportSize(), aspect, vis.Size().Shrink(g.chrome()), b.LockAspect)
		vp = floorViewport(vp, aspect, b)
		g.Frame = resizeAroundCenter(g.Frame, vp.Grow(g.chrome()))
	}
	return place(g, opt, vis)
}

// place moves the frame according to opt. The size must already fit unless
// the minimum size forbids it.
func place(g Windowed, opt FitOption, vis Rect) (Windowed, *Violation) {
	f := g.Frame
	switch opt {
	case FitNoConstraints:
		return g, nil
	case FitKeepInside:
		if vis.ContainsRect(f) {
			return g, nil
		}
		f.X = clamp(f.X, vis.X, vis.MaxX()-f.W)
		f.Y = clamp(f.Y, vis.Y, vis.MaxY()-f.H)
	case FitCenterInside, FitScaleDown:
		f.X = vis.X + (vis.W-f.W)/2
		f.Y = vis.Y + (vis.H-f.H)/2
	default:
		panic(fmt.Sprintf("geometry: unhandled fit option %d", int(opt)))
	}
	g.Frame = f
	if v := checkContained(g, vis); v != nil {
		g.Frame = clampInside(g.Frame, vis)
		return g, v
	}
	return g, nil
}

// checkContained verifies the post-fit invariant. Windows larger than the
// screen because of the minimum size are pinned to the visible origin.
func checkContained(g Windowed, vis Rect) *Violation {
	if vis.ContainsRect(g.Frame) {
		return nil
	}
	if g.Frame.W > vis.W+0.5 || g.Frame.H > vis.H+0.5 {
		return nil
	}
	return violate(true, "fitted frame %v escapes visible frame %v", g.Frame, vis)
}

// clampInside is the release-build correction for a containment violation.
func clampInside(f Rect, vis Rect) Rect {
	f.X = clamp(f.X, vis.X, vis.MaxX()-f.W)
	f.Y = clamp(f.Y, vis.Y, vis.MaxY()-f.H)
	return f
}

// clamp bounds v to [lo, hi]; lo wins when the range is inverted.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
