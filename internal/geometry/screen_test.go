package geometry

import (
	"fmt"
	"testing"
)

func TestFit_KeepInsideContainsWindow(t *testing.T) {
	screens := []Screen{
		{ID: "laptop", Frame: Rect{W: 1920, H: 1080}, Visible: Rect{Y: 25, W: 1920, H: 1055}},
		{ID: "notch", Frame: Rect{X: 1920, W: 2560, H: 1440}, Visible: Rect{X: 1920, W: 2560, H: 1440}, CameraHousingHeight: 32},
		{ID: "left", Frame: Rect{X: -1280, Y: 200, W: 1280, H: 1024}, Visible: Rect{X: -1280, Y: 200, W: 1280, H: 984}},
	}
	frames := []Rect{
		{X: 0, Y: 0, W: 640, H: 432},
		{X: -5000, Y: -5000, W: 800, H: 522},
		{X: 1800, Y: 900, W: 900, H: 600},
		{X: 10000, Y: 10000, W: 5000, H: 3000},
		{X: 100, Y: 100, W: 2000, H: 300},
	}
	for _, s := range screens {
		for _, lock := range []bool{true, false} {
			for i, f := range frames {
				t.Run(fmt.Sprintf("%s/lock=%v/%d", s.ID, lock, i), func(t *testing.T) {
					b := Bounds{Screen: s, MinVideoSize: Size{W: 200, H: 112}, LockAspect: lock}
					g := Windowed{Frame: f, VideoAspect: 16.0 / 9.0, OutsideBars: Insets{Top: 28, Bottom: 44}}
					out, v := Fit(g, FitKeepInside, b)
					if v != nil {
						t.Fatalf("unexpected violation: %v", v)
					}
					vis := s.VisibleFrame(false)
					if !strictlyInside(vis, out.Frame) {
						t.Fatalf("frame %v not inside visible %v", out.Frame, vis)
					}
					if out.ScreenID != s.ID {
						t.Fatalf("screen id = %q, want %q", out.ScreenID, s.ID)
					}
				})
			}
		}
	}
}

func TestFit_KeepInsideLeavesFittingWindowAlone(t *testing.T) {
	b := lockedBounds(testScreen())
	g := Windowed{Frame: Rect{X: 300, Y: 200, W: 800, H: 450}, VideoAspect: 16.0 / 9.0}
	out, _ := Fit(g, FitKeepInside, b)
	if out.Frame != g.Frame {
		t.Fatalf("frame moved: %v -> %v", g.Frame, out.Frame)
	}
}

func TestFit_CenterInsideShrinksOversizedWindow(t *testing.T) {
	b := lockedBounds(testScreen())
	g := Windowed{Frame: Rect{X: 40, Y: 40, W: 3000, H: 2000}, VideoAspect: 1.5}

	out, v := Fit(g, FitCenterInside, b)
	if v != nil {
		t.Fatalf("unexpected violation: %v", v)
	}
	want := Rect{X: 150, Y: 0, W: 1620, H: 1080}
	if !approx(out.Frame.X, want.X) || !approx(out.Frame.Y, want.Y) ||
		!approx(out.Frame.W, want.W) || !approx(out.Frame.H, want.H) {
		t.Fatalf("frame = %v, want %v", out.Frame, want)
	}

	// The same request through ScaleViewport lands on the same frame.
	scaled, _ := ScaleViewport(g, g.ViewportSize(), FitCenterInside, b)
	if !approx(scaled.Frame.X, want.X) || !approx(scaled.Frame.W, want.W) {
		t.Fatalf("ScaleViewport frame = %v, want %v", scaled.Frame, want)
	}
}

func TestFit_ScaleDownCenters(t *testing.T) {
	b := lockedBounds(testScreen())
	g := Windowed{Frame: Rect{X: 0, Y: 0, W: 400, H: 300}, VideoAspect: 4.0 / 3.0}
	out, _ := Fit(g, FitScaleDown, b)
	if out.Frame.Size() != g.Frame.Size() {
		t.Fatalf("fitting window resized: %v", out.Frame)
	}
	if out.Frame.X != 760 || out.Frame.Y != 390 {
		t.Fatalf("origin = %v,%v, want 760,390", out.Frame.X, out.Frame.Y)
	}
}

func TestFit_NoConstraintsIsIdentity(t *testing.T) {
	b := lockedBounds(testScreen())
	g := Windowed{Frame: Rect{X: -900, Y: 5000, W: 4000, H: 100}, VideoAspect: 40}
	out, _ := Fit(g, FitNoConstraints, b)
	if out.Frame != g.Frame {
		t.Fatalf("frame changed: %v", out.Frame)
	}
}

func TestScreens_ForRectFallbackOrder(t *testing.T) {
	a := Screen{ID: "A", Frame: Rect{W: 1920, H: 1080}}
	b := Screen{ID: "B", Frame: Rect{X: 1920, W: 1280, H: 1024}, Primary: true}
	c := Screen{ID: "C", Frame: Rect{X: 0, Y: 1080, W: 1920, H: 1080}}
	screens := Screens{a, b, c}

	tests := []struct {
		name string
		rect Rect
		want string
	}{
		{"top-left on A", Rect{X: 100, Y: 100, W: 400, H: 300}, "A"},
		{"top-left on B even if mostly on A", Rect{X: 1919 + 1, Y: 10, W: 10, H: 10}, "B"},
		{"straddling A and B picks top-left owner", Rect{X: 1800, Y: 10, W: 1000, H: 300}, "A"},
		{"top-left off-screen, top-right on A", Rect{X: -300, Y: 20, W: 400, H: 300}, "A"},
		{"top-left off-screen, top-right on C", Rect{X: -300, Y: 1100, W: 400, H: 300}, "C"},
		{"both corners off-screen falls back to primary", Rect{X: -3000, Y: -3000, W: 400, H: 300}, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := screens.ForRect(tt.rect).ID; got != tt.want {
				t.Fatalf("ForRect(%v) = %s, want %s", tt.rect, got, tt.want)
			}
		})
	}
}

func TestScreens_EmptyFallsBackToDefault(t *testing.T) {
	var screens Screens
	got := screens.Resolve("gone", Rect{X: 5, Y: 5, W: 10, H: 10})
	if got.ID != DefaultScreenID {
		t.Fatalf("Resolve on empty set = %q, want %q", got.ID, DefaultScreenID)
	}
}

func TestScreens_ResolvePrefersID(t *testing.T) {
	screens := Screens{
		{ID: "A", Frame: Rect{W: 100, H: 100}},
		{ID: "B", Frame: Rect{X: 100, W: 100, H: 100}},
	}
	if got := screens.Resolve("B", Rect{X: 1, Y: 1, W: 5, H: 5}); got.ID != "B" {
		t.Fatalf("Resolve = %q, want B", got.ID)
	}
}

func TestVisibleFrame_CameraHousing(t *testing.T) {
	s := Screen{
		Frame:               Rect{W: 3024, H: 1964},
		Visible:             Rect{Y: 0, W: 3024, H: 1900},
		CameraHousingHeight: 64,
	}
	if got := s.VisibleFrame(true); got != (Rect{Y: 64, W: 3024, H: 1900}) {
		t.Fatalf("full coverage visible = %v", got)
	}
	if got := s.VisibleFrame(false); got != (Rect{Y: 64, W: 3024, H: 1836}) {
		t.Fatalf("windowed visible = %v", got)
	}
}

func TestFullScreenFrom(t *testing.T) {
	s := Screen{ID: "N", Frame: Rect{W: 3024, H: 1964}, Visible: Rect{W: 3024, H: 1900}, CameraHousingHeight: 64}
	w := Windowed{Frame: Rect{W: 800, H: 450}, VideoAspect: 16.0 / 9.0}

	native := FullScreenFrom(w, s, false, false, Insets{})
	if native.Frame != (Rect{Y: 64, W: 3024, H: 1900}) || native.TopMarginHeight != 0 {
		t.Fatalf("native = %+v", native)
	}
	legacy := FullScreenFrom(w, s, true, false, Insets{})
	if legacy.Frame != s.Frame || legacy.TopMarginHeight != 64 {
		t.Fatalf("legacy = %+v", legacy)
	}
	if legacy.VideoRect().Y < 64 {
		t.Fatalf("legacy video rect %v overlaps camera housing", legacy.VideoRect())
	}
	covering := FullScreenFrom(w, s, true, true, Insets{})
	if covering.TopMarginHeight != 0 {
		t.Fatalf("covering legacy should not reserve housing: %+v", covering)
	}
}

func strictlyInside(outer, inner Rect) bool {
	const eps = 1e-6
	return inner.X >= outer.X-eps && inner.Y >= outer.Y-eps &&
		inner.MaxX() <= outer.MaxX()+eps && inner.MaxY() <= outer.MaxY()+eps
}
