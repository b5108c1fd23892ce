package daemon

import (
	"testing"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/transition"
	"github.com/google/go-cmp/cmp"
)

func TestWindow_ApplyStep(t *testing.T) {
	b := newFakeBackend()
	w := NewWindow(b, 7, discardLogger())

	steps := []transition.Step{
		{Op: transition.OpSetBorderless, Flag: true},
		{Op: transition.OpShow, Element: layout.TitleBar, Visibility: layout.ShowFadeableTopBar},
		{Op: transition.OpFadeIn, Element: layout.BottomOSC, Visibility: layout.ShowFadeableNonTopBar},
		{Op: transition.OpFadeOut, Element: layout.TitleBar},
		{Op: transition.OpSetPlacement, Element: layout.BottomOSC, Flag: true},
		{Op: transition.OpApplyVideoRect, Frame: geometry.Windowed{
			Frame:       geometry.Rect{X: 10, Y: 20, W: 800, H: 400},
			VideoAspect: 2,
		}},
	}
	for _, s := range steps {
		if err := w.ApplyStep(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	if on := b.decorated[7]; on {
		t.Fatalf("borderless step left decorations on")
	}
	want := Chrome{
		Decorated: false,
		Elements: map[string]string{
			layout.TitleBar.String():  layout.Hidden.String(),
			layout.BottomOSC.String(): layout.ShowFadeableNonTopBar.String(),
		},
		Outside:   []string{layout.BottomOSC.String()},
		VideoRect: geometry.Rect{X: 10, Y: 20, W: 800, H: 400},
	}
	if diff := cmp.Diff(want, w.Chrome()); diff != "" {
		t.Fatalf("chrome mismatch (-want +got):\n%s", diff)
	}

	if err := w.ApplyStep(transition.Step{Op: transition.OpSetFrame}); err == nil {
		t.Fatalf("expected frame steps to be rejected")
	}
}

func TestWindow_EchoesAreConsumedOnce(t *testing.T) {
	b := newFakeBackend()
	w := NewWindow(b, 7, discardLogger())

	if err := w.SetFrame(geometry.Rect{X: 100.4, Y: 50, W: 800, H: 450}); err != nil {
		t.Fatalf("set frame: %v", err)
	}
	if got, _ := b.lastMove(); got != (platform.Rect{X: 100, Y: 50, Width: 800, Height: 450}) {
		t.Fatalf("moved to %+v", got)
	}

	// The window manager rounded the height by a pixel.
	echo := platform.Rect{X: 100, Y: 50, Width: 800, Height: 451}
	if !w.isEcho(echo) {
		t.Fatalf("expected echo")
	}
	if w.isEcho(echo) {
		t.Fatalf("echo matched twice")
	}
	if w.isEcho(platform.Rect{X: 100, Y: 50, Width: 900, Height: 450}) {
		t.Fatalf("user resize taken for an echo")
	}
}

func TestWindow_EchoHistoryIsBounded(t *testing.T) {
	w := NewWindow(newFakeBackend(), 7, discardLogger())
	for i := 0; i < maxEchoes+3; i++ {
		_ = w.SetFrame(geometry.Rect{X: float64(i * 10), W: 400, H: 300})
	}
	if w.isEcho(platform.Rect{X: 0, Width: 400, Height: 300}) {
		t.Fatalf("oldest echo should have been dropped")
	}
	if !w.isEcho(platform.Rect{X: (maxEchoes + 2) * 10, Width: 400, Height: 300}) {
		t.Fatalf("newest echo missing")
	}
}
