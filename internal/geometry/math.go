package geometry

import "math"

// sizeEpsilon absorbs float drift from adding and removing chrome so that
// refitting an already valid snapshot returns it untouched.
const sizeEpsilon = 1e-7

// Bounds bundles the fixed inputs every scale operation needs.
type Bounds struct {
	Screen       Screen
	MinVideoSize Size
	// LockAspect keeps the viewport at exactly the video aspect. When false
	// the viewport may carry margins around a smaller video rect.
	LockAspect bool
}

// MinViewportSize is the smallest viewport allowed for the given aspect.
func (b Bounds) MinViewportSize(aspect float64) Size {
	floor := b.MinVideoSize.Max(Size{W: 1, H: 1})
	if !b.LockAspect {
		return floor
	}
	return AspectFill(aspect, floor)
}

// MinWindowSize is the minimum viewport plus the chrome of g.
func (b Bounds) MinWindowSize(g Windowed) Size {
	aspect, _ := SanitizeAspect(g.VideoAspect)
	return b.MinViewportSize(aspect).Grow(g.chrome())
}

// ScaleViewport resizes g so that its viewport has the desired size.
// With LockAspect the desired size is first shrunk to the video aspect. The
// result is bounded by the screen (unless fit is FitNoConstraints) and by
// the minimum size, then positioned by fit.
func ScaleViewport(g Windowed, desired Size, fit FitOption, b Bounds) (Windowed, *Violation) {
	aspect, v := SanitizeAspect(g.VideoAspect)
	if v != nil {
		g.VideoAspect = aspect
		return g, v
	}

	vp := desired
	if b.LockAspect {
		g.ViewportMargins = Insets{}
		if vp.IsEmpty() {
			vp = Size{}
		} else {
			vp = AspectFit(aspect, vp)
		}
	}

	var vis Rect
	if fit != FitNoConstraints {
		vis = b.Screen.VisibleFrame(false)
		vp = shrinkViewport(vp, aspect, vis.Size().Shrink(g.chrome()), b.LockAspect)
	}
	vp = floorViewport(vp, aspect, b)

	g.Fit = fit
	g.ScreenID = b.Screen.ID
	g.Frame = resizeAroundCenter(g.Frame, vp.Grow(g.chrome()))
	if fit == FitNoConstraints {
		return g, nil
	}
	return place(g, fit, vis)
}

// ScaleVideo resizes g so the video itself has the desired size; the
// viewport adds the configured margins when the aspect is not locked.
func ScaleVideo(g Windowed, desired Size, fit FitOption, b Bounds) (Windowed, *Violation) {
	vp := desired
	if !b.LockAspect {
		vp = vp.Grow(g.ViewportMargins)
	}
	return ScaleViewport(g, vp, fit, b)
}

// ScaleWindow resizes g from a desired total window size.
func ScaleWindow(g Windowed, desired Size, fit FitOption, b Bounds) (Windowed, *Violation) {
	return ScaleViewport(g, desired.Shrink(g.chrome()), fit, b)
}

// Refit re-applies the minimum size, aspect lock and screen bounds without
// changing what g is trying to show.
func Refit(g Windowed, fit FitOption, b Bounds) (Windowed, *Violation) {
	return ScaleViewport(g, g.ViewportSize(), fit, b)
}

// WithBars swaps the chrome of g, keeping the viewport size fixed and the
// window anchored at its top-left corner.
func WithBars(g Windowed, outside, inside Insets, topMargin float64) Windowed {
	vp := g.ViewportSize()
	g.OutsideBars = outside
	g.InsideBars = inside
	g.TopMarginHeight = topMargin
	size := vp.Grow(g.chrome())
	g.Frame = Rect{X: g.Frame.X, Y: g.Frame.Y, W: size.W, H: size.H}
	return g
}

// shrinkViewport bounds vp by limit. A locked viewport keeps its aspect.
func shrinkViewport(vp Size, aspect float64, limit Size, lock bool) Size {
	if vp.W <= limit.W && vp.H <= limit.H {
		return vp
	}
	if limit.IsEmpty() {
		return vp
	}
	bounded := Size{W: math.Min(vp.W, limit.W), H: math.Min(vp.H, limit.H)}
	if lock {
		return AspectFit(aspect, bounded)
	}
	return bounded
}

// floorViewport enforces the minimum viewport.
func floorViewport(vp Size, aspect float64, b Bounds) Size {
	floor := b.MinViewportSize(aspect)
	if vp.W >= floor.W-sizeEpsilon && vp.H >= floor.H-sizeEpsilon {
		return vp
	}
	if b.LockAspect {
		return floor
	}
	return vp.Max(floor)
}

// resizeAroundCenter keeps the frame center when the size changes. An
// unchanged size keeps the exact origin.
func resizeAroundCenter(f Rect, size Size) Rect {
	if math.Abs(f.W-size.W) <= sizeEpsilon && math.Abs(f.H-size.H) <= sizeEpsilon {
		return f
	}
	return CenteredAt(f.Center(), size)
}
