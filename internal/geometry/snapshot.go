package geometry

// Snapshot is the concrete geometry of one window mode. Exactly one variant
// is authoritative for a window at any instant: Windowed, Music or
// FullScreen.
type Snapshot interface {
	WindowFrame() Rect
	OnScreen() string
	snapshot()
}

// Windowed is the geometry of a normal (or interactive) window.
type Windowed struct {
	Frame    Rect
	ScreenID string
	Fit      FitOption
	// TopMarginHeight is reserved above the viewport for a camera housing.
	TopMarginHeight float64
	// OutsideBars is chrome that steals from the window, not the viewport.
	OutsideBars Insets
	// InsideBars overlays the viewport and does not change its size.
	InsideBars Insets
	// ViewportMargins surround the video when the aspect is not locked.
	ViewportMargins Insets
	// VideoAspect is the displayed (not raw pixel) aspect.
	VideoAspect float64
}

func (g Windowed) WindowFrame() Rect { return g.Frame }
func (g Windowed) OnScreen() string  { return g.ScreenID }
func (Windowed) snapshot()           {}

func (g Windowed) chrome() Insets {
	return g.OutsideBars.Add(Insets{Top: g.TopMarginHeight})
}

// ViewportSize is the frame minus outside bars and the top margin.
func (g Windowed) ViewportSize() Size {
	return g.Frame.Size().Shrink(g.chrome())
}

// ViewportRect is the viewport in screen coordinates.
func (g Windowed) ViewportRect() Rect {
	return g.Frame.Inset(g.chrome())
}

// VideoSize is the largest rect of VideoAspect inside the viewport margins.
func (g Windowed) VideoSize() Size {
	aspect, _ := SanitizeAspect(g.VideoAspect)
	return AspectFit(aspect, g.ViewportSize().Shrink(g.ViewportMargins))
}

// VideoRect is the video centered within the viewport margins.
func (g Windowed) VideoRect() Rect {
	inner := g.ViewportRect().Inset(g.ViewportMargins)
	return CenteredAt(inner.Center(), g.VideoSize())
}

// Music is the geometry of the compact music-mode window: a video strip on
// top, the control bar, then an optional playlist.
type Music struct {
	Frame             Rect
	ScreenID          string
	IsVideoVisible    bool
	IsPlaylistVisible bool
	VideoAspect       float64
	ControlBarHeight  float64
}

func (m Music) WindowFrame() Rect { return m.Frame }
func (m Music) OnScreen() string  { return m.ScreenID }
func (Music) snapshot()           {}

// VideoHeight is the height of the video strip, zero when hidden.
func (m Music) VideoHeight() float64 {
	if !m.IsVideoVisible {
		return 0
	}
	aspect, _ := SanitizeAspect(m.VideoAspect)
	return m.Frame.W / aspect
}

// VideoSize returns the video size, or false when the video is hidden.
func (m Music) VideoSize() (Size, bool) {
	if !m.IsVideoVisible {
		return Size{}, false
	}
	return Size{W: m.Frame.W, H: m.VideoHeight()}, true
}

// PlaylistHeight is whatever remains below the control bar.
func (m Music) PlaylistHeight() float64 {
	h := m.Frame.H - m.ControlBarHeight - m.VideoHeight()
	if h < 0 || !m.IsPlaylistVisible {
		return 0
	}
	return h
}

// FullScreen is derived on demand from the windowed geometry and the
// target screen.
type FullScreen struct {
	Frame    Rect
	ScreenID string
	Legacy   bool
	// TopMarginHeight keeps content clear of the camera housing when a
	// legacy full screen window covers the whole display.
	TopMarginHeight float64
	InsideBars      Insets
	VideoAspect     float64
}

func (f FullScreen) WindowFrame() Rect { return f.Frame }
func (f FullScreen) OnScreen() string  { return f.ScreenID }
func (FullScreen) snapshot()           {}

// ViewportRect is the frame minus the top margin.
func (f FullScreen) ViewportRect() Rect {
	return f.Frame.Inset(Insets{Top: f.TopMarginHeight})
}

// VideoRect letterboxes the video inside the viewport.
func (f FullScreen) VideoRect() Rect {
	aspect, _ := SanitizeAspect(f.VideoAspect)
	vp := f.ViewportRect()
	return CenteredAt(vp.Center(), AspectFit(aspect, vp.Size()))
}

// FullScreenFrom derives full screen geometry for w on screen. Native full
// screen stays below the camera housing; legacy covers the display and
// reserves the housing as a top margin unless coverHousing is set.
func FullScreenFrom(w Windowed, screen Screen, legacy, coverHousing bool, inside Insets) FullScreen {
	fs := FullScreen{
		ScreenID:    screen.ID,
		Legacy:      legacy,
		InsideBars:  inside,
		VideoAspect: w.VideoAspect,
	}
	switch {
	case !legacy:
		fs.Frame = screen.VisibleFrame(true)
	case coverHousing:
		fs.Frame = screen.Frame
	default:
		fs.Frame = screen.Frame
		fs.TopMarginHeight = screen.CameraHousingHeight
	}
	return fs
}
