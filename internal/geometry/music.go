package geometry

import "math"

// MusicBounds are the size limits of the music-mode window.
type MusicBounds struct {
	Screen            Screen
	MinWidth          float64
	MaxWidth          float64 // 0 = screen width
	PlaylistMinHeight float64
}

func (b MusicBounds) widthRange(vis Rect) (float64, float64) {
	hi := vis.W
	if b.MaxWidth > 0 && b.MaxWidth < hi {
		hi = b.MaxWidth
	}
	lo := math.Max(b.MinWidth, 1)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// minHeight is the smallest frame height for the current width.
func (m Music) minHeight(b MusicBounds) float64 {
	h := m.ControlBarHeight + m.VideoHeight()
	if m.IsPlaylistVisible {
		h += b.PlaylistMinHeight
	}
	return h
}

// ResizeMusic applies a requested window size. Width is free within the
// bounds; height is derived unless the playlist is visible, in which case
// it may grow past the minimum.
func ResizeMusic(m Music, requested Size, b MusicBounds) Music {
	aspect, _ := SanitizeAspect(m.VideoAspect)
	m.VideoAspect = aspect
	vis := b.Screen.VisibleFrame(false)
	lo, hi := b.widthRange(vis)

	m.Frame.W = clamp(requested.W, lo, hi)
	if m.IsVideoVisible {
		// Give up width before letting the video push the window off screen.
		room := vis.H - m.ControlBarHeight
		if m.IsPlaylistVisible {
			room -= b.PlaylistMinHeight
		}
		if room > 0 && m.Frame.W/aspect > room {
			m.Frame.W = math.Max(lo, room*aspect)
		}
	}

	minH := m.minHeight(b)
	if m.IsPlaylistVisible {
		m.Frame.H = clamp(requested.H, minH, math.Max(minH, vis.H))
	} else {
		m.Frame.H = minH
	}
	return m
}

// RefitMusic re-applies the bounds to m and keeps it on its screen.
func RefitMusic(m Music, b MusicBounds) Music {
	m = ResizeMusic(m, m.Frame.Size(), b)
	m.ScreenID = b.Screen.ID
	vis := b.Screen.VisibleFrame(false)
	if !vis.ContainsRect(m.Frame) {
		m.Frame = clampInside(m.Frame, vis)
	}
	return m
}

// MusicWithAspect swaps the video aspect, letting height follow.
func MusicWithAspect(m Music, aspect float64, b MusicBounds) Music {
	m.VideoAspect = aspect
	return RefitMusic(m, b)
}

// MusicWithVisibility toggles the video strip and playlist. The top edge
// stays put unless the taller window would leave the screen.
func MusicWithVisibility(m Music, video, playlist bool, b MusicBounds) Music {
	oldPlaylist := m.PlaylistHeight()
	m.IsVideoVisible = video
	m.IsPlaylistVisible = playlist
	h := m.ControlBarHeight + m.VideoHeight()
	if playlist {
		h += math.Max(oldPlaylist, b.PlaylistMinHeight)
	}
	m.Frame.H = h
	return RefitMusic(m, b)
}

// DefaultMusic places a fresh music-mode window at the bottom-right of the
// visible frame.
func DefaultMusic(aspect float64, controlBar float64, b MusicBounds) Music {
	vis := b.Screen.VisibleFrame(false)
	m := Music{
		ScreenID:         b.Screen.ID,
		IsVideoVisible:   true,
		VideoAspect:      aspect,
		ControlBarHeight: controlBar,
	}
	m = ResizeMusic(m, Size{W: b.MinWidth}, b)
	m.Frame.X = vis.MaxX() - m.Frame.W
	m.Frame.Y = vis.MaxY() - m.Frame.H
	return RefitMusic(m, b)
}
