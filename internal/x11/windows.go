package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const stateFullScreen = "_NET_WM_STATE_FULLSCREEN"

// MoveResizeWindow places the outer frame of a window (decorations
// included) at the given geometry.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Some window managers ignore geometry requests for maximized windows.
	_ = c.unmaximizeWindow(windowID)

	left, right, top, bottom, _ := c.GetFrameExtents(windowID)
	clientW := max(1, width-left-right)
	clientH := max(1, height-top-bottom)

	win := xwindow.New(c.XUtil, windowID)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, clientW, clientH); err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, clientW, clientH)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

// FrameGeometry returns the outer frame of a window in root coordinates.
func (c *Connection) FrameGeometry(windowID xproto.Window) (Area, error) {
	rect, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return Area{}, fmt.Errorf("window 0x%x geometry: %w", uint32(windowID), err)
	}
	return Area{X: rect.X(), Y: rect.Y(), Width: rect.Width(), Height: rect.Height()}, nil
}

// SetFullScreen asks the window manager to add or remove the full screen
// state.
func (c *Connection) SetFullScreen(windowID xproto.Window, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, stateFullScreen)
}

// IsFullScreen reports whether the window manager shows the window full screen.
func (c *Connection) IsFullScreen(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == stateFullScreen {
			return true
		}
	}
	return false
}

// SetDecorations turns window manager decorations on or off through the
// Motif hints most window managers honour.
func (c *Connection) SetDecorations(windowID xproto.Window, on bool) error {
	hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationNone}
	if on {
		hints.Decoration = motif.DecorationAll
	}
	return motif.WmHintsSet(c.XUtil, windowID, hints)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	return len(types) == 0
}

// FindWindowsByClass lists normal client windows whose WM_CLASS class or
// instance equals class, ignoring case.
func (c *Connection) FindWindowsByClass(class string) ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	var out []xproto.Window
	for _, win := range clients {
		wmClass, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if !strings.EqualFold(wmClass.Class, class) && !strings.EqualFold(wmClass.Instance, class) {
			continue
		}
		if !c.IsNormalWindow(win) {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowPID returns _NET_WM_PID, or 0.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		return int(pid)
	}
	return 0
}

// WatchWindow subscribes to structure events of a window. onConfigure runs
// on the X event goroutine after every ConfigureNotify, onDestroy once the
// window is gone.
func (c *Connection) WatchWindow(windowID xproto.Window, onConfigure func(), onDestroy func()) error {
	if err := xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("listen on window 0x%x: %w", uint32(windowID), err)
	}
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		onConfigure()
	}).Connect(c.XUtil, windowID)
	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		xevent.Detach(xu, windowID)
		onDestroy()
	}).Connect(c.XUtil, windowID)
	return nil
}

// UnwatchWindow drops every handler attached by WatchWindow.
func (c *Connection) UnwatchWindow(windowID xproto.Window) {
	xevent.Detach(c.XUtil, windowID)
}
