//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/vidframe/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display
// ($DISPLAY when empty).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// FindWindows lists normal windows of the given WM_CLASS, ordered by ID.
func (b *LinuxBackend) FindWindows(class string) ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	ids, err := conn.FindWindowsByClass(class)
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		area, err := conn.FrameGeometry(id)
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			ID:     WindowID(id),
			PID:    conn.WindowPID(id),
			AppID:  b.windowAppID(id),
			Title:  conn.WindowTitle(id),
			Bounds: rectFromArea(area),
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// WindowBounds returns the outer frame of a window.
func (b *LinuxBackend) WindowBounds(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	area, err := conn.FrameGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return rectFromArea(area), nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// SetFullScreen toggles _NET_WM_STATE_FULLSCREEN.
func (b *LinuxBackend) SetFullScreen(windowID WindowID, on bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if conn.IsFullScreen(xproto.Window(windowID)) == on {
		return nil
	}
	return conn.SetFullScreen(xproto.Window(windowID), on)
}

// SetDecorated shows or hides the window manager frame.
func (b *LinuxBackend) SetDecorated(windowID WindowID, on bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetDecorations(xproto.Window(windowID), on)
}

// Watch subscribes to ConfigureNotify and DestroyNotify of a window.
func (b *LinuxBackend) Watch(windowID WindowID, onChange func(), onGone func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchWindow(xproto.Window(windowID), onChange, onGone)
}

// Unwatch detaches the handlers installed by Watch.
func (b *LinuxBackend) Unwatch(windowID WindowID) {
	if conn, err := b.connection(); err == nil {
		conn.UnwatchWindow(xproto.Window(windowID))
	}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Bounds:  rectFromArea(m.Bounds),
		Usable:  rectFromArea(m.Usable),
		Primary: m.Primary,
	}
}

func rectFromArea(a x11.Area) Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

func (b *LinuxBackend) windowAppID(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(b.conn.XUtil, windowID)
	if err != nil {
		return ""
	}
	return wmClass.Class
}
