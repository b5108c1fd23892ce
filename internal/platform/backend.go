package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Usable  Rect
	Primary bool
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	// FindWindows lists the top-level windows of an application class.
	FindWindows(class string) ([]Window, error)
	WindowBounds(windowID WindowID) (Rect, error)
	// MoveResize places the outer frame of a window, decorations included.
	MoveResize(windowID WindowID, bounds Rect) error
	SetFullScreen(windowID WindowID, on bool) error
	SetDecorated(windowID WindowID, on bool) error
	// Watch calls onChange after the window moved or resized and onGone
	// once it was destroyed. Callbacks run on the backend's event goroutine.
	Watch(windowID WindowID, onChange func(), onGone func()) error
	Unwatch(windowID WindowID)
}
