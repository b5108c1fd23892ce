package daemon

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/transition"
)

// maxEchoes bounds the frames we remember having requested.
const maxEchoes = 8

// Window drives one player window through a platform backend.
type Window struct {
	backend platform.Backend
	id      platform.WindowID
	logger  *slog.Logger

	mu      sync.Mutex
	echoes  []platform.Rect
	chrome  map[layout.Element]layout.Visibility
	outside map[layout.Element]bool
	video   geometry.Rect
	decor   bool
}

var _ controller.Window = (*Window)(nil)

// NewWindow wraps the window id of backend.
func NewWindow(backend platform.Backend, id platform.WindowID, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		backend: backend,
		id:      id,
		logger:  logger,
		chrome:  make(map[layout.Element]layout.Visibility),
		outside: make(map[layout.Element]bool),
		decor:   true,
	}
}

// ID returns the platform window id.
func (w *Window) ID() platform.WindowID { return w.id }

// SetFrame moves the window and remembers the frame so the matching
// ConfigureNotify is not mistaken for a user resize.
func (w *Window) SetFrame(frame geometry.Rect) error {
	r := toPlatformRect(frame)
	w.mu.Lock()
	w.echoes = append(w.echoes, r)
	if len(w.echoes) > maxEchoes {
		w.echoes = w.echoes[len(w.echoes)-maxEchoes:]
	}
	w.mu.Unlock()
	return w.backend.MoveResize(w.id, r)
}

func (w *Window) SetFullScreen(on bool) error {
	return w.backend.SetFullScreen(w.id, on)
}

// ApplyStep records chrome changes and maps decoration changes onto the
// window manager frame.
func (w *Window) ApplyStep(step transition.Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch step.Op {
	case transition.OpFadeOut, transition.OpHide:
		w.chrome[step.Element] = layout.Hidden
	case transition.OpShow, transition.OpFadeIn:
		w.chrome[step.Element] = step.Visibility
	case transition.OpSetPlacement:
		w.outside[step.Element] = step.Flag
	case transition.OpSetBorderless:
		w.decor = !step.Flag
		if err := w.backend.SetDecorated(w.id, !step.Flag); err != nil {
			return fmt.Errorf("set decorations: %w", err)
		}
	case transition.OpApplyVideoRect:
		if step.Frame != nil {
			w.video = videoRectOf(step.Frame)
		}
	default:
		return fmt.Errorf("unsupported window step %s", step.Op)
	}
	w.logger.Debug("window step", "window_id", uint32(w.id), "step", step.String())
	return nil
}

// isEcho reports, and forgets, a frame we asked for ourselves. Sizes may
// differ by a pixel when the window manager rounds.
func (w *Window) isEcho(r platform.Rect) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, e := range w.echoes {
		if closeTo(e.X, r.X) && closeTo(e.Y, r.Y) && closeTo(e.Width, r.Width) && closeTo(e.Height, r.Height) {
			w.echoes = append(w.echoes[:i], w.echoes[i+1:]...)
			return true
		}
	}
	return false
}

// Chrome is the visual state of the window's own elements.
type Chrome struct {
	Decorated bool              `json:"decorated"`
	Elements  map[string]string `json:"elements"`
	Outside   []string          `json:"outside,omitempty"`
	VideoRect geometry.Rect     `json:"video_rect"`
}

// Chrome snapshots the element visibility applied so far.
func (w *Window) Chrome() Chrome {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := Chrome{Decorated: w.decor, Elements: make(map[string]string, len(w.chrome)), VideoRect: w.video}
	for _, e := range layout.Elements() {
		if v, ok := w.chrome[e]; ok {
			out.Elements[e.String()] = v.String()
		}
		if w.outside[e] {
			out.Outside = append(out.Outside, e.String())
		}
	}
	return out
}

func videoRectOf(s geometry.Snapshot) geometry.Rect {
	switch g := s.(type) {
	case geometry.Windowed:
		return g.VideoRect()
	case geometry.FullScreen:
		return g.VideoRect()
	case geometry.Music:
		if size, ok := g.VideoSize(); ok {
			return geometry.RectFrom(g.Frame.Origin(), size)
		}
		return geometry.Rect{}
	default:
		return s.WindowFrame()
	}
}

func closeTo(a, b int) bool {
	return a-b <= 1 && b-a <= 1
}

func toPlatformRect(r geometry.Rect) platform.Rect {
	return platform.Rect{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.W)),
		Height: int(math.Round(r.H)),
	}
}

func fromPlatformRect(r platform.Rect) geometry.Rect {
	return geometry.Rect{X: float64(r.X), Y: float64(r.Y), W: float64(r.Width), H: float64(r.Height)}
}
