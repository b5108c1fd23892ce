package daemon

import (
	"fmt"
	"sync"

	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/platform"
)

// ScreenSource maps backend displays onto controller screens.
type ScreenSource struct {
	backend platform.Backend

	mu sync.Mutex
	// housing is applied to the primary display.
	housing float64
}

var _ controller.ScreenSource = (*ScreenSource)(nil)

func NewScreenSource(backend platform.Backend, housing float64) *ScreenSource {
	return &ScreenSource{backend: backend, housing: housing}
}

// SetCameraHousingHeight changes the notch height of the primary display.
func (s *ScreenSource) SetCameraHousingHeight(h float64) {
	s.mu.Lock()
	s.housing = h
	s.mu.Unlock()
}

func (s *ScreenSource) Screens() (geometry.Screens, error) {
	displays, err := s.backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("list displays: %w", err)
	}
	s.mu.Lock()
	housing := s.housing
	s.mu.Unlock()
	return ScreensFromDisplays(displays, housing), nil
}

// ScreensFromDisplays converts displays. Without an explicit primary the
// first display is primary.
func ScreensFromDisplays(displays []platform.Display, housing float64) geometry.Screens {
	hasPrimary := false
	for _, d := range displays {
		hasPrimary = hasPrimary || d.Primary
	}
	out := make(geometry.Screens, 0, len(displays))
	for i, d := range displays {
		primary := d.Primary || (!hasPrimary && i == 0)
		s := geometry.Screen{
			ID:      screenID(d),
			Name:    d.Name,
			Frame:   fromPlatformRect(d.Bounds),
			Visible: fromPlatformRect(d.Usable),
			Primary: primary,
		}
		if primary {
			s.CameraHousingHeight = housing
		}
		out = append(out, s)
	}
	return out
}

// screenID prefers the output name, which survives re-plugging.
func screenID(d platform.Display) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("display-%d", d.ID)
}

type displayChange int

const (
	displaysUnchanged displayChange = iota
	// displaysRearranged: a display appeared, vanished or moved.
	displaysRearranged
	// displayParamsChanged: same displays with a new resolution, work area
	// or primary.
	displayParamsChanged
)

func classifyDisplays(prev, next []platform.Display) displayChange {
	if len(prev) != len(next) {
		return displaysRearranged
	}
	params := false
	for i := range prev {
		a, b := prev[i], next[i]
		if screenID(a) != screenID(b) || a.Bounds.X != b.Bounds.X || a.Bounds.Y != b.Bounds.Y {
			return displaysRearranged
		}
		if a.Bounds != b.Bounds || a.Usable != b.Usable || a.Primary != b.Primary {
			params = true
		}
	}
	if params {
		return displayParamsChanged
	}
	return displaysUnchanged
}
