package layout

import "fmt"

// ParseMode builds a Mode from its String form. tool is required for the
// interactive modes and ignored otherwise; legacy applies to full screen.
func ParseMode(kind, tool string, legacy bool) (Mode, error) {
	switch kind {
	case "windowed", "":
		return Windowed{}, nil
	case "fullscreen":
		return FullScreen{Legacy: legacy}, nil
	case "music":
		return MusicMode{}, nil
	case "windowed-interactive", "fullscreen-interactive":
		t, err := ParseInteractiveKind(tool)
		if err != nil {
			return nil, err
		}
		if kind == "windowed-interactive" {
			return WindowedInteractive{Tool: t}, nil
		}
		return FullScreenInteractive{Tool: t, Legacy: legacy}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", kind)
	}
}

// ParseInteractiveKind accepts "crop" and "free-select". Empty means crop.
func ParseInteractiveKind(s string) (InteractiveKind, error) {
	switch s {
	case "crop", "":
		return Crop, nil
	case "free-select", "free_select":
		return FreeSelect, nil
	default:
		return Crop, fmt.Errorf("unknown interactive tool %q", s)
	}
}

// ParsePlacement accepts "inside" and "outside". Empty means inside.
func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "inside", "":
		return InsideViewport, nil
	case "outside":
		return OutsideViewport, nil
	default:
		return InsideViewport, fmt.Errorf("unknown bar placement %q", s)
	}
}

// ParseOSCPosition accepts "floating", "top" and "bottom".
func ParseOSCPosition(s string) (OSCPosition, error) {
	switch s {
	case "floating", "":
		return OSCFloating, nil
	case "top":
		return OSCTop, nil
	case "bottom":
		return OSCBottom, nil
	default:
		return OSCFloating, fmt.Errorf("unknown osc position %q", s)
	}
}
