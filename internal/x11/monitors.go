package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Area is a rectangle in root window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (a Area) empty() bool { return a.Width <= 0 || a.Height <= 0 }

func (a Area) intersect(b Area) Area {
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Area{}
	}
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Monitor is one enabled CRTC.
type Monitor struct {
	ID      int
	Name    string
	Bounds  Area
	Primary bool
	// Usable excludes dock struts, or falls back to the EWMH work area.
	Usable Area
}

// GetMonitors lists enabled monitors with their usable areas.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(xc, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	docks := c.dockReservations()
	workArea, haveWorkArea := c.workArea()

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		m := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Monitor%d", i),
			Bounds: Area{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
		}
		if out, err := randr.GetOutputInfo(xc, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(out.Name)
		}
		for _, out := range info.Outputs {
			if primary != 0 && out == primary {
				m.Primary = true
			}
		}

		if usable, ok := usableArea(m.Bounds, docks); ok {
			m.Usable = usable
		} else if clipped := m.Bounds.intersect(workArea); haveWorkArea && !clipped.empty() {
			// The work area spans every monitor; keep only our share.
			m.Usable = clipped
		} else {
			m.Usable = m.Bounds
		}
		monitors = append(monitors, m)
	}
	return monitors, nil
}

// workArea returns _NET_WORKAREA for the current desktop.
func (c *Connection) workArea() (Area, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return Area{}, false
	}
	idx := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		idx = int(cur)
	}
	wa := areas[idx]
	return Area{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

type edge int

const (
	edgeLeft edge = iota
	edgeRight
	edgeTop
	edgeBottom
)

// reservation is a strip of the root window a dock keeps clear.
type reservation struct {
	edge edge
	area Area
}

// dockReservations collects the struts of every dock window.
func (c *Connection) dockReservations() []reservation {
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil
	}
	rootW, rootH := int(root.Width), int(root.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []reservation
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			out = append(out, strutReservations(*sp, rootW, rootH)...)
			continue
		}
		// Some docks only set _NET_WM_STRUT, which spans the whole edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			out = append(out, strutReservations(ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}, rootW, rootH)...)
		}
	}
	return out
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// strutReservations turns a partial strut into root-window strips. End
// coordinates in the strut are inclusive.
func strutReservations(sp ewmh.WmStrutPartial, rootW, rootH int) []reservation {
	var out []reservation
	if sp.Top > 0 {
		out = append(out, reservation{edgeTop, Area{
			X: int(sp.TopStartX), Y: 0,
			Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top),
		}})
	}
	if sp.Bottom > 0 {
		out = append(out, reservation{edgeBottom, Area{
			X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom),
			Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom),
		}})
	}
	if sp.Left > 0 {
		out = append(out, reservation{edgeLeft, Area{
			X: 0, Y: int(sp.LeftStartY),
			Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1,
		}})
	}
	if sp.Right > 0 {
		out = append(out, reservation{edgeRight, Area{
			X: rootW - int(sp.Right), Y: int(sp.RightStartY),
			Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1,
		}})
	}
	return out
}

// usableArea removes from mon the strips docks reserve over it. The bool is
// false when no dock touches mon.
func usableArea(mon Area, rs []reservation) (Area, bool) {
	var left, right, top, bottom int
	for _, r := range rs {
		hit := mon.intersect(r.area)
		if hit.empty() {
			continue
		}
		switch r.edge {
		case edgeLeft:
			left = max(left, hit.Width)
		case edgeRight:
			right = max(right, hit.Width)
		case edgeTop:
			top = max(top, hit.Height)
		case edgeBottom:
			bottom = max(bottom, hit.Height)
		}
	}
	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return mon, false
	}
	return Area{
		X:      mon.X + left,
		Y:      mon.Y + top,
		Width:  max(1, mon.Width-left-right),
		Height: max(1, mon.Height-top-bottom),
	}, true
}
