package store

import (
	"fmt"

	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/layout"
)

// The on-disk shape. Geometry types stay free of JSON tags; these records
// carry the file format.

type record struct {
	Version  int             `json:"version"`
	Spec     specRecord      `json:"spec"`
	Windowed *windowedRecord `json:"windowed,omitempty"`
	Music    *musicRecord    `json:"music,omitempty"`
}

const recordVersion = 1

type specRecord struct {
	Mode                 string        `json:"mode"`
	Tool                 string        `json:"tool,omitempty"`
	Legacy               bool          `json:"legacy,omitempty"`
	TopBarPlacement      string        `json:"top_bar_placement"`
	BottomBarPlacement   string        `json:"bottom_bar_placement"`
	LeadingSidebar       sidebarRecord `json:"leading_sidebar"`
	TrailingSidebar      sidebarRecord `json:"trailing_sidebar"`
	IsLegacyStyle        bool          `json:"legacy_style"`
	EnableOSC            bool          `json:"enable_osc"`
	OSCPosition          string        `json:"osc_position"`
	MusicVideoVisible    bool          `json:"music_video_visible"`
	MusicPlaylistVisible bool          `json:"music_playlist_visible"`
}

type sidebarRecord struct {
	Visible   bool   `json:"visible"`
	Placement string `json:"placement"`
	Tab       string `json:"tab,omitempty"`
}

type rectRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

type insetsRecord struct {
	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
	Leading  float64 `json:"leading"`
	Trailing float64 `json:"trailing"`
}

type windowedRecord struct {
	Frame           rectRecord   `json:"frame"`
	ScreenID        string       `json:"screen_id"`
	Fit             string       `json:"fit"`
	TopMarginHeight float64      `json:"top_margin_height"`
	OutsideBars     insetsRecord `json:"outside_bars"`
	InsideBars      insetsRecord `json:"inside_bars"`
	ViewportMargins insetsRecord `json:"viewport_margins"`
	VideoAspect     float64      `json:"video_aspect"`
}

type musicRecord struct {
	Frame             rectRecord `json:"frame"`
	ScreenID          string     `json:"screen_id"`
	IsVideoVisible    bool       `json:"video_visible"`
	IsPlaylistVisible bool       `json:"playlist_visible"`
	VideoAspect       float64    `json:"video_aspect"`
	ControlBarHeight  float64    `json:"control_bar_height"`
}

func fromSnapshot(s Snapshot) record {
	rec := record{Version: recordVersion, Spec: fromSpec(s.Spec)}
	if w := s.Windowed; w != nil {
		rec.Windowed = &windowedRecord{
			Frame:           fromRect(w.Frame),
			ScreenID:        w.ScreenID,
			Fit:             w.Fit.String(),
			TopMarginHeight: w.TopMarginHeight,
			OutsideBars:     insetsRecord(w.OutsideBars),
			InsideBars:      insetsRecord(w.InsideBars),
			ViewportMargins: insetsRecord(w.ViewportMargins),
			VideoAspect:     w.VideoAspect,
		}
	}
	if m := s.Music; m != nil {
		rec.Music = &musicRecord{
			Frame:             fromRect(m.Frame),
			ScreenID:          m.ScreenID,
			IsVideoVisible:    m.IsVideoVisible,
			IsPlaylistVisible: m.IsPlaylistVisible,
			VideoAspect:       m.VideoAspect,
			ControlBarHeight:  m.ControlBarHeight,
		}
	}
	return rec
}

func (r record) snapshot() (Snapshot, error) {
	if r.Version > recordVersion {
		return Snapshot{}, fmt.Errorf("unsupported version %d", r.Version)
	}
	spec, err := r.Spec.spec()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Spec: spec}
	if w := r.Windowed; w != nil {
		fit, err := geometry.ParseFitOption(w.Fit)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Windowed = &geometry.Windowed{
			Frame:           w.Frame.rect(),
			ScreenID:        w.ScreenID,
			Fit:             fit,
			TopMarginHeight: w.TopMarginHeight,
			OutsideBars:     geometry.Insets(w.OutsideBars),
			InsideBars:      geometry.Insets(w.InsideBars),
			ViewportMargins: geometry.Insets(w.ViewportMargins),
			VideoAspect:     w.VideoAspect,
		}
	}
	if m := r.Music; m != nil {
		snap.Music = &geometry.Music{
			Frame:             m.Frame.rect(),
			ScreenID:          m.ScreenID,
			IsVideoVisible:    m.IsVideoVisible,
			IsPlaylistVisible: m.IsPlaylistVisible,
			VideoAspect:       m.VideoAspect,
			ControlBarHeight:  m.ControlBarHeight,
		}
	}
	return snap, nil
}

func fromRect(r geometry.Rect) rectRecord { return rectRecord{X: r.X, Y: r.Y, W: r.W, H: r.H} }
func (r rectRecord) rect() geometry.Rect  { return geometry.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H} }

func fromSpec(s layout.Spec) specRecord {
	rec := specRecord{
		Mode:                 s.Kind().String(),
		TopBarPlacement:      s.TopBarPlacement.String(),
		BottomBarPlacement:   s.BottomBarPlacement.String(),
		LeadingSidebar:       fromSidebar(s.LeadingSidebar),
		TrailingSidebar:      fromSidebar(s.TrailingSidebar),
		IsLegacyStyle:        s.IsLegacyStyle,
		EnableOSC:            s.EnableOSC,
		OSCPosition:          s.OSCPosition.String(),
		MusicVideoVisible:    s.MusicVideoVisible,
		MusicPlaylistVisible: s.MusicPlaylistVisible,
	}
	if tool, ok := s.Interactive(); ok {
		rec.Tool = tool.String()
	}
	switch m := s.Mode.(type) {
	case layout.FullScreen:
		rec.Legacy = m.Legacy
	case layout.FullScreenInteractive:
		rec.Legacy = m.Legacy
	case layout.Windowed, layout.WindowedInteractive, layout.MusicMode, nil:
	default:
		panic(fmt.Sprintf("store: unhandled mode %T", m))
	}
	return rec
}

func fromSidebar(s layout.Sidebar) sidebarRecord {
	return sidebarRecord{Visible: s.Visible, Placement: s.Placement.String(), Tab: s.Tab}
}

func (r specRecord) spec() (layout.Spec, error) {
	mode, err := layout.ParseMode(r.Mode, r.Tool, r.Legacy)
	if err != nil {
		return layout.Spec{}, err
	}
	top, err := layout.ParsePlacement(r.TopBarPlacement)
	if err != nil {
		return layout.Spec{}, err
	}
	bottom, err := layout.ParsePlacement(r.BottomBarPlacement)
	if err != nil {
		return layout.Spec{}, err
	}
	leading, err := r.LeadingSidebar.sidebar()
	if err != nil {
		return layout.Spec{}, err
	}
	trailing, err := r.TrailingSidebar.sidebar()
	if err != nil {
		return layout.Spec{}, err
	}
	osc, err := layout.ParseOSCPosition(r.OSCPosition)
	if err != nil {
		return layout.Spec{}, err
	}
	return layout.Spec{
		Mode:                 mode,
		TopBarPlacement:      top,
		BottomBarPlacement:   bottom,
		LeadingSidebar:       leading,
		TrailingSidebar:      trailing,
		IsLegacyStyle:        r.IsLegacyStyle,
		EnableOSC:            r.EnableOSC,
		OSCPosition:          osc,
		MusicVideoVisible:    r.MusicVideoVisible,
		MusicPlaylistVisible: r.MusicPlaylistVisible,
	}, nil
}

func (r sidebarRecord) sidebar() (layout.Sidebar, error) {
	p, err := layout.ParsePlacement(r.Placement)
	if err != nil {
		return layout.Sidebar{}, err
	}
	return layout.Sidebar{Visible: r.Visible, Placement: p, Tab: r.Tab}, nil
}
