package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/google/go-cmp/cmp"
)

func TestUsableArea(t *testing.T) {
	// Two 1920x1080 monitors side by side; a 30px top panel spans only the
	// left one and a 40px bottom dock spans both.
	const rootW, rootH = 3840, 1080
	var docks []reservation
	docks = append(docks, strutReservations(ewmh.WmStrutPartial{Top: 30, TopEndX: 1919}, rootW, rootH)...)
	docks = append(docks, strutReservations(ewmh.WmStrutPartial{Bottom: 40, BottomEndX: 3839}, rootW, rootH)...)

	tests := []struct {
		name   string
		mon    Area
		docks  []reservation
		want   Area
		docked bool
	}{
		{"left", Area{Width: 1920, Height: 1080}, docks, Area{Y: 30, Width: 1920, Height: 1010}, true},
		{"right", Area{X: 1920, Width: 1920, Height: 1080}, docks, Area{X: 1920, Width: 1920, Height: 1040}, true},
		{"no docks", Area{Width: 1920, Height: 1080}, nil, Area{Width: 1920, Height: 1080}, false},
		{
			"right sidebar",
			Area{X: 1920, Width: 1920, Height: 1080},
			strutReservations(ewmh.WmStrutPartial{Right: 64, RightEndY: 1079}, rootW, rootH),
			Area{X: 1920, Width: 1856, Height: 1080},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, docked := usableArea(tt.mon, tt.docks)
			if docked != tt.docked {
				t.Fatalf("docked = %v, want %v", docked, tt.docked)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("usable area mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrutReservations_InclusiveEnds(t *testing.T) {
	got := strutReservations(ewmh.WmStrutPartial{Left: 20, LeftStartY: 100, LeftEndY: 199}, 1920, 1080)
	want := []reservation{{edge: edgeLeft, area: Area{Y: 100, Width: 20, Height: 100}}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(reservation{})); diff != "" {
		t.Fatalf("reservations mismatch (-want +got):\n%s", diff)
	}
}

func TestAreaIntersect(t *testing.T) {
	if got := (Area{Width: 100, Height: 100}).intersect(Area{X: 50, Y: 50, Width: 150, Height: 150}); got != (Area{X: 50, Y: 50, Width: 50, Height: 50}) {
		t.Fatalf("overlap = %+v", got)
	}
	if !(Area{Width: 100, Height: 100}).intersect(Area{X: 100, Width: 100, Height: 100}).empty() {
		t.Fatalf("touching edges must not intersect")
	}
}
