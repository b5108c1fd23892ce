package geometry

import (
	"fmt"
	"math"
)

// AspectTolerance is the largest relative aspect drift any computation may introduce.
const AspectTolerance = 1e-6

// Point is a position in screen coordinates (origin top-left, Y grows down).
type Point struct {
	X float64
	Y float64
}

// Size is a width/height pair.
type Size struct {
	W float64
	H float64
}

// Aspect returns W/H, or 0 when the size is degenerate.
func (s Size) Aspect() float64 {
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W / s.H
}

// IsEmpty reports whether either dimension is non-positive.
func (s Size) IsEmpty() bool {
	return s.W <= 0 || s.H <= 0
}

// Round returns the size rounded to whole pixels.
func (s Size) Round() Size {
	return Size{W: math.Round(s.W), H: math.Round(s.H)}
}

// Max returns the componentwise maximum.
func (s Size) Max(o Size) Size {
	return Size{W: math.Max(s.W, o.W), H: math.Max(s.H, o.H)}
}

// Grow adds the thickness of the given insets.
func (s Size) Grow(in Insets) Size {
	return Size{W: s.W + in.Horizontal(), H: s.H + in.Vertical()}
}

// Shrink removes the thickness of the given insets, never going below zero.
func (s Size) Shrink(in Insets) Size {
	return Size{W: math.Max(0, s.W-in.Horizontal()), H: math.Max(0, s.H-in.Vertical())}
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

// Rect is an origin plus size.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// RectFrom builds a rect from an origin and size.
func RectFrom(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, W: size.W, H: size.H}
}

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size    { return Size{W: r.W, H: r.H} }
func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Center returns the midpoint of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// CenteredAt returns a rect of the given size whose center is c.
func CenteredAt(c Point, size Size) Rect {
	return Rect{X: c.X - size.W/2, Y: c.Y - size.H/2, W: size.W, H: size.H}
}

// ContainsPoint uses half-open edges: [X, MaxX) × [Y, MaxY).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// ContainsRect reports whether o lies fully within r, allowing a tolerance
// of half a pixel for float drift.
func (r Rect) ContainsRect(o Rect) bool {
	const eps = 0.5
	return o.X >= r.X-eps && o.Y >= r.Y-eps && o.MaxX() <= r.MaxX()+eps && o.MaxY() <= r.MaxY()+eps
}

// Intersection returns the overlap of two rects; the zero Rect when disjoint.
func (r Rect) Intersection(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.MaxX(), o.MaxX())
	y2 := math.Min(r.MaxY(), o.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Inset shrinks the rect by the given insets. Leading is the left edge.
func (r Rect) Inset(in Insets) Rect {
	out := Rect{
		X: r.X + in.Leading,
		Y: r.Y + in.Top,
		W: r.W - in.Horizontal(),
		H: r.H - in.Vertical(),
	}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Round snaps origin and size to whole pixels.
func (r Rect) Round() Rect {
	return Rect{X: math.Round(r.X), Y: math.Round(r.Y), W: math.Round(r.W), H: math.Round(r.H)}
}

func (r Rect) String() string {
	return fmt.Sprintf("%gx%g@%g,%g", r.W, r.H, r.X, r.Y)
}

// Insets holds the thickness occupied on each edge.
type Insets struct {
	Top      float64
	Bottom   float64
	Leading  float64
	Trailing float64
}

func (in Insets) Horizontal() float64 { return in.Leading + in.Trailing }
func (in Insets) Vertical() float64   { return in.Top + in.Bottom }

// Add returns the edge-wise sum.
func (in Insets) Add(o Insets) Insets {
	return Insets{
		Top:      in.Top + o.Top,
		Bottom:   in.Bottom + o.Bottom,
		Leading:  in.Leading + o.Leading,
		Trailing: in.Trailing + o.Trailing,
	}
}

// AspectFit returns the largest size with the given aspect that fits inside
// bounds. When both dimensions overflow, the axis producing the smaller
// result wins, so the video is shrunk rather than cropped.
func AspectFit(aspect float64, bounds Size) Size {
	if aspect <= 0 || bounds.IsEmpty() {
		return Size{}
	}
	if bounds.W/aspect <= bounds.H {
		return Size{W: bounds.W, H: bounds.W / aspect}
	}
	return Size{W: bounds.H * aspect, H: bounds.H}
}

// AspectFill returns the smallest size with the given aspect that covers
// bounds.
func AspectFill(aspect float64, bounds Size) Size {
	if aspect <= 0 {
		return bounds
	}
	if bounds.W/aspect >= bounds.H {
		return Size{W: bounds.W, H: bounds.W / aspect}
	}
	return Size{W: bounds.H * aspect, H: bounds.H}
}

// AspectEqual compares two aspect ratios within AspectTolerance, relative.
func AspectEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if a <= 0 || b <= 0 {
		return false
	}
	return math.Abs(a-b)/b <= AspectTolerance
}
