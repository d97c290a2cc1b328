package model

import "math"

// Point represents a board-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle. X and Y are the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectFromPoints returns the smallest rectangle containing both corners.
func NewRectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no interior.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks the rectangle by d on every side. A negative d grows it.
// The result may be Empty.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// ContainsStrict reports whether p lies strictly inside r (boundary excluded).
func (r Rect) ContainsStrict(p Point) bool {
	return p.X > r.Left() && p.X < r.Right() && p.Y > r.Top() && p.Y < r.Bottom()
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// IntersectsSegment reports whether the segment a-b passes through the
// interior of r. Segments that only touch the boundary do not intersect.
// Uses Liang-Barsky clipping against the open rectangle.
func (r Rect) IntersectsSegment(a, b Point) bool {
	if r.Empty() {
		return false
	}
	if r.ContainsStrict(a) || r.ContainsStrict(b) {
		return true
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q > 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}
	if !clip(-dx, a.X-r.Left()) || !clip(dx, r.Right()-a.X) ||
		!clip(-dy, a.Y-r.Top()) || !clip(dy, r.Bottom()-a.Y) {
		return false
	}
	if t1 <= t0 {
		return false
	}
	mid := Point{X: a.X + dx*(t0+t1)/2, Y: a.Y + dy*(t0+t1)/2}
	return r.ContainsStrict(mid)
}

// Union returns the smallest rectangle that contains both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.Left(), o.Left())
	y0 := math.Min(r.Top(), o.Top())
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// BoundsOf returns the bounding rectangle of a set of points.
func BoundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minP, maxP := points[0], points[0]
	for _, p := range points[1:] {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
	}
	return NewRectFromPoints(minP, maxP)
}

// BoardSide identifies the edge of a component body a pin sits on.
type BoardSide int

const (
	SideLeft BoardSide = iota
	SideRight
	SideTop
	SideBottom
)

func (s BoardSide) String() string {
	switch s {
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return "left"
	}
}

// ParseBoardSide converts a side name to a BoardSide. Unknown names map to
// SideLeft and false.
func ParseBoardSide(s string) (BoardSide, bool) {
	switch s {
	case "left", "l", "L", "Left":
		return SideLeft, true
	case "right", "r", "R", "Right":
		return SideRight, true
	case "top", "t", "T", "Top":
		return SideTop, true
	case "bottom", "b", "B", "Bottom":
		return SideBottom, true
	}
	return SideLeft, false
}
