package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// ConflictKind classifies a wire conflict found after routing.
type ConflictKind int

const (
	ConflictObstacle ConflictKind = iota // wire passes through a body or keepout
	ConflictCrossing                     // wires of different nets cross
	ConflictOverlap                      // wires of different nets share a run
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictObstacle:
		return "obstacle"
	case ConflictCrossing:
		return "crossing"
	case ConflictOverlap:
		return "overlap"
	default:
		return "unknown"
	}
}

// WireConflict is one place where a routed wire violates clearance. Ref
// names the obstacle or the other wire.
type WireConflict struct {
	Kind  ConflictKind `json:"kind"`
	NetID string       `json:"net"`
	Wire  string       `json:"wire"`
	Ref   string       `json:"ref"`
	At    model.Point  `json:"at"`
}

// CheckWireConflicts scans a routing result for wires that pass through
// component bodies or keepouts and for wires of different nets that cross
// or run on top of each other. At most one conflict is reported per wire
// and obstacle, and per pair of wires and kind.
func CheckWireConflicts(c *model.Circuit, result model.RouteResult) []WireConflict {
	type key struct {
		wire  int
		other string
		kind  ConflictKind
	}
	seen := make(map[key]bool)
	var conflicts []WireConflict
	add := func(k key, wc WireConflict) {
		if !seen[k] {
			seen[k] = true
			conflicts = append(conflicts, wc)
		}
	}

	obstacles := obstacleRefs(c)
	for i, w := range result.Paths {
		label := wireLabel(w)
		for _, s := range w.Segments() {
			for _, o := range obstacles {
				if o.rect.IntersectsSegment(s[0], s[1]) {
					add(key{i, o.ref, ConflictObstacle}, WireConflict{
						Kind: ConflictObstacle, NetID: w.NetID, Wire: label, Ref: o.ref,
						At: clipMidpoint(o.rect, s[0], s[1]),
					})
				}
			}
		}

		for j := i + 1; j < len(result.Paths); j++ {
			other := result.Paths[j]
			if other.NetID == w.NetID {
				continue
			}
			for _, a := range w.Segments() {
				for _, b := range other.Segments() {
					kind, at, ok := segmentContact(a, b)
					if !ok {
						continue
					}
					add(key{i, fmt.Sprint(j), kind}, WireConflict{
						Kind: kind, NetID: w.NetID, Wire: label, Ref: wireLabel(other), At: at,
					})
				}
			}
		}
	}
	return conflicts
}

// FormatConflictWarnings produces human-readable warning messages from conflict data.
func FormatConflictWarnings(conflicts []WireConflict) []string {
	warnings := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		var msg string
		switch c.Kind {
		case ConflictObstacle:
			msg = fmt.Sprintf("Net %s: wire %s passes through %s at (%.0f, %.0f)",
				c.NetID, c.Wire, c.Ref, c.At.X, c.At.Y)
		case ConflictCrossing:
			msg = fmt.Sprintf("Net %s: wire %s crosses %s at (%.0f, %.0f)",
				c.NetID, c.Wire, c.Ref, c.At.X, c.At.Y)
		default:
			msg = fmt.Sprintf("Net %s: wire %s runs over %s at (%.0f, %.0f)",
				c.NetID, c.Wire, c.Ref, c.At.X, c.At.Y)
		}
		warnings = append(warnings, msg)
	}
	return warnings
}

type obstacleRef struct {
	ref  string
	rect model.Rect
}

func obstacleRefs(c *model.Circuit) []obstacleRef {
	if c == nil {
		return nil
	}
	refs := make([]obstacleRef, 0, len(c.Components)+len(c.Keepouts))
	for _, comp := range c.Components {
		refs = append(refs, obstacleRef{ref: comp.ID, rect: comp.Bounds})
	}
	for i, k := range c.Keepouts {
		refs = append(refs, obstacleRef{ref: fmt.Sprintf("keepout #%d", i+1), rect: k})
	}
	return refs
}

func wireLabel(w model.WirePath) string {
	return fmt.Sprintf("%s-%s", w.From, w.To)
}

// clipMidpoint returns the middle of the part of segment a-b inside r,
// sampled along the segment.
func clipMidpoint(r model.Rect, a, b model.Point) model.Point {
	const samples = 64
	first, last := -1, -1
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		p := model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		if r.ContainsStrict(p) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return model.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	}
	t := float64(first+last) / 2 / samples
	return model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// segmentContact tests two orthogonal segments. Perpendicular segments that
// meet report a crossing; collinear segments sharing a positive length
// report an overlap. Diagonal segments are ignored.
func segmentContact(a, b [2]model.Point) (ConflictKind, model.Point, bool) {
	ah, av := a[0].Y == a[1].Y, a[0].X == a[1].X
	bh, bv := b[0].Y == b[1].Y, b[0].X == b[1].X
	if (!ah && !av) || (!bh && !bv) {
		return 0, model.Point{}, false
	}

	switch {
	case ah && bh:
		if a[0].Y != b[0].Y {
			return 0, model.Point{}, false
		}
		lo, hi, ok := sharedRange(a[0].X, a[1].X, b[0].X, b[1].X)
		if !ok {
			return 0, model.Point{}, false
		}
		return ConflictOverlap, model.Point{X: (lo + hi) / 2, Y: a[0].Y}, true

	case av && bv:
		if a[0].X != b[0].X {
			return 0, model.Point{}, false
		}
		lo, hi, ok := sharedRange(a[0].Y, a[1].Y, b[0].Y, b[1].Y)
		if !ok {
			return 0, model.Point{}, false
		}
		return ConflictOverlap, model.Point{X: a[0].X, Y: (lo + hi) / 2}, true

	case ah && bv:
		return perpendicularContact(a, b)
	default:
		return perpendicularContact(b, a)
	}
}

func perpendicularContact(h, v [2]model.Point) (ConflictKind, model.Point, bool) {
	y := h[0].Y
	x := v[0].X
	if x < math.Min(h[0].X, h[1].X) || x > math.Max(h[0].X, h[1].X) {
		return 0, model.Point{}, false
	}
	if y < math.Min(v[0].Y, v[1].Y) || y > math.Max(v[0].Y, v[1].Y) {
		return 0, model.Point{}, false
	}
	return ConflictCrossing, model.Point{X: x, Y: y}, true
}

func sharedRange(a0, a1, b0, b1 float64) (float64, float64, bool) {
	lo := math.Max(math.Min(a0, a1), math.Min(b0, b1))
	hi := math.Min(math.Max(a0, a1), math.Max(b0, b1))
	return lo, hi, hi > lo
}
