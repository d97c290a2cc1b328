package engine

import (
	"math"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// fallbackRoute connects a and b in continuous board space when every grid
// pass has failed. It tries the two single-bend L shapes, the net's
// preferred corner first, then three-segment detours whose middle run is
// offset perpendicular to the main direction by +1, -1, +2, -2, ... times
// spacing. A candidate is accepted when none of its segments passes through
// the interior of an obstacle.
func fallbackRoute(a, b model.Point, obstacles []model.Rect, spacing float64, attempts int, netID string) ([]model.Point, bool) {
	if a == b {
		return []model.Point{a}, true
	}
	for _, cand := range lShapes(a, b, netID) {
		if polylineClear(cand, obstacles) {
			return simplify(cand), true
		}
	}
	horizontal := math.Abs(b.X-a.X) >= math.Abs(b.Y-a.Y)
	for i := 1; i <= attempts; i++ {
		mult := float64((i + 1) / 2)
		if i%2 == 0 {
			mult = -mult
		}
		cand := offsetBend(a, b, mult*spacing, horizontal)
		if polylineClear(cand, obstacles) {
			return simplify(cand), true
		}
	}
	return nil, false
}

func lShapes(a, b model.Point, netID string) [][]model.Point {
	if a.X == b.X || a.Y == b.Y {
		return [][]model.Point{{a, b}}
	}
	hv := []model.Point{a, {X: b.X, Y: a.Y}, b}
	vh := []model.Point{a, {X: a.X, Y: b.Y}, b}
	if horizontalFirst(netID) {
		return [][]model.Point{hv, vh}
	}
	return [][]model.Point{vh, hv}
}

// offsetBend leaves a perpendicular to the main direction, runs parallel to
// it at the offset channel, and comes back to b.
func offsetBend(a, b model.Point, offset float64, horizontal bool) []model.Point {
	if horizontal {
		y := (a.Y+b.Y)/2 + offset
		return []model.Point{a, {X: a.X, Y: y}, {X: b.X, Y: y}, b}
	}
	x := (a.X+b.X)/2 + offset
	return []model.Point{a, {X: x, Y: a.Y}, {X: x, Y: b.Y}, b}
}

func polylineClear(points []model.Point, obstacles []model.Rect) bool {
	for i := 1; i < len(points); i++ {
		for _, r := range obstacles {
			if r.IntersectsSegment(points[i-1], points[i]) {
				return false
			}
		}
	}
	return true
}

