package engine

import (
	"github.com/cespare/xxhash/v2"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// horizontalFirst picks the corner used when a diagonal connection of netID
// is split into two legs. It depends only on the net id, so a net keeps the
// same shape across rebuilds.
func horizontalFirst(netID string) bool {
	return xxhash.Sum64String(netID)%2 == 0
}

// splitDiagonal returns a-b as an orthogonal polyline: unchanged when the
// points are aligned, otherwise through the net's preferred corner.
func splitDiagonal(a, b model.Point, netID string) []model.Point {
	if a.X == b.X || a.Y == b.Y {
		return []model.Point{a, b}
	}
	if horizontalFirst(netID) {
		return []model.Point{a, {X: b.X, Y: a.Y}, b}
	}
	return []model.Point{a, {X: a.X, Y: b.Y}, b}
}

// simplify drops repeated points and interior points that lie on a straight
// run, so every remaining interior point is a bend.
func simplify(points []model.Point) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		for len(out) >= 2 && collinear(out[len(out)-2], out[len(out)-1], p) {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	return out
}

func collinear(a, b, c model.Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}
