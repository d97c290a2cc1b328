package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// Geometry supplies component placement to the router. model.Circuit
// implements it.
type Geometry interface {
	BoundingRect(componentID string) (model.Rect, bool)
	PinAnchor(componentID, pin string) (model.Point, model.BoardSide, bool)
}

// anchor is a resolved net node.
type anchor struct {
	node  model.Node
	point model.Point
}

type pinPair struct {
	from, to anchor
}

// plannedNet is a net ready for routing: its resolvable anchors and the
// pairs that connect them.
type plannedNet struct {
	id      string
	anchors []anchor
	pairs   []pinPair
	size    float64
}

// resolveAnchors looks up the anchor of every node in net. Nodes that are
// malformed, repeated, or unknown to geo are ignored.
func resolveAnchors(geo Geometry, net model.Net) []anchor {
	seen := make(map[string]bool, len(net.Nodes))
	out := make([]anchor, 0, len(net.Nodes))
	for _, s := range net.Nodes {
		if seen[s] {
			continue
		}
		seen[s] = true
		n, ok := model.ParseNode(s)
		if !ok {
			continue
		}
		p, _, ok := geo.PinAnchor(n.ComponentID, n.Pin)
		if !ok {
			continue
		}
		out = append(out, anchor{node: n, point: p})
	}
	return out
}

// planPairs builds a spanning connection order by greedy nearest neighbour:
// starting from the first anchor, the closest unconnected anchor is joined to
// whichever connected anchor it is closest to. Ties go to the earlier anchor.
func planPairs(anchors []anchor) []pinPair {
	k := len(anchors)
	if k < 2 {
		return nil
	}
	connected := make([]bool, k)
	bestDist := make([]float64, k)
	bestFrom := make([]int, k)
	connected[0] = true
	for j := 1; j < k; j++ {
		bestDist[j] = anchors[0].point.DistSq(anchors[j].point)
	}

	pairs := make([]pinPair, 0, k-1)
	for len(pairs) < k-1 {
		next := -1
		for j := 1; j < k; j++ {
			if !connected[j] && (next < 0 || bestDist[j] < bestDist[next]) {
				next = j
			}
		}
		connected[next] = true
		pairs = append(pairs, pinPair{from: anchors[bestFrom[next]], to: anchors[next]})
		for j := 1; j < k; j++ {
			if connected[j] {
				continue
			}
			if d := anchors[next].point.DistSq(anchors[j].point); d < bestDist[j] {
				bestDist[j] = d
				bestFrom[j] = next
			}
		}
	}
	return pairs
}

// anchorExtent returns width+height of the bounding box of the anchors.
func anchorExtent(anchors []anchor) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, a := range anchors {
		minX = math.Min(minX, a.point.X)
		minY = math.Min(minY, a.point.Y)
		maxX = math.Max(maxX, a.point.X)
		maxY = math.Max(maxY, a.point.Y)
	}
	return (maxX - minX) + (maxY - minY)
}

// planNets resolves and orders nets for routing: smallest anchor extent
// first, ties by case-insensitive net id. Nets with fewer than two
// resolvable anchors are returned as skipped.
func planNets(geo Geometry, nets []model.Net) (planned []plannedNet, skipped []string) {
	for _, net := range nets {
		anchors := resolveAnchors(geo, net)
		if len(anchors) < 2 {
			skipped = append(skipped, net.ID)
			continue
		}
		planned = append(planned, plannedNet{
			id:      net.ID,
			anchors: anchors,
			pairs:   planPairs(anchors),
			size:    anchorExtent(anchors),
		})
	}
	sort.SliceStable(planned, func(i, j int) bool {
		if planned[i].size != planned[j].size {
			return planned[i].size < planned[j].size
		}
		fi, fj := strings.ToLower(planned[i].id), strings.ToLower(planned[j].id)
		if fi != fj {
			return fi < fj
		}
		return planned[i].id < planned[j].id
	})
	return planned, skipped
}
