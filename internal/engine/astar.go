package engine

import (
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

type direction int8

const (
	dirNone direction = iota
	dirRight
	dirDown
	dirLeft
	dirUp
)

var moves = [...]direction{dirRight, dirDown, dirLeft, dirUp}

func (d direction) dx() int {
	switch d {
	case dirRight:
		return 1
	case dirLeft:
		return -1
	}
	return 0
}

func (d direction) dy() int {
	switch d {
	case dirDown:
		return 1
	case dirUp:
		return -1
	}
	return 0
}

// state is a search vertex. The incoming direction is part of the state so
// that turn penalties are accounted exactly.
type state struct {
	cell Cell
	dir  direction
}

type openEntry struct {
	st  state
	g   int
	f   int
	h   int
	seq int
}

// byF orders open entries by f, then h (closer to goal first), then
// insertion order so that equal-cost searches are reproducible.
func byF(a, b interface{}) int {
	x := a.(openEntry)
	y := b.(openEntry)
	switch {
	case x.f != y.f:
		return x.f - y.f
	case x.h != y.h:
		return x.h - y.h
	default:
		return x.seq - y.seq
	}
}

type searchResult struct {
	cells      []Cell
	cost       int
	expansions int
	found      bool
	capped     bool
}

// search runs a 4-directional A* from start to goal under the cost rules of
// pass. Start and goal are traversable regardless of obstacles or wires.
func search(g *ObstacleGrid, costs model.RouteCosts, maxIter int, start, goal Cell, netID string, pass model.RoutePass) searchResult {
	var res searchResult
	if start == goal {
		res.cells = []Cell{start}
		res.found = true
		return res
	}

	heuristic := func(c Cell) int {
		return costs.Step * (abs(c.X-goal.X) + abs(c.Y-goal.Y))
	}

	open := binaryheap.NewWith(byF)
	best := map[state]int{}
	parent := map[state]state{}
	closed := map[state]bool{}

	seq := 0
	origin := state{cell: start, dir: dirNone}
	best[origin] = 0
	h0 := heuristic(start)
	open.Push(openEntry{st: origin, g: 0, f: h0, h: h0, seq: seq})

	for !open.Empty() {
		if res.expansions >= maxIter {
			res.capped = true
			return res
		}
		v, _ := open.Pop()
		cur := v.(openEntry)
		if closed[cur.st] {
			continue
		}
		closed[cur.st] = true
		res.expansions++

		if cur.st.cell == goal {
			res.cells = unwind(parent, cur.st, origin)
			res.cost = cur.g
			res.found = true
			return res
		}

		for _, d := range moves {
			next := cur.st.cell.add(d)
			if !g.InBounds(next) {
				continue
			}
			step, ok := moveCost(g, costs, next, goal, netID, pass)
			if !ok {
				continue
			}
			if cur.st.dir != dirNone && cur.st.dir != d {
				step += costs.Turn
			}
			ns := state{cell: next, dir: d}
			if closed[ns] {
				continue
			}
			ng := cur.g + step
			if old, seen := best[ns]; seen && old <= ng {
				continue
			}
			best[ns] = ng
			parent[ns] = cur.st
			seq++
			h := heuristic(next)
			open.Push(openEntry{st: ns, g: ng, f: ng + h, h: h, seq: seq})
		}
	}
	return res
}

// moveCost returns the cost of entering c, or false when c is impassable
// under pass.
func moveCost(g *ObstacleGrid, costs model.RouteCosts, c, goal Cell, netID string, pass model.RoutePass) (int, bool) {
	if c == goal {
		return costs.Step, true
	}
	i := g.index(c)
	cost := costs.Step
	if o := g.owner[i]; o != "" && o != netID {
		switch pass {
		case model.PassStandard:
			return 0, false
		case model.PassAllowCrossing:
			cost = costs.Cross
		default:
			cost = costs.Overlap
		}
	}
	if g.blocked[i] {
		if pass != model.PassForce {
			return 0, false
		}
		if costs.ObstacleOverlap > cost {
			cost = costs.ObstacleOverlap
		}
	}
	if g.NearObstacle(c) {
		cost += costs.ObstacleBuffer
	}
	if g.NearForeignWire(c, netID) {
		cost += costs.WireBuffer
	}
	return cost, true
}

func unwind(parent map[state]state, end, origin state) []Cell {
	var rev []Cell
	for s := end; ; {
		rev = append(rev, s.cell)
		if s == origin {
			break
		}
		s = parent[s]
	}
	cells := make([]Cell, len(rev))
	for i, c := range rev {
		cells[len(rev)-1-i] = c
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
