package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

var (
	// ErrNilGrid is returned when routing is asked to run without a grid.
	ErrNilGrid = errors.New("nil obstacle grid")
	// ErrGridStep is returned when a grid step is below model.MinGridStep.
	ErrGridStep = errors.New("grid step too small")
	// ErrEmptyBoard is returned when the board rectangle has no area.
	ErrEmptyBoard = errors.New("empty board")
)

// Cell is an integer grid coordinate in [0,Cols]x[0,Rows].
type Cell struct {
	X, Y int
}

func (c Cell) add(d direction) Cell {
	return Cell{X: c.X + d.dx(), Y: c.Y + d.dy()}
}

// ObstacleGrid discretizes the board into lattice points spaced Step apart.
// Each cell is free, blocked by a static obstacle, or owned by one net.
// A grid belongs to one routing run and is not safe for concurrent use.
type ObstacleGrid struct {
	origin    model.Point
	step      float64
	cols      int
	rows      int
	blocked   []bool
	owner     []string
	obstacles []model.Rect
}

// NewObstacleGrid builds a grid covering board. Each obstacle is shrunk by
// one step on every side and the cells whose centers fall strictly inside
// the shrunk rectangle are blocked, so cells at the body boundary (where pin
// anchors sit) stay passable.
func NewObstacleGrid(board model.Rect, step float64, obstacles []model.Rect) (*ObstacleGrid, error) {
	if step < model.MinGridStep {
		return nil, fmt.Errorf("step %.2f (min %.0f): %w", step, model.MinGridStep, ErrGridStep)
	}
	if board.Empty() {
		return nil, ErrEmptyBoard
	}
	g := &ObstacleGrid{
		origin:    model.Point{X: board.X, Y: board.Y},
		step:      step,
		cols:      int(math.Ceil(board.Width / step)),
		rows:      int(math.Ceil(board.Height / step)),
		obstacles: append([]model.Rect(nil), obstacles...),
	}
	size := (g.cols + 1) * (g.rows + 1)
	g.blocked = make([]bool, size)
	g.owner = make([]string, size)
	for _, r := range obstacles {
		g.block(r)
	}
	return g, nil
}

func (g *ObstacleGrid) block(r model.Rect) {
	shrunk := r.Inset(g.step)
	if shrunk.Empty() {
		return
	}
	x0 := g.clampX(int(math.Floor((shrunk.Left() - g.origin.X) / g.step)))
	x1 := g.clampX(int(math.Ceil((shrunk.Right() - g.origin.X) / g.step)))
	y0 := g.clampY(int(math.Floor((shrunk.Top() - g.origin.Y) / g.step)))
	y1 := g.clampY(int(math.Ceil((shrunk.Bottom() - g.origin.Y) / g.step)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := Cell{X: x, Y: y}
			if shrunk.ContainsStrict(g.CellToPoint(c)) {
				g.blocked[g.index(c)] = true
			}
		}
	}
}

// Step returns the grid spacing in board units.
func (g *ObstacleGrid) Step() float64 { return g.step }

// Cols returns the largest valid X cell index.
func (g *ObstacleGrid) Cols() int { return g.cols }

// Rows returns the largest valid Y cell index.
func (g *ObstacleGrid) Rows() int { return g.rows }

// Obstacles returns the unshrunk obstacle rectangles the grid was built from.
func (g *ObstacleGrid) Obstacles() []model.Rect {
	return append([]model.Rect(nil), g.obstacles...)
}

func (g *ObstacleGrid) index(c Cell) int {
	return c.Y*(g.cols+1) + c.X
}

func (g *ObstacleGrid) clampX(x int) int { return clamp(x, 0, g.cols) }
func (g *ObstacleGrid) clampY(y int) int { return clamp(y, 0, g.rows) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InBounds reports whether c lies on the grid.
func (g *ObstacleGrid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X <= g.cols && c.Y >= 0 && c.Y <= g.rows
}

// PointToCell rounds p to the nearest cell and clamps it to the grid.
func (g *ObstacleGrid) PointToCell(p model.Point) Cell {
	half := g.step / 2
	return Cell{
		X: g.clampX(int(math.Floor((p.X - g.origin.X + half) / g.step))),
		Y: g.clampY(int(math.Floor((p.Y - g.origin.Y + half) / g.step))),
	}
}

// CellToPoint returns the board point at the center of c.
func (g *ObstacleGrid) CellToPoint(c Cell) model.Point {
	return model.Point{
		X: g.origin.X + float64(c.X)*g.step,
		Y: g.origin.Y + float64(c.Y)*g.step,
	}
}

// IsBlocked reports whether c is covered by a static obstacle.
// Off-grid cells count as blocked.
func (g *ObstacleGrid) IsBlocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[g.index(c)]
}

// OwnerOf returns the net that committed a wire through c, or "".
func (g *ObstacleGrid) OwnerOf(c Cell) string {
	if !g.InBounds(c) {
		return ""
	}
	return g.owner[g.index(c)]
}

// BlockedCount returns the number of blocked cells.
func (g *ObstacleGrid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// ClearOccupancy forgets every committed wire. Static obstacles remain.
func (g *ObstacleGrid) ClearOccupancy() {
	for i := range g.owner {
		g.owner[i] = ""
	}
}

// NearObstacle reports whether any cell in the 8-neighbourhood of c is blocked.
func (g *ObstacleGrid) NearObstacle(c Cell) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Cell{X: c.X + dx, Y: c.Y + dy}
			if g.InBounds(n) && g.blocked[g.index(n)] {
				return true
			}
		}
	}
	return false
}

// NearForeignWire reports whether any cell in the 8-neighbourhood of c is
// owned by a net other than netID.
func (g *ObstacleGrid) NearForeignWire(c Cell, netID string) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Cell{X: c.X + dx, Y: c.Y + dy}
			if !g.InBounds(n) {
				continue
			}
			if o := g.owner[g.index(n)]; o != "" && o != netID {
				return true
			}
		}
	}
	return false
}

// passable reports whether c has finite cost for netID under pass.
func (g *ObstacleGrid) passable(c Cell, netID string, pass model.RoutePass) bool {
	if !g.InBounds(c) {
		return false
	}
	i := g.index(c)
	switch pass {
	case model.PassStandard:
		if g.blocked[i] {
			return false
		}
		o := g.owner[i]
		return o == "" || o == netID
	case model.PassAllowCrossing:
		return !g.blocked[i]
	default:
		return true
	}
}

// MarkOccupancy records netID as the owner of every cell along start-end.
// A diagonal input is split into two axis-aligned legs through the corner
// chosen by the net's tie-break. Blocked cells and cells already owned by
// another net keep their state.
func (g *ObstacleGrid) MarkOccupancy(start, end model.Point, netID string) {
	for _, leg := range g.legs(g.PointToCell(start), g.PointToCell(end), netID) {
		walkCells(leg[0], leg[1], func(c Cell) bool {
			i := g.index(c)
			if !g.blocked[i] && g.owner[i] == "" {
				g.owner[i] = netID
			}
			return true
		})
	}
}

// IsSegmentClear reports whether every cell along the axis-aligned segment
// start-end has finite cost for netID under pass. Diagonal segments are
// never clear.
func (g *ObstacleGrid) IsSegmentClear(start, end model.Point, netID string, pass model.RoutePass) bool {
	a, b := g.PointToCell(start), g.PointToCell(end)
	if a.X != b.X && a.Y != b.Y {
		return false
	}
	ok := true
	walkCells(a, b, func(c Cell) bool {
		ok = g.passable(c, netID, pass)
		return ok
	})
	return ok
}

func (g *ObstacleGrid) legs(a, b Cell, netID string) [][2]Cell {
	if a.X == b.X || a.Y == b.Y {
		return [][2]Cell{{a, b}}
	}
	corner := Cell{X: a.X, Y: b.Y}
	if horizontalFirst(netID) {
		corner = Cell{X: b.X, Y: a.Y}
	}
	return [][2]Cell{{a, corner}, {corner, b}}
}

// walkCells visits every cell on the axis-aligned line a-b inclusive until
// visit returns false.
func walkCells(a, b Cell, visit func(Cell) bool) {
	dx := sign(b.X - a.X)
	dy := sign(b.Y - a.Y)
	for c := a; ; c = (Cell{X: c.X + dx, Y: c.Y + dy}) {
		if !visit(c) || c == b {
			return
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
