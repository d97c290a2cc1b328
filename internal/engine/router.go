// Package engine routes orthogonal wires between component pins on an
// obstacle grid.
//
// Each net's pins are joined in nearest-neighbour order. Every pin pair is
// searched with A* under three escalating passes (Standard, AllowCrossing,
// Force); when all three fail a continuous-geometry fallback tries simple
// bends. Committed wires are written back into the grid so later nets avoid
// them. Routing failures are reported as data, never as errors.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

var gridPasses = [...]model.RoutePass{model.PassStandard, model.PassAllowCrossing, model.PassForce}

// Router runs the wire routing algorithm.
type Router struct {
	Settings model.RouteSettings
	logger   *slog.Logger
	metrics  *Metrics
}

// New creates a router. Zero-valued settings fields take their defaults.
func New(settings model.RouteSettings) *Router {
	return &Router{
		Settings: settings.Normalize(),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for per-net debug records and the run
// summary.
func (r *Router) WithLogger(l *slog.Logger) *Router {
	if l != nil {
		r.logger = l
	}
	return r
}

// WithMetrics attaches Prometheus collectors.
func (r *Router) WithMetrics(m *Metrics) *Router {
	r.metrics = m
	return r
}

// BuildGrid creates a fresh obstacle grid for the circuit: the effective
// board, blocked by every component body and keepout.
func (r *Router) BuildGrid(c *model.Circuit) (*ObstacleGrid, error) {
	board := c.EffectiveBoard(r.Settings.BoardMargin)
	grid, err := NewObstacleGrid(board, r.Settings.GridStep, c.ObstacleRects())
	if err != nil {
		return nil, fmt.Errorf("building grid for %q: %w", c.Name, err)
	}
	return grid, nil
}

// Route routes every net of the circuit on a freshly built grid.
func (r *Router) Route(c *model.Circuit) (model.RouteResult, error) {
	if c == nil {
		return model.RouteResult{}, errors.New("nil circuit")
	}
	grid, err := r.BuildGrid(c)
	if err != nil {
		return model.RouteResult{}, err
	}
	return r.RouteOnGrid(grid, c, c.Nets)
}

// RouteOnGrid routes nets on a caller-supplied grid, smallest nets first.
// Occupancy already present on the grid is respected. The only errors are
// a nil grid or geometry.
func (r *Router) RouteOnGrid(grid *ObstacleGrid, geo Geometry, nets []model.Net) (model.RouteResult, error) {
	if grid == nil {
		return model.RouteResult{}, ErrNilGrid
	}
	if geo == nil {
		return model.RouteResult{}, errors.New("nil geometry")
	}
	result := model.RouteResult{
		Paths:    []model.WirePath{},
		Unrouted: []model.UnroutedPair{},
		Skipped:  []string{},
		Stats:    model.RouteStats{ByPass: map[string]int{}},
	}
	planned, skipped := planNets(geo, nets)
	result.Skipped = append(result.Skipped, skipped...)
	for _, id := range skipped {
		r.logger.Debug("net skipped", "net", id, "reason", "fewer than two resolvable pins")
	}
	for _, pn := range planned {
		paths, failed := r.routePlanned(grid, pn, &result.Stats)
		result.Paths = append(result.Paths, paths...)
		result.Unrouted = append(result.Unrouted, failed...)
		r.logger.Debug("net routed", "net", pn.id, "pairs", len(pn.pairs), "unrouted", len(failed))
	}
	result.Stats.Nets = len(planned)
	r.logger.Info("routing complete",
		"nets", len(planned),
		"paths", len(result.Paths),
		"unrouted", len(result.Unrouted),
		"skipped", len(result.Skipped),
		"expansions", result.Stats.Expansions)
	return result, nil
}

// RouteNet routes a single net on grid and returns its wires and failed
// pairs. A net with fewer than two resolvable pins yields nothing.
func (r *Router) RouteNet(grid *ObstacleGrid, geo Geometry, net model.Net) ([]model.WirePath, []model.UnroutedPair, error) {
	if grid == nil {
		return nil, nil, ErrNilGrid
	}
	anchors := resolveAnchors(geo, net)
	if len(anchors) < 2 {
		return nil, nil, nil
	}
	pn := plannedNet{id: net.ID, anchors: anchors, pairs: planPairs(anchors)}
	stats := model.RouteStats{ByPass: map[string]int{}}
	paths, failed := r.routePlanned(grid, pn, &stats)
	return paths, failed, nil
}

func (r *Router) routePlanned(grid *ObstacleGrid, pn plannedNet, stats *model.RouteStats) ([]model.WirePath, []model.UnroutedPair) {
	var paths []model.WirePath
	var failed []model.UnroutedPair
	for _, pair := range pn.pairs {
		stats.Pairs++
		wp, reason, ok := r.routePair(grid, pn.id, pair, stats)
		if !ok {
			failed = append(failed, model.UnroutedPair{
				NetID:  pn.id,
				From:   pair.from.node.String(),
				To:     pair.to.node.String(),
				Reason: reason,
			})
			r.metrics.unrouted()
			continue
		}
		stats.ByPass[wp.Pass.String()]++
		r.metrics.routed(wp.Pass)
		paths = append(paths, wp)
	}
	return paths, failed
}

func (r *Router) routePair(grid *ObstacleGrid, netID string, pair pinPair, stats *model.RouteStats) (model.WirePath, string, bool) {
	wp := model.WirePath{
		NetID: netID,
		From:  pair.from.node.String(),
		To:    pair.to.node.String(),
	}
	start := grid.PointToCell(pair.from.point)
	goal := grid.PointToCell(pair.to.point)

	if cells, ok := straightRun(grid, start, goal, netID); ok {
		wp.Points = r.commit(grid, netID, anchorPath(grid, cells, pair, netID))
		wp.Pass = model.PassStandard
		return wp, "", true
	}

	capped := false
	for _, pass := range gridPasses {
		res := search(grid, r.Settings.Costs, r.Settings.MaxIterations, start, goal, netID, pass)
		stats.Expansions += res.expansions
		r.metrics.observeSearch(res)
		if res.capped {
			capped = true
		}
		if res.found {
			wp.Points = r.commit(grid, netID, anchorPath(grid, res.cells, pair, netID))
			wp.Pass = pass
			return wp, "", true
		}
	}

	obstacles := grid.Obstacles()
	spacing := r.Settings.ObstaclePadding + 2*grid.Step()
	if pts, ok := fallbackRoute(pair.from.point, pair.to.point, obstacles, spacing, r.Settings.FallbackAttempts, netID); ok {
		wp.Points = r.commit(grid, netID, pts)
		wp.Pass = model.PassFallback
		return wp, "", true
	}

	if capped {
		return wp, "iteration cap reached and fallback blocked", false
	}
	return wp, "no path on grid and fallback blocked", false
}

// straightRun returns the cells of a direct aligned run from start to goal
// when every cell is clear under the Standard pass.
func straightRun(grid *ObstacleGrid, start, goal Cell, netID string) ([]Cell, bool) {
	if start.X != goal.X && start.Y != goal.Y {
		return nil, false
	}
	if !grid.IsSegmentClear(grid.CellToPoint(start), grid.CellToPoint(goal), netID, model.PassStandard) {
		return nil, false
	}
	var cells []Cell
	walkCells(start, goal, func(c Cell) bool {
		cells = append(cells, c)
		return true
	})
	return cells, true
}

// anchorPath converts grid cells to board points and adds the stubs from
// the raw anchors to the first and last grid points.
func anchorPath(grid *ObstacleGrid, cells []Cell, pair pinPair, netID string) []model.Point {
	pts := []model.Point{pair.from.point}
	for _, c := range cells {
		p := grid.CellToPoint(c)
		pts = append(pts, splitDiagonal(pts[len(pts)-1], p, netID)[1:]...)
	}
	pts = append(pts, splitDiagonal(pts[len(pts)-1], pair.to.point, netID)[1:]...)
	return simplify(pts)
}

// commit marks every segment of the polyline as owned by netID.
func (r *Router) commit(grid *ObstacleGrid, netID string, pts []model.Point) []model.Point {
	if len(pts) == 1 {
		grid.MarkOccupancy(pts[0], pts[0], netID)
	}
	for i := 1; i < len(pts); i++ {
		grid.MarkOccupancy(pts[i-1], pts[i], netID)
	}
	return pts
}
