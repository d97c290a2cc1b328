package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// pinComponent places a small body whose right edge carries a single pin
// anchored at the given point.
func pinComponent(id, pin string, at model.Point) model.Component {
	return model.Component{
		ID:     id,
		Type:   "header",
		Bounds: model.Rect{X: at.X - 10, Y: at.Y - 5, Width: 10, Height: 10},
		Pins:   []model.Pin{{Name: pin, Anchor: at, Side: model.SideRight}},
	}
}

func twoPinCircuit(board model.Rect, a, b model.Point, extra ...model.Component) *model.Circuit {
	c := &model.Circuit{
		Name:  "test",
		Board: board,
		Components: append([]model.Component{
			pinComponent("J1", "P", a),
			pinComponent("J2", "P", b),
		}, extra...),
		Nets: []model.Net{{ID: "NET_1", Nodes: []string{"J1.P", "J2.P"}}},
	}
	return c
}

// assertPathAvoidsBlocked walks every grid cell the polyline covers.
func assertPathAvoidsBlocked(t *testing.T, g *ObstacleGrid, pts []model.Point) {
	t.Helper()
	for i := 1; i < len(pts); i++ {
		a, b := g.PointToCell(pts[i-1]), g.PointToCell(pts[i])
		require.True(t, a.X == b.X || a.Y == b.Y, "segment %v-%v is not orthogonal", pts[i-1], pts[i])
		walkCells(a, b, func(c Cell) bool {
			assert.False(t, g.IsBlocked(c), "path crosses blocked cell %+v", c)
			return true
		})
	}
}

func assertOrthogonal(t *testing.T, pts []model.Point) {
	t.Helper()
	for i := 1; i < len(pts); i++ {
		assert.True(t, pts[i-1].X == pts[i].X || pts[i-1].Y == pts[i].Y,
			"segment %v-%v is diagonal", pts[i-1], pts[i])
	}
}

func TestRoute_StraightLine(t *testing.T) {
	c := twoPinCircuit(model.Rect{X: -50, Y: -50, Width: 200, Height: 100},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})

	res, err := New(model.DefaultRouteSettings()).Route(c)
	require.NoError(t, err)

	require.Len(t, res.Paths, 1)
	assert.Empty(t, res.Unrouted)
	p := res.Paths[0]
	assert.Equal(t, []model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, p.Points)
	assert.Equal(t, 0, p.Bends())
	assert.Equal(t, model.PassStandard, p.Pass)
	assert.Equal(t, "J1.P", p.From)
	assert.Equal(t, "J2.P", p.To)
}

func TestRoute_DetoursAroundObstacle(t *testing.T) {
	blocker := model.Component{
		ID:     "U1",
		Type:   "ic",
		Bounds: model.Rect{X: 20, Y: -30, Width: 60, Height: 60},
	}
	c := twoPinCircuit(model.Rect{X: -50, Y: -100, Width: 200, Height: 200},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0}, blocker)

	r := New(model.DefaultRouteSettings())
	grid, err := r.BuildGrid(c)
	require.NoError(t, err)
	require.Greater(t, grid.BlockedCount(), 0)

	res, err := r.RouteOnGrid(grid, c, c.Nets)
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)

	p := res.Paths[0]
	assert.Equal(t, model.PassStandard, p.Pass)
	assert.GreaterOrEqual(t, p.Bends(), 1)
	assert.Equal(t, model.Point{X: 0, Y: 0}, p.Points[0])
	assert.Equal(t, model.Point{X: 100, Y: 0}, p.Points[len(p.Points)-1])
	assertOrthogonal(t, p.Points)
	assertPathAvoidsBlocked(t, grid, p.Points)
}

func TestRoute_EnclosedPinNeedsForce(t *testing.T) {
	box := model.Component{
		ID:     "BOX",
		Type:   "enclosure",
		Bounds: model.Rect{X: 0, Y: 0, Width: 100, Height: 100},
		Pins:   []model.Pin{{Name: "P", Anchor: model.Point{X: 50, Y: 50}}},
	}
	c := &model.Circuit{
		Board:      model.Rect{X: -20, Y: -20, Width: 240, Height: 140},
		Components: []model.Component{box, pinComponent("J2", "P", model.Point{X: 180, Y: 50})},
		Nets:       []model.Net{{ID: "NET_1", Nodes: []string{"BOX.P", "J2.P"}}},
	}

	settings := model.DefaultRouteSettings()
	res, err := New(settings).Route(c)
	require.NoError(t, err)

	require.Len(t, res.Paths, 1)
	assert.Equal(t, model.PassForce, res.Paths[0].Pass)
	assert.Less(t, res.Stats.Expansions, 3*settings.MaxIterations)
	assert.Equal(t, 1, res.Stats.ByPass["force"])
}

func TestRoute_IterationCapFallsBackToGeometry(t *testing.T) {
	c := twoPinCircuit(model.Rect{X: -50, Y: -50, Width: 250, Height: 150},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 50})

	settings := model.DefaultRouteSettings()
	settings.MaxIterations = 2
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	res, err := New(settings).WithMetrics(m).Route(c)
	require.NoError(t, err)

	require.Len(t, res.Paths, 1)
	p := res.Paths[0]
	assert.Equal(t, model.PassFallback, p.Pass)
	assert.Equal(t, 1, p.Bends())
	assertOrthogonal(t, p.Points)
	assert.Equal(t, 6, res.Stats.Expansions)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SearchCapped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PairsRouted.WithLabelValues("fallback")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PairsUnrouted))
}

func TestRoute_UnroutedIsReportedNotFatal(t *testing.T) {
	c := twoPinCircuit(model.Rect{X: -50, Y: -50, Width: 250, Height: 150},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 50})
	c.Keepouts = []model.Rect{{X: 80, Y: 30, Width: 40, Height: 40}}

	settings := model.DefaultRouteSettings()
	settings.MaxIterations = 1

	res, err := New(settings).Route(c)
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
	require.Len(t, res.Unrouted, 1)
	assert.Equal(t, "NET_1", res.Unrouted[0].NetID)
	assert.Contains(t, res.Unrouted[0].Reason, "iteration cap")
	assert.False(t, res.Complete())
}

func TestRoute_LaterNetCrossesEarlierWire(t *testing.T) {
	board := model.Rect{X: 0, Y: 0, Width: 200, Height: 100}
	c := &model.Circuit{
		Board: board,
		Components: []model.Component{
			pinComponent("A1", "P", model.Point{X: 0, Y: 50}),
			pinComponent("A2", "P", model.Point{X: 200, Y: 50}),
			pinComponent("B1", "P", model.Point{X: 100, Y: 0}),
			pinComponent("B2", "P", model.Point{X: 100, Y: 100}),
		},
		Nets: []model.Net{
			{ID: "LONG", Nodes: []string{"A1.P", "A2.P"}},
			{ID: "SHORT", Nodes: []string{"B1.P", "B2.P"}},
		},
	}

	res, err := New(model.DefaultRouteSettings()).Route(c)
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)

	// The smaller net is routed first and goes straight; the wall it leaves
	// forces the other net to cross it.
	assert.Equal(t, "SHORT", res.Paths[0].NetID)
	assert.Equal(t, model.PassStandard, res.Paths[0].Pass)
	assert.Equal(t, "LONG", res.Paths[1].NetID)
	assert.Equal(t, model.PassAllowCrossing, res.Paths[1].Pass)
}

func TestRoute_MultiPinNetProducesSpanningPairs(t *testing.T) {
	c := &model.Circuit{
		Board: model.Rect{X: -50, Y: -50, Width: 300, Height: 200},
		Components: []model.Component{
			pinComponent("R1", "A", model.Point{X: 0, Y: 0}),
			pinComponent("R2", "A", model.Point{X: 100, Y: 0}),
			pinComponent("R3", "A", model.Point{X: 100, Y: 100}),
			pinComponent("R4", "A", model.Point{X: 200, Y: 100}),
		},
		Nets: []model.Net{{ID: "GND", Nodes: []string{"R1.A", "R2.A", "R3.A", "R4.A"}}},
	}

	res, err := New(model.DefaultRouteSettings()).Route(c)
	require.NoError(t, err)
	assert.Len(t, res.Paths, 3)
	assert.Empty(t, res.Unrouted)
	assert.Equal(t, 3, res.Stats.Pairs)
	for _, p := range res.Paths {
		assertOrthogonal(t, p.Points)
	}
}

func TestRoute_SkipsUnresolvableNets(t *testing.T) {
	c := twoPinCircuit(model.Rect{X: -50, Y: -50, Width: 200, Height: 100},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})
	c.Nets = append(c.Nets,
		model.Net{ID: "DANGLING", Nodes: []string{"J1.P"}},
		model.Net{ID: "GHOST", Nodes: []string{"X9.P", "J2.Q", "bogus"}},
	)

	res, err := New(model.DefaultRouteSettings()).Route(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"DANGLING", "GHOST"}, res.Skipped)
	assert.Len(t, res.Paths, 1)
}

func TestRoute_Deterministic(t *testing.T) {
	blocker := model.Component{ID: "U1", Type: "ic", Bounds: model.Rect{X: 20, Y: -30, Width: 60, Height: 60}}
	c := twoPinCircuit(model.Rect{X: -50, Y: -100, Width: 200, Height: 200},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0}, blocker)

	r := New(model.DefaultRouteSettings())
	first, err := r.Route(c)
	require.NoError(t, err)
	second, err := r.Route(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRouteOnGrid_NilGrid(t *testing.T) {
	_, err := New(model.DefaultRouteSettings()).RouteOnGrid(nil, &model.Circuit{}, nil)
	assert.ErrorIs(t, err, ErrNilGrid)

	_, _, err = New(model.DefaultRouteSettings()).RouteNet(nil, &model.Circuit{}, model.Net{})
	assert.ErrorIs(t, err, ErrNilGrid)
}

func TestRouteNet_CommitsOccupancy(t *testing.T) {
	c := twoPinCircuit(model.Rect{X: -50, Y: -50, Width: 200, Height: 100},
		model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})
	r := New(model.DefaultRouteSettings())
	grid, err := r.BuildGrid(c)
	require.NoError(t, err)

	paths, failed, err := r.RouteNet(grid, c, c.Nets[0])
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, paths, 1)

	for x := 0.0; x <= 100; x += 10 {
		assert.Equal(t, "NET_1", grid.OwnerOf(grid.PointToCell(model.Point{X: x, Y: 0})))
	}
	assert.False(t, grid.IsSegmentClear(model.Point{X: 50, Y: -40}, model.Point{X: 50, Y: 40}, "OTHER", model.PassStandard))
}
