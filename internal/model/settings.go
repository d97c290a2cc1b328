package model

// MinGridStep is the smallest accepted routing grid step. Smaller steps
// produce degenerate grids.
const MinGridStep = 4.0

// RouteCosts holds the A* cost table. The values are tuned to match the
// routing behavior of the schematic editor and are not claimed optimal.
type RouteCosts struct {
	Step            int `json:"step"`             // cost of one orthogonal move
	Turn            int `json:"turn"`             // added when direction changes
	ObstacleBuffer  int `json:"obstacle_buffer"`  // destination within one cell of an obstacle
	WireBuffer      int `json:"wire_buffer"`      // destination within one cell of another net
	Cross           int `json:"cross"`            // foreign wire cell, AllowCrossing pass
	Overlap         int `json:"overlap"`          // foreign wire cell, Force pass
	ObstacleOverlap int `json:"obstacle_overlap"` // obstacle cell, Force pass
}

// DefaultRouteCosts returns the reference cost table.
func DefaultRouteCosts() RouteCosts {
	return RouteCosts{
		Step:            10,
		Turn:            100,
		ObstacleBuffer:  100,
		WireBuffer:      50,
		Cross:           500,
		Overlap:         10000,
		ObstacleOverlap: 20000,
	}
}

// RouteSettings holds router configuration.
type RouteSettings struct {
	GridStep         float64    `json:"grid_step"`         // board units per grid cell
	ObstaclePadding  float64    `json:"obstacle_padding"`  // spacing used by the geometric fallback
	MaxIterations    int        `json:"max_iterations"`    // A* expansion cap per search
	FallbackAttempts int        `json:"fallback_attempts"` // offset bends tried by the fallback
	BoardMargin      float64    `json:"board_margin"`      // margin when the board is derived from components
	Costs            RouteCosts `json:"costs"`
}

// DefaultRouteSettings returns router settings matching the editor defaults.
func DefaultRouteSettings() RouteSettings {
	return RouteSettings{
		GridStep:         10,
		ObstaclePadding:  6,
		MaxIterations:    100000,
		FallbackAttempts: 6,
		BoardMargin:      40,
		Costs:            DefaultRouteCosts(),
	}
}

// Normalize fills zero-valued fields with defaults and clamps the grid step.
func (s RouteSettings) Normalize() RouteSettings {
	d := DefaultRouteSettings()
	if s.GridStep < MinGridStep {
		if s.GridStep <= 0 {
			s.GridStep = d.GridStep
		} else {
			s.GridStep = MinGridStep
		}
	}
	if s.ObstaclePadding <= 0 {
		s.ObstaclePadding = d.ObstaclePadding
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.FallbackAttempts <= 0 {
		s.FallbackAttempts = d.FallbackAttempts
	}
	if s.BoardMargin <= 0 {
		s.BoardMargin = d.BoardMargin
	}
	s.Costs = s.Costs.normalize(d.Costs)
	return s
}

// normalize fills each unset cost from d. An absent table takes every
// default. Otherwise a zero Turn is kept, since turn-free routing is a
// valid setting.
func (c RouteCosts) normalize(d RouteCosts) RouteCosts {
	if c == (RouteCosts{}) {
		return d
	}
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&c.Step, d.Step)
	fill(&c.ObstacleBuffer, d.ObstacleBuffer)
	fill(&c.WireBuffer, d.WireBuffer)
	fill(&c.Cross, d.Cross)
	fill(&c.Overlap, d.Overlap)
	fill(&c.ObstacleOverlap, d.ObstacleOverlap)
	if c.Turn < 0 {
		c.Turn = 0
	}
	return c
}
