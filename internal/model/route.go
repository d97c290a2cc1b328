package model

// RoutePass identifies the permissiveness level that produced a wire.
type RoutePass int

const (
	PassStandard      RoutePass = iota // other nets and obstacles are impassable
	PassAllowCrossing                  // other nets crossable at a penalty
	PassForce                          // everything passable at a heavy penalty
	PassFallback                       // continuous-geometry L/offset bend
)

func (p RoutePass) String() string {
	switch p {
	case PassStandard:
		return "standard"
	case PassAllowCrossing:
		return "allow-crossing"
	case PassForce:
		return "force"
	case PassFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// WirePath is one routed pin-to-pin connection of a net, as an orthogonal
// polyline in board coordinates.
type WirePath struct {
	NetID  string    `json:"net"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Points []Point   `json:"points"`
	Pass   RoutePass `json:"pass"`
}

// Segments returns the polyline as consecutive point pairs.
func (w WirePath) Segments() [][2]Point {
	if len(w.Points) < 2 {
		return nil
	}
	segs := make([][2]Point, 0, len(w.Points)-1)
	for i := 1; i < len(w.Points); i++ {
		segs = append(segs, [2]Point{w.Points[i-1], w.Points[i]})
	}
	return segs
}

// Bends counts direction changes along the polyline.
func (w WirePath) Bends() int {
	bends := 0
	for i := 2; i < len(w.Points); i++ {
		a, b, c := w.Points[i-2], w.Points[i-1], w.Points[i]
		h1 := a.Y == b.Y
		h2 := b.Y == c.Y
		if h1 != h2 {
			bends++
		}
	}
	return bends
}

// Length returns the total Manhattan length of the polyline.
func (w WirePath) Length() float64 {
	var total float64
	for _, s := range w.Segments() {
		dx := s[1].X - s[0].X
		dy := s[1].Y - s[0].Y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		total += dx + dy
	}
	return total
}

// UnroutedPair is a pin pair that no pass or fallback could connect.
type UnroutedPair struct {
	NetID  string `json:"net"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// RouteStats summarizes one routing run.
type RouteStats struct {
	Nets       int            `json:"nets"`
	Pairs      int            `json:"pairs"`
	ByPass     map[string]int `json:"by_pass"`
	Expansions int            `json:"expansions"` // A* expansions across all searches
}

// RouteResult holds the wires produced by one routing run.
type RouteResult struct {
	Paths    []WirePath     `json:"paths"`
	Unrouted []UnroutedPair `json:"unrouted"`
	Skipped  []string       `json:"skipped"` // nets with fewer than two resolvable anchors
	Stats    RouteStats     `json:"stats"`
}

// PathsForNet returns the wires of one net.
func (r RouteResult) PathsForNet(netID string) []WirePath {
	var out []WirePath
	for _, p := range r.Paths {
		if p.NetID == netID {
			out = append(out, p)
		}
	}
	return out
}

// Complete reports whether every planned pair was connected.
func (r RouteResult) Complete() bool {
	return len(r.Unrouted) == 0
}
