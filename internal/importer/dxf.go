package importer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// KeepoutResult holds the keep-out zones read from a drawing.
type KeepoutResult struct {
	Keepouts []model.Rect
	Errors   []string
	Warnings []string
}

// chainTolerance is the largest endpoint gap treated as connected.
const chainTolerance = 0.01

// segment is a straight piece of a loose outline, chained into closed
// shapes before conversion.
type segment struct {
	start model.Point
	end   model.Point
}

// ImportKeepoutsDXF reads closed shapes from a DXF file and returns the
// bounding rectangle of each as a keep-out zone. LWPOLYLINEs and CIRCLEs
// are used directly; loose LINEs and ARCs are chained into closed loops.
// When layer is non-empty only entities on that layer (case-insensitive)
// are read.
func ImportKeepoutsDXF(path, layer string) KeepoutResult {
	result := KeepoutResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes [][]model.Point
	var segments []segment
	for _, ent := range entities {
		if !onLayer(ent, layer) {
			continue
		}
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := polylinePoints(e)
			if len(pts) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, pts)

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			shapes = append(shapes, []model.Point{{X: cx - r, Y: cy - r}, {X: cx + r, Y: cy + r}})

		case *entity.Arc:
			pts := arcPoints(e, 32)
			for i := 1; i < len(pts); i++ {
				segments = append(segments, segment{start: pts[i-1], end: pts[i]})
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	loops, open := chainSegments(segments, chainTolerance)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d open outline(s)", open))
	}
	shapes = append(shapes, loops...)

	for _, s := range shapes {
		r := model.BoundsOf(s)
		if r.Width < chainTolerance || r.Height < chainTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", r.Width, r.Height))
			continue
		}
		result.Keepouts = append(result.Keepouts, r)
	}

	if len(result.Keepouts) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	// Largest first for a stable order independent of entity order.
	sort.SliceStable(result.Keepouts, func(i, j int) bool {
		a, b := result.Keepouts[i], result.Keepouts[j]
		return a.Width*a.Height > b.Width*b.Height
	})
	return result
}

// polylinePoints returns the vertices of an LWPOLYLINE, expanding bulged
// segments into arc points so the bounds include the arc.
func polylinePoints(lw *entity.LwPolyline) []model.Point {
	var pts []model.Point
	for i, v := range lw.Vertices {
		current := model.Point{X: v[0], Y: v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			pts = append(pts, current)
			continue
		}
		nv := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgeArcPoints(current, model.Point{X: nv[0], Y: nv[1]}, bulge, 16)
		pts = append(pts, arc[:len(arc)-1]...)
	}
	return pts
}

// bulgeArcPoints samples the arc between two vertices. The bulge is the
// tangent of a quarter of the included angle; positive sweeps counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point, bulge float64, n int) []model.Point {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []model.Point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	px, py := -dy/chord, dx/chord
	if bulge > 0 {
		px, py = -px, -py
	}
	dist := radius - sagitta
	cx := (p1.X+p2.X)/2 + px*dist
	cy := (p1.Y+p2.Y)/2 + py*dist

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	}
	if bulge > 0 && end < start {
		end += 2 * math.Pi
	}

	pts := make([]model.Point, n+1)
	for i := 0; i <= n; i++ {
		a := start + float64(i)/float64(n)*(end-start)
		pts[i] = model.Point{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)}
	}
	return pts
}

// arcPoints samples a DXF ARC counter-clockwise from its start to end angle.
func arcPoints(a *entity.Arc, n int) []model.Point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]model.Point, n+1)
	for i := 0; i <= n; i++ {
		t := start + float64(i)/float64(n)*(end-start)
		pts[i] = model.Point{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)}
	}
	return pts
}

// chainSegments joins segments end to end into closed loops. It returns the
// loops and the number of chains that did not close.
func chainSegments(segs []segment, tolerance float64) ([][]model.Point, int) {
	used := make([]bool, len(segs))
	var loops [][]model.Point
	open := 0

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := []model.Point{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.start, tolerance):
					chain = append(chain, s.end)
				case near(tail, s.end, tolerance):
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && near(chain[0], chain[len(chain)-1], tolerance) {
			loops = append(loops, chain[:len(chain)-1])
		} else {
			open++
		}
	}
	return loops, open
}

func onLayer(ent entity.Entity, layer string) bool {
	if layer == "" {
		return true
	}
	l := ent.Layer()
	return l != nil && strings.EqualFold(l.Name(), layer)
}

func near(a, b model.Point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
