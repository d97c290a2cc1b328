package model

import (
	"strings"

	"github.com/google/uuid"
)

// Node references a single pin of a placed component.
type Node struct {
	ComponentID string `json:"component"`
	Pin         string `json:"pin"`
}

// String returns the canonical "componentId.pinName" form.
func (n Node) String() string {
	return n.ComponentID + "." + n.Pin
}

// Valid reports whether both parts of the node are non-empty.
func (n Node) Valid() bool {
	return n.ComponentID != "" && n.Pin != ""
}

// ParseNode splits a "componentId.pinName" string on its first dot.
// Pin names may themselves contain dots (e.g. "3.3V").
func ParseNode(s string) (Node, bool) {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return Node{}, false
	}
	return Node{ComponentID: s[:dot], Pin: s[dot+1:]}, true
}

// Net is an ordered set of nodes that must be electrically common.
type Net struct {
	ID    string   `json:"id"`
	Nodes []string `json:"nodes"`
}

// Clone returns a copy of the net that shares no memory with n.
func (n Net) Clone() Net {
	nodes := make([]string, len(n.Nodes))
	copy(nodes, n.Nodes)
	return Net{ID: n.ID, Nodes: nodes}
}

// CloneNets deep-copies a slice of nets.
func CloneNets(nets []Net) []Net {
	if nets == nil {
		return nil
	}
	cp := make([]Net, len(nets))
	for i, n := range nets {
		cp[i] = n.Clone()
	}
	return cp
}

// Pin is a named connection point on a component.
type Pin struct {
	Name   string    `json:"name"`
	Anchor Point     `json:"anchor"` // board-space point just outside the body
	Side   BoardSide `json:"side"`
}

// Component is a placed part. The engine only reads its geometry.
type Component struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Bounds     Rect              `json:"bounds"`
	Pins       []Pin             `json:"pins"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NewComponent creates a component with a generated ID.
func NewComponent(componentType string, bounds Rect, pins ...Pin) Component {
	return Component{
		ID:     strings.ToUpper(uuid.New().String()[:8]),
		Type:   componentType,
		Bounds: bounds,
		Pins:   pins,
	}
}

// Pin returns the named pin. Lookup is case-insensitive.
func (c Component) Pin(name string) (Pin, bool) {
	for _, p := range c.Pins {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Pin{}, false
}

// PinNames returns the names of all pins in declaration order.
func (c Component) PinNames() []string {
	names := make([]string, len(c.Pins))
	for i, p := range c.Pins {
		names[i] = p.Name
	}
	return names
}

// Circuit is the full component and net model for one board.
type Circuit struct {
	Name       string      `json:"name"`
	Board      Rect        `json:"board"`
	Components []Component `json:"components"`
	Nets       []Net       `json:"nets"`
	Keepouts   []Rect      `json:"keepouts,omitempty"` // extra static obstacles
}

// Component looks up a component by ID.
func (c *Circuit) Component(id string) (Component, bool) {
	for _, comp := range c.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// BoundingRect returns the body rectangle of a component.
func (c *Circuit) BoundingRect(componentID string) (Rect, bool) {
	comp, ok := c.Component(componentID)
	if !ok {
		return Rect{}, false
	}
	return comp.Bounds, true
}

// PinAnchor returns the anchor point and side of a component pin.
func (c *Circuit) PinAnchor(componentID, pin string) (Point, BoardSide, bool) {
	comp, ok := c.Component(componentID)
	if !ok {
		return Point{}, SideLeft, false
	}
	p, ok := comp.Pin(pin)
	if !ok {
		return Point{}, SideLeft, false
	}
	return p.Anchor, p.Side, true
}

// ObstacleRects returns every component body plus the keepout zones.
func (c *Circuit) ObstacleRects() []Rect {
	rects := make([]Rect, 0, len(c.Components)+len(c.Keepouts))
	for _, comp := range c.Components {
		rects = append(rects, comp.Bounds)
	}
	return append(rects, c.Keepouts...)
}

// EffectiveBoard returns the board rectangle, or when none is set the
// bounds of all components and pin anchors grown by margin.
func (c *Circuit) EffectiveBoard(margin float64) Rect {
	if !c.Board.Empty() {
		return c.Board
	}
	var pts []Point
	for _, comp := range c.Components {
		pts = append(pts,
			Point{X: comp.Bounds.Left(), Y: comp.Bounds.Top()},
			Point{X: comp.Bounds.Right(), Y: comp.Bounds.Bottom()})
		for _, p := range comp.Pins {
			pts = append(pts, p.Anchor)
		}
	}
	for _, k := range c.Keepouts {
		pts = append(pts, Point{X: k.Left(), Y: k.Top()}, Point{X: k.Right(), Y: k.Bottom()})
	}
	return BoundsOf(pts).Inset(-margin)
}
