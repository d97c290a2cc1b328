package importer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/netlist"
)

// netlistLexer tokenizes the text netlist format:
//
//	board 0 0 400 300;
//	component R1 resistor at 10 20 size 40 20 { A left 8 30; B right 52 30 }
//	keepout 100 100 30 30;
//	net GND: U1.GND1, R1.B;
//	connect R1.A L1.Anode;
//
// A Node is "component.pin"; every other bare value, numbers included, is a Word.
var netlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Punct", Pattern: `[{};:,]`},
	{Name: "Node", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*\.[^\s,;:{}]+`},
	{Name: "Word", Pattern: `[^\s,;:{}]+`},
})

type netlistFile struct {
	Statements []*statement `@@*`
}

type statement struct {
	Board     *boardDecl     `  @@`
	Component *componentDecl `| @@`
	Keepout   *keepoutDecl   `| @@`
	Net       *netDecl       `| @@`
	Connect   *connectDecl   `| @@`
}

type boardDecl struct {
	X float64 `"board" @Word`
	Y float64 `@Word`
	W float64 `@Word`
	H float64 `@Word ";"?`
}

type componentDecl struct {
	Pos  lexer.Position
	ID   string     `"component" @Word`
	Type string     `@Word`
	X    float64    `"at" @Word`
	Y    float64    `@Word`
	W    float64    `"size" @Word`
	H    float64    `@Word`
	Pins []*pinDecl `( "{" @@* "}" )? ";"?`
}

type pinDecl struct {
	Pos  lexer.Position
	Name string  `@Word`
	Side string  `@Word`
	X    float64 `@Word`
	Y    float64 `@Word ";"?`
}

type keepoutDecl struct {
	X float64 `"keepout" @Word`
	Y float64 `@Word`
	W float64 `@Word`
	H float64 `@Word ";"?`
}

type netDecl struct {
	Pos   lexer.Position
	ID    string   `"net" @Word ":"`
	Nodes []string `@Node ( ","? @Node )* ";"?`
}

type connectDecl struct {
	Pos  lexer.Position
	From string `"connect" @Node`
	To   string `@Node ";"?`
}

// ErrNetlistSyntax wraps every parse failure of the text netlist format.
var ErrNetlistSyntax = errors.New("netlist syntax error")

var netlistParser = participle.MustBuild[netlistFile](
	participle.Lexer(netlistLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// ParseNetlist reads the text netlist format into a circuit. Nets are built
// through the connectivity model, so overlapping declarations merge.
func ParseNetlist(name string, r io.Reader) (model.Circuit, error) {
	file, err := netlistParser.Parse(name, r)
	if err != nil {
		return model.Circuit{}, fmt.Errorf("%w: %v", ErrNetlistSyntax, err)
	}
	return buildCircuit(file)
}

// ParseNetlistString parses netlist source held in memory.
func ParseNetlistString(src string) (model.Circuit, error) {
	file, err := netlistParser.ParseString("", src)
	if err != nil {
		return model.Circuit{}, fmt.Errorf("%w: %v", ErrNetlistSyntax, err)
	}
	return buildCircuit(file)
}

// ImportNetlist parses a netlist file from disk.
func ImportNetlist(path string) (model.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Circuit{}, fmt.Errorf("failed to open netlist: %w", err)
	}
	defer f.Close()
	return ParseNetlist(path, f)
}

func buildCircuit(file *netlistFile) (model.Circuit, error) {
	c := model.Circuit{Components: []model.Component{}, Nets: []model.Net{}}
	nl := netlist.New()
	seen := make(map[string]bool)

	for _, st := range file.Statements {
		switch {
		case st.Board != nil:
			b := st.Board
			c.Board = model.Rect{X: b.X, Y: b.Y, Width: b.W, Height: b.H}

		case st.Keepout != nil:
			k := st.Keepout
			c.Keepouts = append(c.Keepouts, model.Rect{X: k.X, Y: k.Y, Width: k.W, Height: k.H})

		case st.Component != nil:
			comp, err := st.Component.build()
			if err != nil {
				return model.Circuit{}, err
			}
			if seen[comp.ID] {
				return model.Circuit{}, fmt.Errorf("%s: duplicate component %q", st.Component.Pos, comp.ID)
			}
			seen[comp.ID] = true
			c.Components = append(c.Components, comp)

		case st.Net != nil:
			if err := st.Net.apply(nl); err != nil {
				return model.Circuit{}, err
			}

		case st.Connect != nil:
			d := st.Connect
			a, _ := model.ParseNode(d.From)
			b, _ := model.ParseNode(d.To)
			if _, err := nl.Connect(a, b); err != nil {
				return model.Circuit{}, fmt.Errorf("%s: %w", d.Pos, err)
			}
		}
	}

	c.Nets = nl.Nets()
	return c, nil
}

func (d *componentDecl) build() (model.Component, error) {
	comp := model.Component{
		ID:     d.ID,
		Type:   d.Type,
		Bounds: model.Rect{X: d.X, Y: d.Y, Width: d.W, Height: d.H},
		Pins:   []model.Pin{},
	}
	if d.W <= 0 || d.H <= 0 {
		return model.Component{}, fmt.Errorf("%s: component %q must have a positive size", d.Pos, d.ID)
	}
	for _, p := range d.Pins {
		side, ok := model.ParseBoardSide(p.Side)
		if !ok {
			return model.Component{}, fmt.Errorf("%s: pin %s.%s has unknown side %q", p.Pos, d.ID, p.Name, p.Side)
		}
		if _, dup := comp.Pin(p.Name); dup {
			return model.Component{}, fmt.Errorf("%s: pin %s.%s declared twice", p.Pos, d.ID, p.Name)
		}
		comp.Pins = append(comp.Pins, model.Pin{Name: p.Name, Side: side, Anchor: model.Point{X: p.X, Y: p.Y}})
	}
	return comp, nil
}

// apply attaches every node of the declaration to the named net. When the
// first node already belongs to another net, the rest join that net.
func (d *netDecl) apply(nl *netlist.Netlist) error {
	id := d.ID
	for _, s := range d.Nodes {
		n, _ := model.ParseNode(s)
		got, err := nl.Attach(id, n)
		if err != nil {
			return fmt.Errorf("%s: net %s: %w", d.Pos, d.ID, err)
		}
		id = got
	}
	return nil
}
