package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

const blinkNetlist = `
# LED on D13
board 0 0 400 300;
component U1 arduinouno at 20 20 size 220 160 {
  D13 right 244 40;
  GND1 right 244 60
}
component R1 resistor at 280 30 size 60 20 { A left 276 40; B right 344 40 }
component L1 led at 280 100 size 40 30 { Anode top 300 96; Cathode bottom 300 134 }
keepout 260 200 40 40
net SIG: U1.D13, R1.A;
connect R1.B L1.Anode
net GND: L1.Cathode U1.GND1
`

func TestParseNetlist(t *testing.T) {
	c, err := ParseNetlistString(blinkNetlist)
	if err != nil {
		t.Fatalf("ParseNetlistString failed: %v", err)
	}

	if c.Board != (model.Rect{X: 0, Y: 0, Width: 400, Height: 300}) {
		t.Errorf("unexpected board %+v", c.Board)
	}
	if len(c.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(c.Components))
	}
	u1 := c.Components[0]
	if u1.ID != "U1" || u1.Type != "arduinouno" || u1.Bounds.Width != 220 {
		t.Errorf("unexpected U1 %+v", u1)
	}
	pin, ok := u1.Pin("GND1")
	if !ok || pin.Side != model.SideRight || pin.Anchor != (model.Point{X: 244, Y: 60}) {
		t.Errorf("unexpected GND1 pin %+v", pin)
	}
	if len(c.Keepouts) != 1 || c.Keepouts[0].Width != 40 {
		t.Errorf("unexpected keepouts %+v", c.Keepouts)
	}

	want := []model.Net{
		{ID: "GND", Nodes: []string{"L1.Cathode", "U1.GND1"}},
		{ID: "NET_1", Nodes: []string{"R1.B", "L1.Anode"}},
		{ID: "SIG", Nodes: []string{"U1.D13", "R1.A"}},
	}
	if len(c.Nets) != len(want) {
		t.Fatalf("expected %d nets, got %+v", len(want), c.Nets)
	}
	for i := range want {
		if c.Nets[i].ID != want[i].ID || strings.Join(c.Nets[i].Nodes, ",") != strings.Join(want[i].Nodes, ",") {
			t.Errorf("net %d: expected %+v, got %+v", i, want[i], c.Nets[i])
		}
	}
}

func TestParseNetlist_OverlappingNetsMerge(t *testing.T) {
	src := `
component A1 part at 0 0 size 10 10
net X: A1.P, A1.Q;
net Y: A1.Q, A1.R;
`
	c, err := ParseNetlistString(src)
	if err != nil {
		t.Fatalf("ParseNetlistString failed: %v", err)
	}
	if len(c.Nets) != 1 || c.Nets[0].ID != "X" || len(c.Nets[0].Nodes) != 3 {
		t.Errorf("expected merged net X with 3 nodes, got %+v", c.Nets)
	}
}

func TestParseNetlist_SymbolPins(t *testing.T) {
	src := `component B1 battery at 0 0 size 60 40 { + left -4 10; - left -4 30 }
component U1 arduinonano at 100 0 size 180 80 { 3.3V left 96 10 }
net VBAT: B1.+, U1.3.3V`
	c, err := ParseNetlistString(src)
	if err != nil {
		t.Fatalf("ParseNetlistString failed: %v", err)
	}
	if _, ok := c.Components[0].Pin("-"); !ok {
		t.Error("expected pin -")
	}
	if c.Components[0].Pins[0].Anchor.X != -4 {
		t.Errorf("expected negative anchor, got %+v", c.Components[0].Pins[0].Anchor)
	}
	if len(c.Nets) != 1 || c.Nets[0].Nodes[1] != "U1.3.3V" {
		t.Errorf("unexpected nets %+v", c.Nets)
	}
}

func TestParseNetlist_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		syntax bool
		msg    string
	}{
		{"bad number", "board 0 0 wide 10", true, ""},
		{"missing colon", "net GND U1.GND", true, ""},
		{"unknown side", "component R1 r at 0 0 size 10 10 { A sideways 0 0 }", false, "unknown side"},
		{"duplicate pin", "component R1 r at 0 0 size 10 10 { A left 0 0; a right 1 1 }", false, "declared twice"},
		{"zero size", "component R1 r at 0 0 size 0 10", false, "positive size"},
		{"duplicate component", "component R1 r at 0 0 size 1 1\ncomponent R1 r at 5 5 size 1 1", false, "duplicate component"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNetlistString(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrNetlistSyntax) != tt.syntax {
				t.Errorf("syntax error = %v, want %v (%v)", errors.Is(err, ErrNetlistSyntax), tt.syntax, err)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in %v", tt.msg, err)
			}
		})
	}
}

func TestImportNetlist_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blink.net")
	if err := os.WriteFile(path, []byte(blinkNetlist), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := ImportNetlist(path)
	if err != nil {
		t.Fatalf("ImportNetlist failed: %v", err)
	}
	if len(c.Components) != 3 || len(c.Nets) != 3 {
		t.Errorf("unexpected circuit %d components / %d nets", len(c.Components), len(c.Nets))
	}

	if _, err := ImportNetlist(filepath.Join(t.TempDir(), "missing.net")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
