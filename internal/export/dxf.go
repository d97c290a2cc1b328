package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// DXF layer names written by ExportDXF.
const (
	LayerBoard      = "BOARD"
	LayerComponents = "COMPONENTS"
	LayerKeepouts   = "KEEPOUTS"
	LayerWires      = "WIRES"
)

// dxfLayers lists the drawing layers in creation order.
var dxfLayers = []struct {
	name  string
	color color.ColorNumber
}{
	{LayerBoard, color.White},
	{LayerComponents, color.Green},
	{LayerKeepouts, color.Red},
	{LayerWires, color.Blue},
}

// ExportDXF writes the board outline, component bodies, keep-outs and wires
// as a DXF drawing. Coordinates are written unchanged so the KEEPOUTS layer
// can be read back with the keep-out importer. Each wire segment is one LINE.
func ExportDXF(path string, c model.Circuit, result model.RouteResult, settings model.RouteSettings) error {
	if len(c.Components) == 0 {
		return fmt.Errorf("no components to export")
	}

	d := dxf.NewDrawing()
	for _, l := range dxfLayers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	if err := d.ChangeLayer(LayerBoard); err != nil {
		return err
	}
	if err := drawRect(d, c.EffectiveBoard(settings.Normalize().BoardMargin)); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerComponents); err != nil {
		return err
	}
	for _, comp := range c.Components {
		if err := drawRect(d, comp.Bounds); err != nil {
			return err
		}
		height := labelHeightFor(comp.Bounds)
		if _, err := d.Text(comp.ID, comp.Bounds.X+1, comp.Bounds.Y+1, 0, height); err != nil {
			return fmt.Errorf("label %s: %w", comp.ID, err)
		}
	}

	if err := d.ChangeLayer(LayerKeepouts); err != nil {
		return err
	}
	for _, k := range c.Keepouts {
		if err := drawRect(d, k); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerWires); err != nil {
		return err
	}
	for _, w := range result.Paths {
		for _, s := range w.Segments() {
			if _, err := d.Line(s[0].X, s[0].Y, 0, s[1].X, s[1].Y, 0); err != nil {
				return fmt.Errorf("wire %s %s-%s: %w", w.NetID, w.From, w.To, err)
			}
		}
	}

	return d.SaveAs(path)
}

// drawRect writes a rectangle as four closed LINEs.
func drawRect(d *drawing.Drawing, r model.Rect) error {
	corners := []model.Point{
		{X: r.Left(), Y: r.Top()},
		{X: r.Right(), Y: r.Top()},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.Left(), Y: r.Bottom()},
	}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return fmt.Errorf("draw rect: %w", err)
		}
	}
	return nil
}

func labelHeightFor(r model.Rect) float64 {
	h := r.Height / 4
	if h > 5 {
		return 5
	}
	if h < 1 {
		return 1
	}
	return h
}
