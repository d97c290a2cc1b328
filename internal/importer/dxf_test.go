package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

func writeDrawing(t *testing.T, draw func(d *drawing.Drawing)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keepouts.dxf")
	d := dxf.NewDrawing()
	draw(d)
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportKeepoutsDXF(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		// A square drawn as loose lines, one segment reversed.
		d.Line(0, 0, 0, 20, 0, 0)
		d.Line(20, 0, 0, 20, 20, 0)
		d.Line(0, 20, 0, 20, 20, 0)
		d.Line(0, 20, 0, 0, 0, 0)
		d.Circle(50, 50, 0, 5)
	})

	result := ImportKeepoutsDXF(path, "")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := []model.Rect{
		{X: 0, Y: 0, Width: 20, Height: 20},
		{X: 45, Y: 45, Width: 10, Height: 10},
	}
	if len(result.Keepouts) != len(want) {
		t.Fatalf("expected %d keepouts, got %+v", len(want), result.Keepouts)
	}
	for i := range want {
		if result.Keepouts[i] != want[i] {
			t.Errorf("keepout %d: expected %+v, got %+v", i, want[i], result.Keepouts[i])
		}
	}
}

func TestImportKeepoutsDXF_OpenOutline(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		d.Line(0, 0, 0, 20, 0, 0)
		d.Line(20, 0, 0, 20, 20, 0)
	})

	result := ImportKeepoutsDXF(path, "")
	if len(result.Keepouts) != 0 {
		t.Errorf("expected no keepouts, got %+v", result.Keepouts)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "No closed shapes") {
		t.Errorf("expected no-shapes error, got %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "1 open outline") {
		t.Errorf("expected open outline warning, got %v", result.Warnings)
	}
}

func TestImportKeepoutsDXF_FileNotFound(t *testing.T) {
	result := ImportKeepoutsDXF(filepath.Join(t.TempDir(), "missing.dxf"), "")
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Cannot open DXF file") {
		t.Errorf("expected open error, got %v", result.Errors)
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	pts := bulgeArcPoints(model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0}, 1, 8)
	if len(pts) != 9 {
		t.Fatalf("expected 9 points, got %d", len(pts))
	}
	b := model.BoundsOf(pts)
	if b.Height < 4.99 || b.Height > 5.01 {
		t.Errorf("expected a radius-5 semicircle, got bounds %+v", b)
	}
}

func TestChainSegments(t *testing.T) {
	segs := []segment{
		{start: model.Point{X: 0, Y: 0}, end: model.Point{X: 10, Y: 0}},
		{start: model.Point{X: 10, Y: 10}, end: model.Point{X: 10, Y: 0}},
		{start: model.Point{X: 10, Y: 10}, end: model.Point{X: 0, Y: 0.005}},
		{start: model.Point{X: 50, Y: 50}, end: model.Point{X: 60, Y: 50}},
	}
	loops, open := chainSegments(segs, chainTolerance)
	if len(loops) != 1 || len(loops[0]) != 3 {
		t.Errorf("expected one triangle, got %+v", loops)
	}
	if open != 1 {
		t.Errorf("expected 1 open chain, got %d", open)
	}
}
