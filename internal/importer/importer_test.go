package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/netlist"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "From,From Pin,To,To Pin\nU1,5V,R1,A\nR1,B,L1,Anode\n", ','},
		{"semicolon", "From;From Pin;To;To Pin\nU1;5V;R1;A\nR1;B;L1;Anode\n", ';'},
		{"tab", "From\tFrom Pin\tTo\tTo Pin\nU1\t5V\tR1\tA\n", '\t'},
		{"pipe", "From|From Pin|To|To Pin\nU1|5V|R1|A\n", '|'},
	}
	for _, tt := range tests {
		if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"From Component", "From Pin", "To Component", "To Pin", "Net"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{FromComponent: 0, FromPin: 1, ToComponent: 2, ToPin: 3, Net: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"SIGNAL", "target", "Target_Pin", "source", "source-pin"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{FromComponent: 3, FromPin: 4, ToComponent: 1, ToPin: 2, Net: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"U1", "5V", "R1", "A"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.FromComponent != 0 || mapping.ToPin != 3 || mapping.Net != 4 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "From,From Pin,To,To Pin,Net\nU1,5V,R1,A,VCC\nR1,B,L1,Anode,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(result.Connections))
	}
	first := result.Connections[0]
	if first.Net != "VCC" || first.From.String() != "U1.5V" || first.To.String() != "R1.A" {
		t.Errorf("unexpected first connection %+v", first)
	}
	if result.Connections[1].Net != "" {
		t.Errorf("expected unnamed second connection, got %q", result.Connections[1].Net)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("U1,GND1,B1,-,GND\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Connections) != 1 || result.Connections[0].To.Pin != "-" {
		t.Fatalf("unexpected connections %+v", result.Connections)
	}
}

func TestImportCSVFromReader_NodeColumns(t *testing.T) {
	data := "From,To,Net\nU1.3.3V,R1.A,3V3\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	c := result.Connections[0]
	if c.From.ComponentID != "U1" || c.From.Pin != "3.3V" {
		t.Errorf("expected U1 / 3.3V, got %+v", c.From)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := "From,From Pin,To,To Pin\nU1,5V,R1,A\nU1,,R2,\nR1,B,R1,B\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Connections) != 1 {
		t.Errorf("expected 1 valid connection, got %d", len(result.Connections))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3:") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "connected to itself") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected self-connection warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Net,From Pin\nVCC,5V\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "From Component, To Component") {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_CommentsAndEmptyRows(t *testing.T) {
	data := "# wiring\nU1,5V,R1,A\n,,,\nR1,B,L1,Anode\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Connections) != 2 {
		t.Errorf("expected 2 connections, got %d", len(result.Connections))
	}
}

func TestImportCSVFromReader_EmptyInput(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) != 1 {
		t.Errorf("expected one error, got %v", result.Errors)
	}
}

// ─── File Import Tests ─────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wires.csv")
	data := "From;From Pin;To;To Pin\nU1;5V;R1;A\nR1;B;L1;Anode\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Connections) != 2 {
		t.Errorf("expected 2 connections, got %d", len(result.Connections))
	}
	if len(result.Warnings) == 0 || result.Warnings[0] != "Detected semicolon delimiter" {
		t.Errorf("expected delimiter warning first, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Cannot open file") {
		t.Errorf("expected open error, got %v", result.Errors)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wires.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Net", "From Component", "From Pin", "To Component", "To Pin"},
		{"GND", "U1", "GND1", "L1", "Cathode"},
		{"", "U1", "D13", "R1", "A"},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(result.Connections))
	}
	if result.Connections[0].Net != "GND" || result.Connections[0].To.String() != "L1.Cathode" {
		t.Errorf("unexpected connection %+v", result.Connections[0])
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) != 1 {
		t.Errorf("expected one error, got %v", result.Errors)
	}
}

// ─── Apply Tests ───────────────────────────────────────────

func TestImportResult_Apply(t *testing.T) {
	result := ImportResult{Connections: []Connection{
		{Net: "VCC", From: model.Node{ComponentID: "U1", Pin: "5V"}, To: model.Node{ComponentID: "R1", Pin: "A"}},
		{From: model.Node{ComponentID: "R1", Pin: "B"}, To: model.Node{ComponentID: "L1", Pin: "Anode"}},
		{Net: "VCC", From: model.Node{ComponentID: "C1", Pin: "A"}, To: model.Node{ComponentID: "U1", Pin: "5V"}},
		{Net: "BAD", From: model.Node{ComponentID: "", Pin: "A"}, To: model.Node{ComponentID: "U1", Pin: "5V"}},
	}}

	nl := netlist.New()
	errs := result.Apply(nl)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}

	vcc, ok := nl.Net("VCC")
	if !ok {
		t.Fatal("expected VCC net")
	}
	if len(vcc.Nodes) != 3 {
		t.Errorf("expected 3 VCC nodes, got %v", vcc.Nodes)
	}
	if id, _ := nl.NetOf(model.Node{ComponentID: "L1", Pin: "Anode"}); id != "NET_1" {
		t.Errorf("expected generated net NET_1, got %q", id)
	}
}

func TestImportResult_ApplyRollsBackHalfConnection(t *testing.T) {
	result := ImportResult{Connections: []Connection{
		{Net: "SIG", From: model.Node{ComponentID: "U1", Pin: "D2"}, To: model.Node{ComponentID: "", Pin: "A"}},
	}}

	nl := netlist.New()
	errs := result.Apply(nl)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if _, ok := nl.Net("SIG"); ok {
		t.Error("expected SIG to be rolled back")
	}
	if _, ok := nl.NetOf(model.Node{ComponentID: "U1", Pin: "D2"}); ok {
		t.Error("expected U1.D2 to stay unconnected")
	}
}
