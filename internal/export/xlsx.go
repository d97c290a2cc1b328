package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CircuitStudio/internal/drc"
	"github.com/piwi3910/CircuitStudio/internal/model"
)

// Sheet names written by ExportXLSX.
const (
	SheetNets  = "Nets"
	SheetWires = "Wires"
	SheetDRC   = "DRC"
)

// ExportXLSX writes a workbook with one row per net, one row per routed or
// unrouted pin pair, and one row per design rule finding.
func ExportXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the first one we write.
	if err := f.SetSheetName("Sheet1", SheetNets); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetWires, SheetDRC} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, SheetNets, netRows(r)); err != nil {
		return err
	}
	if err := writeRows(f, SheetWires, wireRows(r.Result)); err != nil {
		return err
	}
	if err := writeRows(f, SheetDRC, issueRows(r.DRC)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func netRows(r Report) [][]interface{} {
	rows := [][]interface{}{{"Net", "Nodes", "Wires", "Wire Length", "Unrouted", "Pins"}}
	for _, label := range CollectNetLabels(r.Circuit, r.Result) {
		rows = append(rows, []interface{}{
			label.Net, len(label.Nodes), label.Wires, label.WireLength, label.Unrouted, joinNodes(label.Nodes),
		})
	}
	return rows
}

func wireRows(result model.RouteResult) [][]interface{} {
	rows := [][]interface{}{{"Net", "From", "To", "Pass", "Length", "Bends", "Note"}}
	for _, w := range result.Paths {
		rows = append(rows, []interface{}{w.NetID, w.From, w.To, w.Pass.String(), w.Length(), w.Bends(), ""})
	}
	for _, u := range result.Unrouted {
		rows = append(rows, []interface{}{u.NetID, u.From, u.To, "unrouted", 0, 0, u.Reason})
	}
	return rows
}

func issueRows(report drc.Report) [][]interface{} {
	rows := [][]interface{}{{"Severity", "Code", "Ref", "Message"}}
	for _, issue := range report.Issues {
		rows = append(rows, []interface{}{issue.Severity.String(), issue.Code, issue.Ref, issue.Message})
	}
	return rows
}
