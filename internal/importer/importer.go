// Package importer reads circuits from outside sources: CSV and Excel
// connection lists, the text netlist format, and DXF keep-out drawings.
// Tabular imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CircuitStudio/internal/model"
	"github.com/piwi3910/CircuitStudio/internal/netlist"
)

// Connection is one imported pin-to-pin link, optionally naming its net.
type Connection struct {
	Net  string
	From model.Node
	To   model.Node
}

// ImportResult holds the results of an import operation. Row problems are
// collected rather than aborting the import.
type ImportResult struct {
	Connections []Connection
	Errors      []string
	Warnings    []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	FromComponent int
	FromPin       int
	ToComponent   int
	ToPin         int
	Net           int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"from_component": {"from component", "from comp", "from", "source", "source component", "component a", "comp a"},
	"from_pin":       {"from pin", "source pin", "pin a"},
	"to_component":   {"to component", "to comp", "to", "target", "target component", "component b", "comp b"},
	"to_pin":         {"to pin", "target pin", "pin b"},
	"net":            {"net", "net name", "net id", "signal"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (from component, from pin, to component, to pin, net) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{FromComponent: -1, FromPin: -1, ToComponent: -1, ToPin: -1, Net: -1}
	slots := map[string]*int{
		"from_component": &mapping.FromComponent,
		"from_pin":       &mapping.FromPin,
		"to_component":   &mapping.ToComponent,
		"to_pin":         &mapping.ToPin,
		"net":            &mapping.Net,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if *slots[role] == -1 {
						*slots[role] = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{FromComponent: 0, FromPin: 1, ToComponent: 2, ToPin: 3, Net: 4}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// endpoint reads one side of a connection. A component cell holding a full
// "component.pin" node is accepted when the pin cell is empty.
func endpoint(row []string, compIdx, pinIdx int) (model.Node, bool) {
	comp, pin := getCell(row, compIdx), getCell(row, pinIdx)
	if pin == "" {
		return model.ParseNode(comp)
	}
	n := model.Node{ComponentID: comp, Pin: pin}
	return n, n.Valid()
}

// parseRow extracts a Connection from a row using the given column mapping.
// Returns the connection, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (Connection, string, string) {
	from, ok := endpoint(row, mapping.FromComponent, mapping.FromPin)
	if !ok {
		return Connection{}, fmt.Sprintf("%s: Missing or invalid source pin", rowLabel), ""
	}
	to, ok := endpoint(row, mapping.ToComponent, mapping.ToPin)
	if !ok {
		return Connection{}, fmt.Sprintf("%s: Missing or invalid target pin", rowLabel), ""
	}

	conn := Connection{Net: getCell(row, mapping.Net), From: from, To: to}
	var warning string
	if from == to {
		warning = fmt.Sprintf("%s: Pin %s is connected to itself", rowLabel, from)
	}
	return conn, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports connections from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports connections from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	return reader.ReadAll()
}

// ImportExcel imports connections from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.FromComponent == -1 {
			missing = append(missing, "From Component")
		}
		if mapping.ToComponent == -1 {
			missing = append(missing, "To Component")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		conn, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		result.Connections = append(result.Connections, conn)
	}

	return result
}

// Apply joins every imported connection into nl. Named connections are
// attached to their net; unnamed ones get a generated id unless one of the
// pins is already connected. Failures are returned as messages.
func (r ImportResult) Apply(nl *netlist.Netlist) []string {
	var errs []string
	h := netlist.NewHistory()
	for _, c := range r.Connections {
		h.Record(nl, c.From.String()+"-"+c.To.String())
		if err := applyConnection(nl, c); err != nil {
			// Roll back a half-applied named connection.
			if _, _, undoErr := h.Undo(nl); undoErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, undoErr)
			}
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func applyConnection(nl *netlist.Netlist, c Connection) error {
	if c.Net == "" {
		_, err := nl.Connect(c.From, c.To)
		return err
	}
	id, err := nl.Attach(c.Net, c.From)
	if err != nil {
		return err
	}
	_, err = nl.Attach(id, c.To)
	return err
}
