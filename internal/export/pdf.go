// Package export writes circuits and their routing results to PDF reports,
// QR-coded net labels, DXF drawings and Excel workbooks.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/CircuitStudio/internal/drc"
	"github.com/piwi3910/CircuitStudio/internal/model"
)

// rgb is a fill or stroke color.
type rgb struct {
	R, G, B int
}

// componentColors cycles over component bodies on the board drawing.
var componentColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// Report bundles everything the PDF report shows.
type Report struct {
	Circuit  model.Circuit
	Result   model.RouteResult
	DRC      drc.Report
	Settings model.RouteSettings
}

// ExportPDF writes a report with the routed board drawing on the first page
// and routing statistics, unrouted pairs and design rule findings after it.
func ExportPDF(path string, r Report) error {
	if len(r.Circuit.Components) == 0 {
		return fmt.Errorf("no components to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderBoardPage(pdf, r)

	pdf.AddPage()
	renderSummaryPage(pdf, r)

	return pdf.OutputFileAndClose(path)
}

// boardView maps board coordinates onto the page.
type boardView struct {
	board            model.Rect
	scale            float64
	offsetX, offsetY float64
}

func newBoardView(board model.Rect) boardView {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/board.Width, drawHeight/board.Height)
	canvasW := board.Width * scale
	return boardView{
		board:   board,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
	}
}

func (v boardView) point(p model.Point) (float64, float64) {
	return v.offsetX + (p.X-v.board.X)*v.scale, v.offsetY + (p.Y-v.board.Y)*v.scale
}

func (v boardView) rect(r model.Rect) (x, y, w, h float64) {
	x, y = v.point(model.Point{X: r.X, Y: r.Y})
	return x, y, r.Width * v.scale, r.Height * v.scale
}

// renderBoardPage draws the board, keep-outs, component bodies and wires.
func renderBoardPage(pdf *fpdf.Fpdf, r Report) {
	c := r.Circuit
	name := c.Name
	if name == "" {
		name = "Circuit"
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, name, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Components: %d | Nets: %d | Wires: %d | Unrouted: %d | Wire length: %.0f",
		len(c.Components), len(c.Nets), len(r.Result.Paths), len(r.Result.Unrouted), totalLength(r.Result))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	board := c.EffectiveBoard(r.Settings.Normalize().BoardMargin)
	v := newBoardView(board)

	bx, by, bw, bh := v.rect(board)
	pdf.SetFillColor(235, 245, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(bx, by, bw, bh, "FD")

	for _, k := range c.Keepouts {
		x, y, w, h := v.rect(k)
		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, w, h, "FD")
		drawHatchPattern(pdf, x, y, w, h)
	}

	for i, comp := range c.Components {
		col := componentColors[i%len(componentColors)]
		x, y, w, h := v.rect(comp.Bounds)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, w, h, "FD")

		if w > 8 && h > 4 {
			pdf.SetFont("Helvetica", "", labelFontSize(w, h))
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(comp.ID)
			if labelW < w-1 {
				pdf.SetXY(x+(w-labelW)/2, y+h/2-2)
				pdf.CellFormat(labelW, 4, comp.ID, "", 0, "C", false, 0, "")
			}
		}

		pdf.SetFillColor(0, 0, 0)
		for _, p := range comp.Pins {
			px, py := v.point(p.Anchor)
			pdf.Circle(px, py, 0.6, "F")
		}
	}

	drawWires(pdf, v, r.Result.Paths)
	drawDimensionAnnotations(pdf, board, v)
	drawPassLegend(pdf, v.offsetY+bh+6)
}

// drawWires strokes every wire. Wires from the crossing pass are dashed and
// forced or fallback wires are drawn red so they stand out for review.
func drawWires(pdf *fpdf.Fpdf, v boardView, paths []model.WirePath) {
	pdf.SetLineWidth(0.4)
	for _, w := range paths {
		switch w.Pass {
		case model.PassStandard:
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetDashPattern([]float64{}, 0)
		case model.PassAllowCrossing:
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetDashPattern([]float64{1.5, 1}, 0)
		default:
			pdf.SetDrawColor(200, 0, 0)
			pdf.SetDashPattern([]float64{1.5, 1}, 0)
		}
		for _, s := range w.Segments() {
			x1, y1 := v.point(s[0])
			x2, y2 := v.point(s[1])
			pdf.Line(x1, y1, x2, y2)
		}
	}
	pdf.SetDashPattern([]float64{}, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark keep-outs.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 2.5
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations labels the board width below and height to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, board model.Rect, v boardView) {
	canvasW, canvasH := board.Width*v.scale, board.Height*v.scale
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f", board.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(v.offsetX+(canvasW-wLabelW)/2, v.offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f", board.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, v.offsetX-3, v.offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(v.offsetX-3-hLabelW/2, v.offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPassLegend explains the wire styles.
func drawPassLegend(pdf *fpdf.Fpdf, y float64) {
	entries := []struct {
		label string
		color rgb
		dash  []float64
	}{
		{"standard", rgb{}, []float64{}},
		{"crossing allowed", rgb{}, []float64{1.5, 1}},
		{"forced / fallback", rgb{R: 200}, []float64{1.5, 1}},
	}

	pdf.SetFont("Helvetica", "", 7)
	x := marginLeft
	for _, e := range entries {
		pdf.SetDrawColor(e.color.R, e.color.G, e.color.B)
		pdf.SetDashPattern(e.dash, 0)
		pdf.SetLineWidth(0.4)
		pdf.Line(x, y+2, x+8, y+2)
		pdf.SetXY(x+9, y)
		pdf.CellFormat(35, 4, e.label, "", 0, "L", false, 0, "")
		x += 45
	}
	pdf.SetDashPattern([]float64{}, 0)
}

// renderSummaryPage lists routing statistics, unrouted pairs and DRC findings.
func renderSummaryPage(pdf *fpdf.Fpdf, r Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Routing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	stats := r.Result.Stats
	items := []struct {
		label string
		value string
	}{
		{"Nets routed", fmt.Sprintf("%d", stats.Nets)},
		{"Pin pairs", fmt.Sprintf("%d", stats.Pairs)},
		{"Wires", fmt.Sprintf("%d", len(r.Result.Paths))},
		{"Unrouted pairs", fmt.Sprintf("%d", len(r.Result.Unrouted))},
		{"Skipped nets", fmt.Sprintf("%d", len(r.Result.Skipped))},
		{"Search expansions", fmt.Sprintf("%d", stats.Expansions)},
		{"Grid step", fmt.Sprintf("%.1f", r.Settings.GridStep)},
	}
	for _, pass := range passNames(stats.ByPass) {
		items = append(items, struct {
			label string
			value string
		}{"Pass " + pass, fmt.Sprintf("%d", stats.ByPass[pass])})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 6
	}

	if len(r.Result.Unrouted) > 0 {
		y += 6
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unrouted Pairs", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, u := range r.Result.Unrouted {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, fmt.Sprintf("- %s: %s -> %s (%s)", u.NetID, u.From, u.To, u.Reason), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	renderIssueTable(pdf, r.DRC, y)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CircuitStudio", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderIssueTable draws the DRC findings as a table, continuing on new
// pages as needed.
func renderIssueTable(pdf *fpdf.Fpdf, report drc.Report, y float64) {
	status := "PASS"
	if !report.Passed() {
		status = "FAIL"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, fmt.Sprintf("Design Rule Check: %s (%d errors, %d warnings)",
		status, report.ErrorCount, report.WarningCount), "", 0, "L", false, 0, "")
	y += 9
	if len(report.Issues) == 0 {
		return
	}

	colWidths := []float64{22, 55, 30, 160}
	headers := []string{"Severity", "Code", "Ref", "Message"}
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, h := range headers {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
			x += colWidths[i]
		}
		y += 6
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	for i, issue := range report.Issues {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
			header()
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		if issue.Severity == drc.SeverityError {
			pdf.SetTextColor(200, 0, 0)
		}
		row := []string{issue.Severity.String(), issue.Code, issue.Ref, truncate(pdf, issue.Message, colWidths[3]-2)}
		x := marginLeft
		for j, cell := range row {
			align := "C"
			if j == 3 {
				align = "L"
			}
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, align, true, 0, "")
			x += colWidths[j]
		}
		pdf.SetTextColor(0, 0, 0)
		y += 5
	}
}

// truncate shortens s with an ellipsis so it fits in width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// totalLength sums the Manhattan length of every wire.
func totalLength(result model.RouteResult) float64 {
	total := 0.0
	for _, p := range result.Paths {
		total += p.Length()
	}
	return total
}

func passNames(byPass map[string]int) []string {
	names := make([]string, 0, len(byPass))
	for k := range byPass {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
