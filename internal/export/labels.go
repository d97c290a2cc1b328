package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/CircuitStudio/internal/model"
)

// NetLabel holds the data encoded into each net label's QR code.
type NetLabel struct {
	Net        string   `json:"net"`
	Nodes      []string `json:"nodes"`
	Wires      int      `json:"wires"`
	WireLength float64  `json:"wire_length"`
	Unrouted   int      `json:"unrouted"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportNetLabels generates a PDF of QR-coded labels, one per net, for
// tagging harness wires. Each QR code encodes the NetLabel as JSON.
func ExportNetLabels(path string, c model.Circuit, result model.RouteResult) error {
	labels := CollectNetLabels(c, result)
	if len(labels) == 0 {
		return fmt.Errorf("no nets to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Net, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info NetLabel) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Net, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	summary := fmt.Sprintf("%d pins, %d wires, %.0f long", len(info.Nodes), info.Wires, info.WireLength)
	pdf.CellFormat(textW, 3.5, summary, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.MultiCell(textW, 2.6, truncate(pdf, joinNodes(info.Nodes), textW*3-2), "", "L", false)

	if info.Unrouted > 0 {
		pdf.SetXY(textX, y+labelHeight-labelPadding-3)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("%d unrouted", info.Unrouted), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectNetLabels builds one label per net, in net order.
func CollectNetLabels(c model.Circuit, result model.RouteResult) []NetLabel {
	labels := make([]NetLabel, 0, len(c.Nets))
	for _, n := range c.Nets {
		label := NetLabel{Net: n.ID, Nodes: append([]string{}, n.Nodes...)}
		for _, w := range result.PathsForNet(n.ID) {
			label.Wires++
			label.WireLength += w.Length()
		}
		for _, u := range result.Unrouted {
			if u.NetID == n.ID {
				label.Unrouted++
			}
		}
		labels = append(labels, label)
	}
	return labels
}

func joinNodes(nodes []string) string {
	var b bytes.Buffer
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
	}
	return b.String()
}
