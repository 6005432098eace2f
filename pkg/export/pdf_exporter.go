package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pdfTableWidth = 190.0

// PDFExporter lays a Dataset out as a single table on A4 pages.
type PDFExporter struct{}

// NewPDFExporter returns a ready-to-use PDF renderer.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the title, a header row and one bordered row per
// dataset entry. Columns share the page width evenly.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := pdfTableWidth / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, fitCell(row[header], colWidth), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fitCell trims long values, typically course titles, so they stay
// inside their fixed-width cell instead of bleeding into the next.
func fitCell(value string, colWidth float64) string {
	max := int(colWidth / 1.8)
	if max < 8 {
		max = 8
	}
	if len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
