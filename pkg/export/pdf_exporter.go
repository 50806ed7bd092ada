package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const usableWidthMM = 277.0

// PDFExporter renders tables into a landscape A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType of the produced document.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension of the produced document.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render lays the table out with a repeated header row on every page.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	colWidth := usableWidthMM / float64(len(table.Columns))
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(229, 231, 235)
		for _, column := range table.Columns {
			pdf.CellFormat(colWidth, 8, tr(column), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 9, tr(strings.ToUpper(table.Title)), "", 1, "C", false, 0, "")
			pdf.Ln(2)
		}
		header()
	})
	pdf.AddPage()

	for _, row := range table.Rows {
		for _, value := range normalise(row, len(table.Columns)) {
			pdf.CellFormat(colWidth, 7, tr(truncate(value, 48)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
