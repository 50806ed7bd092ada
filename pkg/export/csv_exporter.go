package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is an ordered tabular document: every row holds one cell per column.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// CSVExporter renders tables into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType of the produced document.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension of the produced document.
func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV encoded bytes; short rows are padded with empty cells.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(normalise(row, len(table.Columns))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func normalise(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
