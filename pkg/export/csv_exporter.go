// Package export renders advisor datasets into downloadable CSV and
// PDF documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is the format-agnostic table shape produced by export
// generators. Row values are keyed by header name so column order is
// controlled entirely by Headers.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter encodes a Dataset as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter returns a ready-to-use CSV renderer.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header row followed by every data row. Cells with
// no value for a header come out empty rather than shifting columns.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
