package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVWriter encodes reports as delimited text.
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file with the right
	// encoding. On by default via NewCSVWriter.
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer with Excel-friendly defaults.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// Write streams the report to w as CSV.
func (c *CSVWriter) Write(w io.Writer, report Report) error {
	if c.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(report.Headers) > 0 {
		if err := writer.Write(report.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, row := range report.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
