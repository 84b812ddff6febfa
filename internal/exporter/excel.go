package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Relatorio"
	// headerFill matches the styling of the spreadsheets the graduate
	// office already circulates.
	headerFill = "D7E4BD"
	// maxColumnWidth caps auto-sizing so link columns stay readable.
	maxColumnWidth = 50
)

// ExcelWriter encodes reports as styled xlsx workbooks: bold header row on a
// colored fill, thin borders, auto-sized columns.
type ExcelWriter struct{}

// NewExcelWriter creates an Excel writer.
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// Write renders the report into a single-sheet workbook and streams it to w.
func (e *ExcelWriter) Write(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range report.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for i, row := range report.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := autoSizeColumns(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// autoSizeColumns widens each column to its longest value, capped.
func autoSizeColumns(f *excelize.File, report Report) error {
	for col, header := range report.Headers {
		width := len(header)
		for _, row := range report.Rows {
			if col < len(row) && len(row[col]) > width {
				width = len(row[col])
			}
		}
		width += 2
		if width > maxColumnWidth {
			width = maxColumnWidth
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}
