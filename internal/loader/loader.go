package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"reqcheck/pkg/contracts/domain"
)

// FileLoadError reports a file that could not be parsed as a spreadsheet in
// either supported format. Both attempt errors are kept for diagnostics.
type FileLoadError struct {
	File     string
	ExcelErr error
	CSVErr   error
}

func (e *FileLoadError) Error() string {
	return fmt.Sprintf("failed to read %q as Excel (%v) or CSV (%v)", e.File, e.ExcelErr, e.CSVErr)
}

// TooManyRowsError reports an upload exceeding the configured row limit.
type TooManyRowsError struct {
	File    string
	Rows    int
	MaxRows int
}

func (e *TooManyRowsError) Error() string {
	return fmt.Sprintf("%q has %d rows, exceeding the limit of %d", e.File, e.Rows, e.MaxRows)
}

// Loader reads uploaded tabular files into Datasets. Format detection tries
// a structured-spreadsheet parse first and falls back to delimited text.
type Loader struct {
	logger  *slog.Logger
	maxRows int
}

// New creates a loader. maxRows <= 0 disables the row limit.
func New(logger *slog.Logger, maxRows int) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger.With(slog.String("component", "loader")),
		maxRows: maxRows,
	}
}

// Load parses file contents into a Dataset. The first non-empty row is the
// header; later rows map cell values onto the raw header names. Short rows
// leave the trailing columns absent.
func (l *Loader) Load(name string, data []byte) (domain.Dataset, error) {
	rows, excelErr := readExcel(data)
	if excelErr != nil {
		var csvErr error
		rows, csvErr = readCSV(data)
		if csvErr != nil {
			l.logger.Warn("file unreadable in both formats",
				slog.String("file", name),
				slog.String("excel_error", excelErr.Error()),
				slog.String("csv_error", csvErr.Error()))
			return domain.Dataset{}, &FileLoadError{File: name, ExcelErr: excelErr, CSVErr: csvErr}
		}
	}

	ds, err := tableToDataset(name, rows)
	if err != nil {
		return domain.Dataset{}, err
	}

	if l.maxRows > 0 && ds.Len() > l.maxRows {
		return domain.Dataset{}, &TooManyRowsError{File: name, Rows: ds.Len(), MaxRows: l.maxRows}
	}

	l.logger.Info("loaded dataset",
		slog.String("file", name),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.Columns)))

	return ds, nil
}

// LoadFile reads and parses a file from disk.
func (l *Loader) LoadFile(path string) (domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, &FileLoadError{File: path, ExcelErr: err, CSVErr: err}
	}
	return l.Load(path, data)
}

// readExcel extracts the rows of the first sheet of an xlsx workbook.
func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSV parses delimited text, tolerating a UTF-8 BOM and ragged rows.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return rows, nil
}

// tableToDataset converts raw rows into a Dataset keyed by the header row.
func tableToDataset(name string, rows [][]string) (domain.Dataset, error) {
	headerIdx := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return domain.Dataset{}, &FileLoadError{
			File:     name,
			ExcelErr: fmt.Errorf("no header row found"),
			CSVErr:   fmt.Errorf("no header row found"),
		}
	}

	var columns []string
	for _, h := range rows[headerIdx] {
		columns = append(columns, strings.TrimSpace(h))
	}

	ds := domain.Dataset{
		Source:  name,
		Columns: columns,
	}

	for _, row := range rows[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		record := make(domain.Record, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(row) {
				record[col] = row[i]
			}
		}
		ds.Rows = append(ds.Rows, record)
	}

	return ds, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
