package exporter

import (
	"errors"
	"fmt"
	"time"

	"reqcheck/pkg/contracts/domain"
)

// ErrUnknownReport is returned by BuildReport for report names outside the
// accepted set.
var ErrUnknownReport = errors.New("unknown report")

// Report is a flattened tabular view of reconciliation output, ready for
// either export encoding.
type Report struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Report names accepted by the export surface.
const (
	ReportWithHistory = "with-history"
	ReportNew         = "new"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// ContentType returns the MIME type for the encoding.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds the timestamped download name for a report.
func FileName(prefix string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), string(f))
}

// currentColumns are the current-dataset fields shown on every report, in
// display order. Optional fields appear only when the upload carried them.
var currentColumns = []string{
	domain.FieldIdentifier,
	domain.FieldFullName,
	domain.FieldIssueType,
	domain.FieldSGDecision,
	domain.FieldSGNote,
	domain.FieldRequestLink,
	domain.FieldStudyPlan,
	domain.FieldAttendPlan,
}

// historicalColumns are the historical-log fields appended to each joined
// row, prefixed to keep them apart from the current fields.
var historicalColumns = []string{
	domain.FieldCourse,
	domain.FieldYear,
	domain.FieldTerm,
	domain.FieldIssueType,
	domain.FieldDecision,
}

// BuildReport flattens the requested view of a reconciliation result.
func BuildReport(name string, res *domain.Result) (Report, error) {
	switch name {
	case ReportWithHistory:
		return withHistoryReport(res), nil
	case ReportNew:
		return newRequestsReport(res), nil
	default:
		return Report{}, fmt.Errorf("%w %q", ErrUnknownReport, name)
	}
}

// withHistoryReport flattens the joined records: one row per
// (current, historical) pair, current fields first.
func withHistoryReport(res *domain.Result) Report {
	present := presentColumns(res.Current, currentColumns)

	headers := append([]string(nil), present...)
	for _, col := range historicalColumns {
		headers = append(headers, "historical_"+col)
	}

	rows := make([][]string, 0, len(res.Joined))
	for _, jr := range res.Joined {
		row := make([]string, 0, len(headers))
		for _, col := range present {
			row = append(row, jr.Current.Get(col))
		}
		for _, col := range historicalColumns {
			row = append(row, jr.Historical.Get(col))
		}
		rows = append(rows, row)
	}

	return Report{Name: ReportWithHistory, Headers: headers, Rows: rows}
}

// newRequestsReport lists first-time requesters with their current fields.
func newRequestsReport(res *domain.Result) Report {
	present := presentColumns(res.NewRequests, currentColumns)

	rows := make([][]string, 0, res.NewRequests.Len())
	for _, row := range res.NewRequests.Rows {
		out := make([]string, 0, len(present))
		for _, col := range present {
			out = append(out, row.Get(col))
		}
		rows = append(rows, out)
	}

	return Report{Name: ReportNew, Headers: present, Rows: rows}
}

// presentColumns filters the display order down to columns the dataset
// actually carries.
func presentColumns(ds domain.Dataset, order []string) []string {
	var present []string
	for _, col := range order {
		if ds.HasColumn(col) {
			present = append(present, col)
		}
	}
	return present
}
