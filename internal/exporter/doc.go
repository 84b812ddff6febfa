// Package exporter renders reconciliation results into downloadable
// reports.
//
// BuildReport flattens a reconciliation result into a Report (headers plus
// string rows) for one of two views: the joined with-history records or the
// first-time requesters. Two encoders stream a Report to an io.Writer:
//
// CSVWriter: delimited text with a UTF-8 BOM for Excel compatibility.
//
// ExcelWriter: a styled xlsx workbook with a bold, filled header row and
// auto-sized columns.
//
// Example usage:
//
//	report, err := exporter.BuildReport(exporter.ReportWithHistory, result)
//	if err != nil {
//	    return err
//	}
//	err = exporter.NewCSVWriter().Write(w, report)
package exporter
