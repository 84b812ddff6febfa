package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/pkg/contracts/domain"
)

func sampleResult() *domain.Result {
	return &domain.Result{
		Current: domain.Dataset{
			Source:  "atual.xlsx",
			Kind:    domain.KindCurrent,
			Columns: []string{domain.FieldIdentifier, domain.FieldFullName, domain.FieldIssueType},
			Rows: []domain.Record{
				{domain.FieldIdentifier: "123", domain.FieldFullName: "Ana", domain.FieldIssueType: "QR"},
				{domain.FieldIdentifier: "456", domain.FieldFullName: "Bruno", domain.FieldIssueType: "CH"},
			},
		},
		Joined: []domain.JoinedRecord{
			{
				Identifier: 123,
				Current:    domain.Record{domain.FieldIdentifier: "123", domain.FieldFullName: "Ana", domain.FieldIssueType: "QR"},
				Historical: domain.Record{
					domain.FieldIdentifier: "123",
					domain.FieldCourse:     "Calculus",
					domain.FieldYear:       "2023",
					domain.FieldTerm:       "1",
					domain.FieldIssueType:  "QR",
					domain.FieldDecision:   "Aprovado",
				},
			},
		},
		NewRequests: domain.Dataset{
			Source:  "atual.xlsx",
			Kind:    domain.KindCurrent,
			Columns: []string{domain.FieldIdentifier, domain.FieldFullName, domain.FieldIssueType},
			Rows: []domain.Record{
				{domain.FieldIdentifier: "456", domain.FieldFullName: "Bruno", domain.FieldIssueType: "CH"},
			},
		},
	}
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatExcel.ContentType(), "spreadsheetml")
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	assert.Equal(t, "relatorio_new_20260314_150926.csv", FileName("relatorio_new", FormatCSV, now))
	assert.Equal(t, "relatorio_new_20260314_150926.xlsx", FileName("relatorio_new", FormatExcel, now))
}

func TestBuildReport_WithHistory(t *testing.T) {
	report, err := BuildReport(ReportWithHistory, sampleResult())
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.FieldIdentifier,
		domain.FieldFullName,
		domain.FieldIssueType,
		"historical_" + domain.FieldCourse,
		"historical_" + domain.FieldYear,
		"historical_" + domain.FieldTerm,
		"historical_" + domain.FieldIssueType,
		"historical_" + domain.FieldDecision,
	}, report.Headers)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, []string{"123", "Ana", "QR", "Calculus", "2023", "1", "QR", "Aprovado"}, report.Rows[0])
}

func TestBuildReport_New(t *testing.T) {
	report, err := BuildReport(ReportNew, sampleResult())
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.FieldIdentifier,
		domain.FieldFullName,
		domain.FieldIssueType,
	}, report.Headers)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, []string{"456", "Bruno", "CH"}, report.Rows[0])
}

func TestBuildReport_OptionalColumnsOnlyWhenPresent(t *testing.T) {
	res := sampleResult()
	res.Current.Columns = append(res.Current.Columns, domain.FieldSGDecision)
	res.Joined[0].Current[domain.FieldSGDecision] = "Deferido"

	report, err := BuildReport(ReportWithHistory, res)
	require.NoError(t, err)

	assert.Contains(t, report.Headers, domain.FieldSGDecision)
	assert.NotContains(t, report.Headers, domain.FieldSGNote)
	assert.Equal(t, "Deferido", report.Rows[0][3])
}

func TestBuildReport_Unknown(t *testing.T) {
	_, err := BuildReport("bogus", sampleResult())
	assert.ErrorIs(t, err, ErrUnknownReport)
}
