package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/pkg/contracts/domain"
)

func TestClassifyDecision(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Decision
	}{
		{name: "approved", text: "Aprovado", expected: DecisionApproved},
		{name: "approved lowercase", text: "aprovado pelo colegiado", expected: DecisionApproved},
		{name: "denied indeferido", text: "Indeferido", expected: DecisionDenied},
		{name: "denied negado", text: "Pedido negado", expected: DecisionDenied},
		{name: "denial wins over approval", text: "Aprovado parcialmente, restante indeferido", expected: DecisionDenied},
		{name: "pending is unclassified", text: "Pendente", expected: DecisionUnclassified},
		{name: "blank is unclassified", text: "", expected: DecisionUnclassified},
		{name: "unrelated text is unclassified", text: "em análise", expected: DecisionUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyDecision(tt.text))
		})
	}
}

func joinedWith(historical ...domain.Record) []domain.JoinedRecord {
	joined := make([]domain.JoinedRecord, len(historical))
	for i, h := range historical {
		joined[i] = domain.JoinedRecord{
			Identifier: int64(i + 1),
			Current:    domain.Record{domain.FieldIdentifier: h.Get(domain.FieldIdentifier)},
			Historical: h,
		}
	}
	return joined
}

func TestSummarize_EmptyInputsYieldZeroRates(t *testing.T) {
	summary := Summarize(domain.Dataset{}, nil, domain.Dataset{})

	assert.Zero(t, summary.TotalRequests)
	assert.Zero(t, summary.DistinctRequesters)
	assert.Zero(t, summary.WithHistoryPercent)
	assert.Zero(t, summary.ApprovalRate)
	assert.NotNil(t, summary.TopCourses)
	assert.NotNil(t, summary.PeriodSeries)
	assert.Empty(t, summary.TopCourses)
	assert.Empty(t, summary.PeriodSeries)
}

func TestSummarize_ApprovalRateExcludesUnclassified(t *testing.T) {
	joined := joinedWith(
		domain.Record{domain.FieldDecision: "Aprovado"},
		domain.Record{domain.FieldDecision: "Aprovado"},
		domain.Record{domain.FieldDecision: "Indeferido"},
		domain.Record{domain.FieldDecision: "Pendente"},
		domain.Record{domain.FieldDecision: ""},
	)

	summary := Summarize(domain.Dataset{}, joined, domain.Dataset{})

	assert.Equal(t, 2, summary.ApprovedCount)
	assert.Equal(t, 1, summary.DeniedCount)
	assert.InDelta(t, 200.0/3.0, summary.ApprovalRate, 0.001)
}

func TestSummarize_ApprovalRateZeroWhenNothingDecided(t *testing.T) {
	joined := joinedWith(
		domain.Record{domain.FieldDecision: "Pendente"},
	)

	summary := Summarize(domain.Dataset{}, joined, domain.Dataset{})
	assert.Zero(t, summary.ApprovalRate)
}

func TestSummarize_IssueTypeCounts(t *testing.T) {
	joined := joinedWith(
		domain.Record{domain.FieldIssueType: "QR"},
		domain.Record{domain.FieldIssueType: "qr"},
		domain.Record{domain.FieldIssueType: "CH"},
		domain.Record{domain.FieldIssueType: "outro"},
		domain.Record{domain.FieldIssueType: ""},
	)

	summary := Summarize(domain.Dataset{}, joined, domain.Dataset{})

	assert.Equal(t, 2, summary.PrereqBreakCount)
	assert.Equal(t, 1, summary.ScheduleConflictCount)
}

func TestSummarize_WithHistoryPercent(t *testing.T) {
	current := domain.Dataset{
		Columns: []string{domain.FieldIdentifier},
		Rows: []domain.Record{
			{domain.FieldIdentifier: "1"},
			{domain.FieldIdentifier: "2"},
			{domain.FieldIdentifier: "3"},
			{domain.FieldIdentifier: "4"},
		},
	}
	joined := []domain.JoinedRecord{
		{Identifier: 1, Historical: domain.Record{}},
	}
	newRequests := domain.Dataset{
		Columns: []string{domain.FieldIdentifier},
		Rows: []domain.Record{
			{domain.FieldIdentifier: "2"},
			{domain.FieldIdentifier: "3"},
			{domain.FieldIdentifier: "4"},
		},
	}

	summary := Summarize(current, joined, newRequests)

	assert.Equal(t, 4, summary.TotalRequests)
	assert.Equal(t, 4, summary.DistinctRequesters)
	assert.Equal(t, 1, summary.WithHistoryCount)
	assert.Equal(t, 3, summary.NewCount)
	assert.InDelta(t, 25.0, summary.WithHistoryPercent, 0.001)
}

func TestSummarize_TopCourses(t *testing.T) {
	joined := joinedWith(
		domain.Record{domain.FieldCourse: "MAC0110"},
		domain.Record{domain.FieldCourse: "MAT0121"},
		domain.Record{domain.FieldCourse: "MAC0110"},
		domain.Record{domain.FieldCourse: "FIS0101"},
		domain.Record{domain.FieldCourse: "MAT0121"},
		domain.Record{domain.FieldCourse: "MAC0110"},
		domain.Record{domain.FieldCourse: "QUI0201"},
		domain.Record{domain.FieldCourse: "BIO0301"},
		domain.Record{domain.FieldCourse: "EST0401"},
		domain.Record{domain.FieldCourse: ""},
	)

	summary := Summarize(domain.Dataset{}, joined, domain.Dataset{})

	require.Len(t, summary.TopCourses, 5)
	assert.Equal(t, domain.CourseCount{Course: "MAC0110", Count: 3}, summary.TopCourses[0])
	assert.Equal(t, domain.CourseCount{Course: "MAT0121", Count: 2}, summary.TopCourses[1])

	// Singles rank by first appearance in the joined data.
	assert.Equal(t, "FIS0101", summary.TopCourses[2].Course)
	assert.Equal(t, "QUI0201", summary.TopCourses[3].Course)
	assert.Equal(t, "BIO0301", summary.TopCourses[4].Course)
}

func TestSummarize_PeriodSeriesSortedAscending(t *testing.T) {
	joined := joinedWith(
		domain.Record{domain.FieldYear: "2024", domain.FieldTerm: "1"},
		domain.Record{domain.FieldYear: "2023", domain.FieldTerm: "2"},
		domain.Record{domain.FieldYear: "2024", domain.FieldTerm: "1"},
		domain.Record{domain.FieldYear: "2023", domain.FieldTerm: "1"},
		domain.Record{domain.FieldYear: "", domain.FieldTerm: ""},
	)

	summary := Summarize(domain.Dataset{}, joined, domain.Dataset{})

	require.Len(t, summary.PeriodSeries, 3)
	assert.Equal(t, domain.PeriodCount{Period: "2023/1", Count: 1}, summary.PeriodSeries[0])
	assert.Equal(t, domain.PeriodCount{Period: "2023/2", Count: 1}, summary.PeriodSeries[1])
	assert.Equal(t, domain.PeriodCount{Period: "2024/1", Count: 2}, summary.PeriodSeries[2])
}

func TestDecisionLabel(t *testing.T) {
	assert.Equal(t, "Pendente", DecisionLabel(""))
	assert.Equal(t, "Aprovado", DecisionLabel("Aprovado"))
}

func TestIssueTypeLabel(t *testing.T) {
	assert.Equal(t, "Quebra de Requisito", IssueTypeLabel("QR"))
	assert.Equal(t, "Conflito de Horário", IssueTypeLabel("CH"))
	assert.Equal(t, "Não especificado", IssueTypeLabel(""))
	assert.Equal(t, "XY", IssueTypeLabel("XY"))
}
