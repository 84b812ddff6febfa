package reconcile

import (
	"sort"
	"strings"

	"reqcheck/pkg/contracts/domain"
)

// Decision is the approval classification of a historical decision text.
type Decision int

const (
	DecisionUnclassified Decision = iota
	DecisionApproved
	DecisionDenied
)

// Issue type codes recognized in the historical log.
const (
	IssuePrereqBreak      = "QR"
	IssueScheduleConflict = "CH"
)

// topCourseLimit bounds the course ranking in the summary.
const topCourseLimit = 5

// ClassifyDecision classifies a free-text decision by case-insensitive
// substring match. Denial substrings take precedence: text containing both
// "aprovado" and "indeferido"/"negado" counts as denied. Any other phrasing
// ("pendente", blank) is unclassified and excluded from the approval rate.
func ClassifyDecision(text string) Decision {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "indeferido") || strings.Contains(lower, "negado") {
		return DecisionDenied
	}
	if strings.Contains(lower, "aprovado") {
		return DecisionApproved
	}
	return DecisionUnclassified
}

// Summarize derives the reporting metrics from one reconciliation run. All
// rates are percentages and defined as 0 when the denominator is 0.
func Summarize(current domain.Dataset, joined []domain.JoinedRecord, newRequests domain.Dataset) domain.Summary {
	summary := domain.Summary{
		TotalRequests: current.Len(),
		TopCourses:    []domain.CourseCount{},
		PeriodSeries:  []domain.PeriodCount{},
	}

	distinctCurrent := current.DistinctIdentifiers()
	summary.DistinctRequesters = len(distinctCurrent)
	summary.WithHistoryCount = len(WithHistoryIdentifiers(joined))
	summary.NewCount = len(newRequests.DistinctIdentifiers())

	if summary.DistinctRequesters > 0 {
		summary.WithHistoryPercent = float64(summary.WithHistoryCount) / float64(summary.DistinctRequesters) * 100
	}

	courseCounts := make(map[string]int)
	courseFirstSeen := make(map[string]int)
	periodCounts := make(map[string]int)

	for _, jr := range joined {
		switch ClassifyDecision(jr.Historical.Get(domain.FieldDecision)) {
		case DecisionApproved:
			summary.ApprovedCount++
		case DecisionDenied:
			summary.DeniedCount++
		}

		switch strings.ToUpper(jr.Historical.Get(domain.FieldIssueType)) {
		case IssuePrereqBreak:
			summary.PrereqBreakCount++
		case IssueScheduleConflict:
			summary.ScheduleConflictCount++
		}

		if course := jr.Historical.Get(domain.FieldCourse); course != "" {
			if _, seen := courseCounts[course]; !seen {
				courseFirstSeen[course] = len(courseFirstSeen)
			}
			courseCounts[course]++
		}

		year := jr.Historical.Get(domain.FieldYear)
		term := jr.Historical.Get(domain.FieldTerm)
		if year != "" || term != "" {
			periodCounts[year+"/"+term]++
		}
	}

	if decided := summary.ApprovedCount + summary.DeniedCount; decided > 0 {
		summary.ApprovalRate = float64(summary.ApprovedCount) / float64(decided) * 100
	}

	summary.TopCourses = topCourses(courseCounts, courseFirstSeen)
	summary.PeriodSeries = periodSeries(periodCounts)

	return summary
}

// topCourses ranks courses by frequency descending, ties broken by first
// occurrence in the joined data, truncated to the ranking limit.
func topCourses(counts map[string]int, firstSeen map[string]int) []domain.CourseCount {
	ranked := make([]domain.CourseCount, 0, len(counts))
	for course, count := range counts {
		ranked = append(ranked, domain.CourseCount{Course: course, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Course] < firstSeen[ranked[j].Course]
	})
	if len(ranked) > topCourseLimit {
		ranked = ranked[:topCourseLimit]
	}
	return ranked
}

// periodSeries sorts the per-period join counts by period key ascending.
func periodSeries(counts map[string]int) []domain.PeriodCount {
	series := make([]domain.PeriodCount, 0, len(counts))
	for period, count := range counts {
		series = append(series, domain.PeriodCount{Period: period, Count: count})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Period < series[j].Period
	})
	return series
}
