package domain

// CourseCount is one entry of the top-courses ranking.
type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

// PeriodCount is one point of the per-period request series. Period is the
// historical year and term joined as "year/term".
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Summary holds the derived metrics for one reconciliation run. All values
// are plain data; the presentation layer owns formatting and locale.
type Summary struct {
	TotalRequests      int     `json:"total_requests"`
	DistinctRequesters int     `json:"distinct_requesters"`
	WithHistoryCount   int     `json:"with_history_count"`
	WithHistoryPercent float64 `json:"with_history_percent"`
	NewCount           int     `json:"new_count"`

	ApprovedCount int     `json:"approved_count"`
	DeniedCount   int     `json:"denied_count"`
	ApprovalRate  float64 `json:"approval_rate"`

	PrereqBreakCount      int `json:"prereq_break_count"`
	ScheduleConflictCount int `json:"schedule_conflict_count"`

	TopCourses   []CourseCount `json:"top_courses"`
	PeriodSeries []PeriodCount `json:"period_series"`
}

// Warning reports a non-fatal condition encountered while preparing a
// dataset, such as rows dropped for unparseable identifiers.
type Warning struct {
	File    string `json:"file"`
	Dropped int    `json:"dropped"`
	Message string `json:"message"`
}

// Result is the complete output of one reconciliation run: the cleaned
// inputs, the join, the first-time requesters and the derived summary.
type Result struct {
	Historical  Dataset        `json:"historical"`
	Current     Dataset        `json:"current"`
	Joined      []JoinedRecord `json:"joined"`
	NewRequests Dataset        `json:"new_requests"`
	Summary     Summary        `json:"summary"`
	Warnings    []Warning      `json:"warnings"`
}
