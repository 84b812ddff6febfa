package domain

import (
	"strconv"
	"strings"
)

// Canonical field names assigned by header normalization. Raw spreadsheet
// headers are mapped onto these before any validation or join runs.
const (
	FieldIdentifier  = "identifier"
	FieldFullName    = "full_name"
	FieldCourse      = "course"
	FieldYear        = "year"
	FieldTerm        = "term"
	FieldIssueType   = "issue_type"
	FieldDecision    = "decision"
	FieldSGDecision  = "sg_decision"
	FieldSGNote      = "sg_note"
	FieldRequestLink = "request_link"
	FieldStudyPlan   = "study_plan_link"
	FieldAttendPlan  = "attendance_plan_link"
)

// DatasetKind distinguishes the two spreadsheet layouts the service accepts.
type DatasetKind string

const (
	KindHistorical DatasetKind = "historical"
	KindCurrent    DatasetKind = "current"
)

// RequiredFields returns the canonical fields a dataset of this kind must
// carry after normalization.
func (k DatasetKind) RequiredFields() []string {
	switch k {
	case KindHistorical:
		return []string{FieldIdentifier, FieldCourse, FieldYear, FieldTerm, FieldIssueType, FieldDecision}
	case KindCurrent:
		return []string{FieldIdentifier, FieldFullName, FieldIssueType}
	default:
		return nil
	}
}

// Record is a single spreadsheet row keyed by column name. A missing key
// means the cell was absent; an empty string means it was present but blank.
type Record map[string]string

// Get returns the trimmed cell value for a field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Identifier parses the record's identifier field as a non-negative integer.
func (r Record) Identifier() (int64, error) {
	raw := r.Get(FieldIdentifier)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Spreadsheets frequently store numeric IDs as floats ("12345.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, err
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of records sharing one column set. Pipeline
// stages never mutate a Dataset in place; each stage returns a new value.
type Dataset struct {
	Source  string      `json:"source"`
	Kind    DatasetKind `json:"kind"`
	Columns []string    `json:"columns"`
	Rows    []Record    `json:"rows"`
}

// HasColumn reports whether the dataset carries the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// DistinctIdentifiers returns the set of identifier values present in the
// dataset. Rows whose identifier does not parse are skipped; after cleaning
// there are none.
func (d Dataset) DistinctIdentifiers() map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, row := range d.Rows {
		if id, err := row.Identifier(); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// JoinedRecord pairs one current-term request with one matching historical
// entry. A current row with N historical matches yields N joined records.
type JoinedRecord struct {
	Identifier int64  `json:"identifier"`
	Current    Record `json:"current"`
	Historical Record `json:"historical"`
}
