package reconcile

import (
	"fmt"
	"strings"

	"reqcheck/pkg/contracts/domain"
)

// MissingIdentifierColumnError reports a dataset in which no raw column
// normalized to the identifier field. Columns carries the names that were
// available, for diagnostic display.
type MissingIdentifierColumnError struct {
	File    string
	Columns []string
}

func (e *MissingIdentifierColumnError) Error() string {
	return fmt.Sprintf("no identifier column found in %q; available columns: %s",
		e.File, strings.Join(e.Columns, ", "))
}

// DuplicateColumnError reports two distinct raw columns normalizing to the
// same canonical name. Letting the later rename win would silently drop a
// column's data, so this is treated as a validation failure.
type DuplicateColumnError struct {
	File       string
	Canonical  string
	RawColumns []string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("columns %s in %q all normalize to %q",
		strings.Join(e.RawColumns, ", "), e.File, e.Canonical)
}

// SchemaValidationError reports required canonical fields absent from one or
// both datasets after normalization. Missing is keyed by dataset kind.
type SchemaValidationError struct {
	Missing map[domain.DatasetKind][]string
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, kind := range []domain.DatasetKind{domain.KindHistorical, domain.KindCurrent} {
		if fields, ok := e.Missing[kind]; ok && len(fields) > 0 {
			parts = append(parts, fmt.Sprintf("%s dataset missing columns: %s",
				kind, strings.Join(fields, ", ")))
		}
	}
	return strings.Join(parts, "; ")
}

// MissingFor returns the missing fields recorded for a dataset kind.
func (e *SchemaValidationError) MissingFor(kind domain.DatasetKind) []string {
	return e.Missing[kind]
}
