package reconcile

import (
	"fmt"
	"log/slog"
	"strconv"

	"reqcheck/pkg/contracts/domain"
)

// CleanResult is the output of one cleaning pass.
type CleanResult struct {
	Dataset domain.Dataset
	Dropped int
}

// CleanIdentifiers coerces every row's identifier to a non-negative integer,
// dropping rows whose identifier does not parse. Surviving identifiers are
// rewritten in canonical decimal form, which makes the pass idempotent: a
// second run drops nothing. Dropped counts are reported back so the caller
// can surface a warning naming the source file.
func CleanIdentifiers(ds domain.Dataset) CleanResult {
	out := domain.Dataset{
		Source:  ds.Source,
		Kind:    ds.Kind,
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([]domain.Record, 0, len(ds.Rows)),
	}

	dropped := 0
	for _, row := range ds.Rows {
		id, err := row.Identifier()
		if err != nil {
			dropped++
			continue
		}
		cleaned := row.Clone()
		cleaned[domain.FieldIdentifier] = strconv.FormatInt(id, 10)
		out.Rows = append(out.Rows, cleaned)
	}

	if dropped > 0 {
		slog.Warn("dropped rows with invalid identifiers",
			slog.String("file", ds.Source),
			slog.Int("dropped", dropped))
	}

	return CleanResult{Dataset: out, Dropped: dropped}
}

// Warning converts a cleaning pass into the warning shown to the caller, or
// nil when nothing was dropped.
func (cr CleanResult) Warning() *domain.Warning {
	if cr.Dropped == 0 {
		return nil
	}
	return &domain.Warning{
		File:    cr.Dataset.Source,
		Dropped: cr.Dropped,
		Message: fmt.Sprintf("removed %d record(s) with invalid identifier from %q", cr.Dropped, cr.Dataset.Source),
	}
}
