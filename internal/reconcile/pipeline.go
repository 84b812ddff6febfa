package reconcile

import (
	"context"
	"log/slog"

	"reqcheck/pkg/contracts/domain"
)

// Pipeline runs the full reconciliation: normalize, validate, clean, join,
// aggregate. Each stage returns a new Dataset; nothing is mutated in place,
// so the invariants hold checkable at every stage boundary.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a reconciliation pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger.With(slog.String("component", "reconcile_pipeline")),
	}
}

// Run reconciles the current-term dataset against the historical log. Inputs
// are raw loaded datasets with Source and Kind set. Validation failures
// abort before any join or aggregation runs; per-row identifier failures
// degrade to warnings.
func (p *Pipeline) Run(ctx context.Context, historical, current domain.Dataset) (*domain.Result, error) {
	p.logger.InfoContext(ctx, "starting reconciliation",
		slog.String("historical_file", historical.Source),
		slog.Int("historical_rows", historical.Len()),
		slog.String("current_file", current.Source),
		slog.Int("current_rows", current.Len()))

	historical.Kind = domain.KindHistorical
	current.Kind = domain.KindCurrent

	normHistorical, err := NormalizeHeaders(historical)
	if err != nil {
		return nil, err
	}
	normCurrent, err := NormalizeHeaders(current)
	if err != nil {
		return nil, err
	}

	if err := ValidateSchemas(normHistorical, normCurrent); err != nil {
		p.logger.WarnContext(ctx, "schema validation failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	// The historical log sometimes carries its own name column; the current
	// dataset's name is authoritative, so drop it from the join side.
	normHistorical = dropColumn(normHistorical, domain.FieldFullName)

	cleanedHistorical := CleanIdentifiers(normHistorical)
	cleanedCurrent := CleanIdentifiers(normCurrent)

	var warnings []domain.Warning
	if w := cleanedHistorical.Warning(); w != nil {
		warnings = append(warnings, *w)
	}
	if w := cleanedCurrent.Warning(); w != nil {
		warnings = append(warnings, *w)
	}

	joined, newRequests := Reconcile(cleanedCurrent.Dataset, cleanedHistorical.Dataset)
	summary := Summarize(cleanedCurrent.Dataset, joined, newRequests)

	p.logger.InfoContext(ctx, "reconciliation complete",
		slog.Int("joined_records", len(joined)),
		slog.Int("with_history", summary.WithHistoryCount),
		slog.Int("new_requesters", summary.NewCount),
		slog.Int("warnings", len(warnings)))

	return &domain.Result{
		Historical:  cleanedHistorical.Dataset,
		Current:     cleanedCurrent.Dataset,
		Joined:      joined,
		NewRequests: newRequests,
		Summary:     summary,
		Warnings:    warnings,
	}, nil
}

// dropColumn returns the dataset without the named column. No-op when the
// column is absent.
func dropColumn(ds domain.Dataset, name string) domain.Dataset {
	if !ds.HasColumn(name) {
		return ds
	}
	out := domain.Dataset{
		Source: ds.Source,
		Kind:   ds.Kind,
		Rows:   make([]domain.Record, len(ds.Rows)),
	}
	for _, col := range ds.Columns {
		if col != name {
			out.Columns = append(out.Columns, col)
		}
	}
	for i, row := range ds.Rows {
		trimmed := row.Clone()
		delete(trimmed, name)
		out.Rows[i] = trimmed
	}
	return out
}
