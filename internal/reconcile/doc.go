// Package reconcile implements the enrollment-exception reconciliation
// pipeline: it normalizes spreadsheet headers to canonical field names,
// validates each dataset's schema, cleans identifier values, joins the
// current term's requests against the historical log, and derives the
// summary metrics used for reporting.
//
// # Pipeline
//
// The stages run in a fixed order, each producing a new immutable Dataset:
//
//	raw Dataset → NormalizeHeaders → ValidateSchemas → CleanIdentifiers → Reconcile → Summarize
//
// Pipeline.Run wires the stages together for one (historical, current)
// upload pair. Validation failures abort the run before any join happens;
// rows with unparseable identifiers are dropped with a counted warning
// rather than failing the run.
//
// # Invariants
//
//   - After cleaning, every identifier is a non-negative integer in
//     canonical decimal form, which makes cleaning idempotent.
//   - The with-history and new identifier sets partition the current
//     dataset's distinct identifiers exactly.
//   - Two raw columns normalizing to the same canonical name is an error,
//     never a silent overwrite.
package reconcile
