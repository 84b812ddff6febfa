package reconcile

import (
	"reqcheck/pkg/contracts/domain"
)

// Reconcile performs the inner equi-join of current-term requests against
// the historical log on identifier. One current row joined to N historical
// entries yields N joined records, in current-row order with historical
// matches in their original order.
//
// The returned new-requests dataset holds every current row whose identifier
// has no historical match. The with-history and new identifier sets always
// partition the current dataset's identifier set: no overlap, no omission.
// Both inputs must already be cleaned.
func Reconcile(current, historical domain.Dataset) ([]domain.JoinedRecord, domain.Dataset) {
	// Index historical rows by identifier, preserving row order per key.
	index := make(map[int64][]domain.Record, len(historical.Rows))
	for _, row := range historical.Rows {
		id, err := row.Identifier()
		if err != nil {
			continue
		}
		index[id] = append(index[id], row)
	}

	joined := make([]domain.JoinedRecord, 0, len(current.Rows))
	newRequests := domain.Dataset{
		Source:  current.Source,
		Kind:    current.Kind,
		Columns: append([]string(nil), current.Columns...),
	}

	for _, row := range current.Rows {
		id, err := row.Identifier()
		if err != nil {
			continue
		}
		matches, ok := index[id]
		if !ok {
			newRequests.Rows = append(newRequests.Rows, row)
			continue
		}
		for _, hist := range matches {
			joined = append(joined, domain.JoinedRecord{
				Identifier: id,
				Current:    row,
				Historical: hist,
			})
		}
	}

	return joined, newRequests
}

// WithHistoryIdentifiers returns the distinct identifiers present in the
// join result.
func WithHistoryIdentifiers(joined []domain.JoinedRecord) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(joined))
	for _, jr := range joined {
		ids[jr.Identifier] = struct{}{}
	}
	return ids
}
