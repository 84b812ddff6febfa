package reconcile

import (
	"reqcheck/pkg/contracts/domain"
)

// ValidateSchemas checks that both normalized datasets carry the canonical
// fields their kind requires. Missing sets are computed independently and
// reported together, so the caller sees every problem in one pass. Pure
// check; runs strictly after normalization and before cleaning.
func ValidateSchemas(historical, current domain.Dataset) error {
	missing := make(map[domain.DatasetKind][]string)

	if m := missingFields(historical, domain.KindHistorical); len(m) > 0 {
		missing[domain.KindHistorical] = m
	}
	if m := missingFields(current, domain.KindCurrent); len(m) > 0 {
		missing[domain.KindCurrent] = m
	}

	if len(missing) > 0 {
		return &SchemaValidationError{Missing: missing}
	}
	return nil
}

func missingFields(ds domain.Dataset, kind domain.DatasetKind) []string {
	var missing []string
	for _, field := range kind.RequiredFields() {
		if !ds.HasColumn(field) {
			missing = append(missing, field)
		}
	}
	return missing
}
