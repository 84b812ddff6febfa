package reconcile

import (
	"log/slog"
	"strings"

	"reqcheck/pkg/contracts/domain"
)

// canonicalVariants maps each canonical field to the raw header spellings it
// accepts. Matching happens on folded headers (lower-cased, trimmed, accents
// stripped, inner whitespace collapsed), so variants are listed folded.
var canonicalVariants = []struct {
	canonical string
	variants  []string
}{
	{domain.FieldIdentifier, []string{"nusp", "numero usp", "n usp", "no usp"}},
	{domain.FieldFullName, []string{"nome completo"}},
	{domain.FieldIssueType, []string{"problema"}},
	{domain.FieldCourse, []string{"disciplina"}},
	{domain.FieldYear, []string{"ano"}},
	{domain.FieldTerm, []string{"semestre"}},
	{domain.FieldDecision, []string{"parecer"}},
	{domain.FieldSGDecision, []string{"parecer do servico de graduacao", "parecer servico de graduacao", "parecer sg"}},
	{domain.FieldSGNote, []string{"observacao do sg", "observacao sg", "obs sg"}},
	{domain.FieldRequestLink, []string{"links pedidos requerimento", "link requerimento"}},
	{domain.FieldStudyPlan, []string{"link plano de estudos"}},
	{domain.FieldAttendPlan, []string{"link plano de presenca"}},
}

// accentFolder strips the diacritics that show up in the spreadsheet headers.
var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "°", "o", "º", "o",
)

// FoldHeader lower-cases, trims, de-accents and collapses whitespace in a raw
// column header so it can be matched against the variant table.
func FoldHeader(raw string) string {
	folded := accentFolder.Replace(strings.ToLower(strings.TrimSpace(raw)))
	return strings.Join(strings.Fields(folded), " ")
}

// canonicalFor returns the canonical name for a raw header, or "" when the
// header matches no variant. First matching canonical wins.
func canonicalFor(raw string) string {
	folded := FoldHeader(raw)
	for _, entry := range canonicalVariants {
		for _, v := range entry.variants {
			if folded == v {
				return entry.canonical
			}
		}
	}
	return ""
}

// NormalizeHeaders renames the dataset's columns to canonical field names.
// Columns matching no variant pass through unchanged; they stay available for
// optional fields. The transform is order-independent and idempotent: a
// canonical name folds back onto itself only when it is its own variant, and
// unmatched names are untouched.
//
// Two failure modes are fatal: no column normalizing to the identifier field,
// and two distinct raw columns normalizing to the same canonical name. The
// latter would silently drop a column's data, so it is surfaced instead.
func NormalizeHeaders(ds domain.Dataset) (domain.Dataset, error) {
	renames := make(map[string]string, len(ds.Columns))
	claimed := make(map[string][]string)

	for _, raw := range ds.Columns {
		canonical := canonicalFor(raw)
		if canonical == "" && isCanonical(raw) {
			// Already-normalized column: keep it and claim its name so a
			// second raw variant cannot collide with it unnoticed.
			canonical = raw
		}
		if canonical == "" {
			continue
		}
		renames[raw] = canonical
		claimed[canonical] = append(claimed[canonical], raw)
	}

	for canonical, raws := range claimed {
		if len(raws) > 1 {
			return domain.Dataset{}, &DuplicateColumnError{
				File:       ds.Source,
				Canonical:  canonical,
				RawColumns: raws,
			}
		}
	}

	if _, ok := claimed[domain.FieldIdentifier]; !ok {
		return domain.Dataset{}, &MissingIdentifierColumnError{
			File:    ds.Source,
			Columns: append([]string(nil), ds.Columns...),
		}
	}

	out := domain.Dataset{
		Source:  ds.Source,
		Kind:    ds.Kind,
		Columns: make([]string, len(ds.Columns)),
		Rows:    make([]domain.Record, len(ds.Rows)),
	}
	for i, raw := range ds.Columns {
		if canonical, ok := renames[raw]; ok {
			out.Columns[i] = canonical
		} else {
			out.Columns[i] = raw
		}
	}
	for i, row := range ds.Rows {
		renamed := make(domain.Record, len(row))
		for col, val := range row {
			if canonical, ok := renames[col]; ok {
				renamed[canonical] = val
			} else {
				renamed[col] = val
			}
		}
		out.Rows[i] = renamed
	}

	slog.Debug("normalized dataset headers",
		slog.String("file", ds.Source),
		slog.Int("renamed", len(renames)),
		slog.Int("columns", len(out.Columns)))

	return out, nil
}

// isCanonical reports whether name is one of the canonical field names.
func isCanonical(name string) bool {
	for _, entry := range canonicalVariants {
		if entry.canonical == name {
			return true
		}
	}
	return false
}
