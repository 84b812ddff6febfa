package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/pkg/contracts/domain"
)

func cleanInput(ids ...string) domain.Dataset {
	ds := domain.Dataset{
		Source:  "input.xlsx",
		Columns: []string{domain.FieldIdentifier},
	}
	for _, id := range ids {
		ds.Rows = append(ds.Rows, domain.Record{domain.FieldIdentifier: id})
	}
	return ds
}

func TestCleanIdentifiers(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		wantIDs     []string
		wantDropped int
	}{
		{
			name:    "plain integers survive",
			ids:     []string{"123", "456"},
			wantIDs: []string{"123", "456"},
		},
		{
			name:    "spreadsheet float form is coerced",
			ids:     []string{"12345.0"},
			wantIDs: []string{"12345"},
		},
		{
			name:    "surrounding whitespace is tolerated",
			ids:     []string{" 99 "},
			wantIDs: []string{"99"},
		},
		{
			name:        "non-numeric rows are dropped",
			ids:         []string{"abc", "123", ""},
			wantIDs:     []string{"123"},
			wantDropped: 2,
		},
		{
			name:        "negative identifiers are dropped",
			ids:         []string{"-5", "5"},
			wantIDs:     []string{"5"},
			wantDropped: 1,
		},
		{
			name:        "fractional values are dropped",
			ids:         []string{"12.5", "7"},
			wantIDs:     []string{"7"},
			wantDropped: 1,
		},
		{
			name:        "all rows invalid yields empty dataset",
			ids:         []string{"x", "y"},
			wantIDs:     []string{},
			wantDropped: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanIdentifiers(cleanInput(tt.ids...))

			assert.Equal(t, tt.wantDropped, result.Dropped)

			got := make([]string, 0, len(result.Dataset.Rows))
			for _, row := range result.Dataset.Rows {
				got = append(got, row.Get(domain.FieldIdentifier))
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestCleanIdentifiers_Idempotent(t *testing.T) {
	once := CleanIdentifiers(cleanInput("10.0", "nope", "20"))
	require.Equal(t, 1, once.Dropped)

	twice := CleanIdentifiers(once.Dataset)
	assert.Zero(t, twice.Dropped)
	assert.Equal(t, once.Dataset.Rows, twice.Dataset.Rows)
}

func TestCleanIdentifiers_DoesNotMutateInput(t *testing.T) {
	input := cleanInput("30.0")
	CleanIdentifiers(input)
	assert.Equal(t, "30.0", input.Rows[0].Get(domain.FieldIdentifier))
}

func TestCleanResult_Warning(t *testing.T) {
	t.Run("nothing dropped", func(t *testing.T) {
		result := CleanIdentifiers(cleanInput("1"))
		assert.Nil(t, result.Warning())
	})

	t.Run("dropped rows produce a warning", func(t *testing.T) {
		result := CleanIdentifiers(cleanInput("bad", "worse", "3"))
		w := result.Warning()
		require.NotNil(t, w)
		assert.Equal(t, "input.xlsx", w.File)
		assert.Equal(t, 2, w.Dropped)
		assert.Contains(t, w.Message, "2 record(s)")
		assert.Contains(t, w.Message, "input.xlsx")
	})
}
