package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	r := Record{FieldFullName: "  Ana  "}
	assert.Equal(t, "Ana", r.Get(FieldFullName))
	assert.Empty(t, r.Get(FieldCourse))
}

func TestRecordIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "integer", raw: "12345", want: 12345},
		{name: "zero", raw: "0", want: 0},
		{name: "float form", raw: "12345.0", want: 12345},
		{name: "whitespace", raw: " 7 ", want: 7},
		{name: "fractional", raw: "12.5", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
		{name: "text", raw: "abc", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{FieldIdentifier: tt.raw}
			got, err := r.Identifier()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordClone(t *testing.T) {
	orig := Record{FieldIdentifier: "1"}
	clone := orig.Clone()
	clone[FieldIdentifier] = "2"
	assert.Equal(t, "1", orig.Get(FieldIdentifier))
}

func TestDatasetDistinctIdentifiers(t *testing.T) {
	ds := Dataset{
		Columns: []string{FieldIdentifier},
		Rows: []Record{
			{FieldIdentifier: "1"},
			{FieldIdentifier: "1"},
			{FieldIdentifier: "2"},
			{FieldIdentifier: "bad"},
		},
	}
	assert.Len(t, ds.DistinctIdentifiers(), 2)
}

func TestDatasetKindRequiredFields(t *testing.T) {
	assert.Contains(t, KindHistorical.RequiredFields(), FieldDecision)
	assert.Contains(t, KindCurrent.RequiredFields(), FieldFullName)
	assert.NotContains(t, KindCurrent.RequiredFields(), FieldDecision)
}
