package replicate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFilter_Match(t *testing.T) {
	row := RootRow{
		"id":     int64(42),
		"status": "paid",
		"total":  decimal.RequireFromString("100.50"),
		"score":  float32(0.5),
		"note":   nil,
	}

	tests := []struct {
		name     string
		when     string
		expected bool
	}{
		{name: "empty", when: "", expected: true},
		{name: "string equality", when: `record.status == "paid"`, expected: true},
		{name: "integer comparison", when: `record.id > 100`, expected: false},
		{name: "numeric column", when: `record.total > 100`, expected: true},
		{name: "float column", when: `record.score < 1`, expected: true},
		{name: "null column", when: `record.note == nil`, expected: true},
		{name: "combined", when: `record.status in ["paid", "shipped"] && record.id == 42`, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewRowFilter(tt.when)
			require.NoError(t, err)
			res, err := f.Match(row)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestNewRowFilter_Errors(t *testing.T) {
	_, err := NewRowFilter("record.id >")
	require.Error(t, err)

	_, err = NewRowFilter("1 + 1")
	require.Error(t, err)
}
