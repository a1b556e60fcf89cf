package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicable/internal/model"
)

func TestTotals(t *testing.T) {
	testCases := []struct {
		name     string
		lines    []model.Line
		expected Aggregate
	}{
		{
			name:     "empty",
			lines:    nil,
			expected: Aggregate{},
		},
		{
			name: "normal_lines_only",
			lines: []model.Line{
				{Amount: 121, Tax: 21},
				{Amount: 121, Tax: 21},
			},
			expected: Aggregate{Total: 242, Tax: 42},
		},
		{
			name: "free_line_folds_into_discount",
			lines: []model.Line{
				{Amount: 121, Tax: 21},
				{Amount: 121, Tax: 21, IsFree: true},
			},
			expected: Aggregate{Total: 121, Tax: 21, Discount: 121},
		},
		{
			name: "complimentary_line_folds_into_discount",
			lines: []model.Line{
				{Amount: 121, Tax: 21, IsComplimentary: true},
			},
			expected: Aggregate{Discount: 121},
		},
		{
			name: "per_line_discount_on_normal_lines",
			lines: []model.Line{
				{Amount: 121, Tax: 21, Discount: 10},
				{Amount: 50, Tax: 0, IsFree: true, Discount: 5}, // discount field ignored on free lines
			},
			expected: Aggregate{Total: 121, Tax: 21, Discount: 60},
		},
		{
			name: "negative_amounts_cancel",
			lines: []model.Line{
				{Amount: 121, Tax: 21},
				{Amount: -121, Tax: -21},
			},
			expected: Aggregate{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Totals(tc.lines))
		})
	}
}

func TestTotalsOrderIndependent(t *testing.T) {
	lines := []model.Line{
		{Amount: 121, Tax: 21},
		{Amount: 50, IsFree: true},
		{Amount: 75, IsComplimentary: true},
		{Amount: 242, Tax: 42, Discount: 12},
	}
	reversed := []model.Line{lines[3], lines[2], lines[1], lines[0]}

	assert.Equal(t, Totals(lines), Totals(reversed))
}

func TestTotalsIdempotent(t *testing.T) {
	lines := []model.Line{
		{Amount: 121, Tax: 21},
		{Amount: 50, IsFree: true},
	}
	assert.Equal(t, Totals(lines), Totals(lines))
}
