package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeImprovement(t *testing.T) {
	t.Parallel()

	rows := ComputeImprovement(
		[]TotalRow{
			{CompanyID: "c1", Company: "Alpha", Total: 78.4},
			{CompanyID: "c2", Company: "Beta", Total: 60.0},
			{CompanyID: "c3", Company: "Gamma", Total: 55.0},
		},
		[]TotalRow{
			{Company: "alpha ", Total: 70.2}, // joins despite case and padding
			{Company: "Beta", Total: 65.0},
		},
	)

	// Gamma has no baseline row and drops out.
	require.Len(t, rows, 2)

	// Sorted by delta descending: Alpha +8.2, Beta -5.0.
	assert.Equal(t, "Alpha", rows[0].Company)
	assert.InDelta(t, 70, rows[0].PrevTotal, 1e-9, "cycle totals display as whole numbers")
	assert.InDelta(t, 78, rows[0].CurrentTotal, 1e-9)
	assert.InDelta(t, 8.2, rows[0].Delta, 1e-9)
	// 8.2 / 70.2 * 100 = 11.68... -> 11.7.
	assert.InDelta(t, 11.7, rows[0].PctChange, 1e-9)

	assert.Equal(t, "Beta", rows[1].Company)
	assert.InDelta(t, -5.0, rows[1].Delta, 1e-9)
	assert.InDelta(t, -7.7, rows[1].PctChange, 1e-9)
}

func TestComputeImprovementPctChangeEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev float64
		cur  float64
		want float64
	}{
		{name: "both zero", prev: 0, cur: 0, want: 0},
		{name: "zero baseline", prev: 0, cur: 40, want: 100},
		{name: "negative baseline", prev: -10, cur: 0, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rows := ComputeImprovement(
				[]TotalRow{{Company: "Solo", Total: tt.cur}},
				[]TotalRow{{Company: "Solo", Total: tt.prev}},
			)
			require.Len(t, rows, 1)
			assert.InDelta(t, tt.want, rows[0].PctChange, 1e-9)
		})
	}
}

func TestComputeImprovementEmptyBaseline(t *testing.T) {
	t.Parallel()

	rows := ComputeImprovement(
		[]TotalRow{{Company: "Alpha", Total: 50}},
		nil,
	)
	assert.Empty(t, rows)
}
