package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
)

func leaderAgg(id, name string, pms float64) *CompanyAggregate {
	return &CompanyAggregate{
		CompanyID:     id,
		Name:          name,
		Contributions: map[category.Code]float64{category.PMS: pms},
	}
}

func TestCategoryLeadersTopN(t *testing.T) {
	t.Parallel()

	leaders := CategoryLeaders(aggsByID(
		leaderAgg("c1", "Alpha", 24.0),
		leaderAgg("c2", "Beta", 22.0),
		leaderAgg("c3", "Gamma", 20.0),
		leaderAgg("c4", "Delta", 18.0),
	), 3)

	rows := leaders[category.PMS]
	require.Len(t, rows, 3)
	assert.Equal(t, LeaderRow{Names: "Alpha", Score: 24.0, Rank: 1}, rows[0])
	assert.Equal(t, LeaderRow{Names: "Beta", Score: 22.0, Rank: 2}, rows[1])
	assert.Equal(t, LeaderRow{Names: "Gamma", Score: 20.0, Rank: 3}, rows[2])
}

func TestCategoryLeadersTieMerge(t *testing.T) {
	t.Parallel()

	// A three-way tie merges into one row before truncation, so the next
	// distinct score still makes the board at rank 2.
	leaders := CategoryLeaders(aggsByID(
		leaderAgg("c1", "Alpha", 24.0),
		leaderAgg("c2", "Beta", 24.0),
		leaderAgg("c3", "Gamma", 24.0),
		leaderAgg("c4", "Delta", 20.0),
		leaderAgg("c5", "Epsilon", 18.0),
	), 3)

	rows := leaders[category.PMS]
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha/Beta/Gamma", rows[0].Names)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Delta", rows[1].Names)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Epsilon", rows[2].Names)

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, LeaderNames(rows[0]))
}

func TestCategoryLeadersTieOnRoundedValue(t *testing.T) {
	t.Parallel()

	// 23.97 and 24.04 both round to 24.0 and merge.
	leaders := CategoryLeaders(aggsByID(
		leaderAgg("c1", "Alpha", 23.97),
		leaderAgg("c2", "Beta", 24.04),
	), 3)

	rows := leaders[category.PMS]
	require.Len(t, rows, 1)
	assert.Equal(t, "Alpha/Beta", rows[0].Names)
	assert.InDelta(t, 24.0, rows[0].Score, 1e-9)
}

func TestCategoryLeadersMissingCategory(t *testing.T) {
	t.Parallel()

	// Companies without a contribution in a category stay off that board.
	leaders := CategoryLeaders(aggsByID(leaderAgg("c1", "Alpha", 24.0)), 3)

	assert.Len(t, leaders[category.PMS], 1)
	assert.Empty(t, leaders[category.GLC])
}
