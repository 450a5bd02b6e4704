package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

func rec(company, cat string, typ model.AssessmentType, value float64) model.AssessmentScoreRecord {
	return model.AssessmentScoreRecord{
		CompanyID:   company,
		CycleID:     "cycle-1",
		CategoryID:  cat,
		Type:        typ,
		Value:       value,
		CompanyName: "Company " + company,
		Size:        model.SizeMedium,
		Active:      true,
	}
}

func TestAccumulateContribution(t *testing.T) {
	t.Parallel()

	aggs := Accumulate([]model.AssessmentScoreRecord{
		rec("c1", "PMS", model.TypeIVC, 12.0),
		rec("c1", "PMS", model.TypeIEG, 13.5),
		rec("c1", "GLC", model.TypeIVC, 20.0),
		rec("c1", "GLC", model.TypeIEG, 22.0),
		rec("c1", "PMS", model.TypeSAT, 14.0),
	})

	require.Len(t, aggs, 1)
	agg := aggs["c1"]
	require.NotNil(t, agg)

	// PMS: (12.0 + 13.5) / 2 = 12.75 -> 12.8 after rounding.
	assert.InDelta(t, 12.8, agg.Contributions[category.PMS], 1e-9)
	// GLC: (20.0 + 22.0) / 2 = 21.0.
	assert.InDelta(t, 21.0, agg.Contributions[category.GLC], 1e-9)
	// Total is the sum of contributions, not their average.
	assert.InDelta(t, 33.8, agg.TotalAvg, 1e-9)

	// SAT feeds the triangulation bucket only.
	assert.InDelta(t, 14.0, agg.Categories[category.PMS].SAT, 1e-9)
	assert.InDelta(t, 14.0, agg.SATTotal(), 1e-9)
	assert.InDelta(t, 32.0, agg.IVCTotal(), 1e-9)
}

func TestAccumulateMissingLeg(t *testing.T) {
	t.Parallel()

	// A category with only an IVC value still contributes half of it; the
	// missing IEG leg counts as zero.
	aggs := Accumulate([]model.AssessmentScoreRecord{
		rec("c1", "PE", model.TypeIVC, 9.0),
	})

	require.Len(t, aggs, 1)
	assert.InDelta(t, 4.5, aggs["c1"].Contributions[category.PE], 1e-9)
	assert.InDelta(t, 4.5, aggs["c1"].TotalAvg, 1e-9)
}

func TestAccumulateDuplicateRecordsSum(t *testing.T) {
	t.Parallel()

	// Two IVC records for the same (company, category) sum within the bucket.
	aggs := Accumulate([]model.AssessmentScoreRecord{
		rec("c1", "PIM", model.TypeIVC, 5.0),
		rec("c1", "PIM", model.TypeIVC, 3.0),
		rec("c1", "PIM", model.TypeIEG, 8.0),
	})

	require.Len(t, aggs, 1)
	assert.InDelta(t, 8.0, aggs["c1"].Categories[category.PIM].V, 1e-9)
	assert.InDelta(t, 8.0, aggs["c1"].Contributions[category.PIM], 1e-9)
}

func TestAccumulateSkipsInactiveAndAnonymous(t *testing.T) {
	t.Parallel()

	inactive := rec("c1", "PMS", model.TypeIVC, 10)
	inactive.Active = false
	anonymous := rec("", "PMS", model.TypeIVC, 10)
	anonymous.Active = true

	aggs := Accumulate([]model.AssessmentScoreRecord{
		inactive,
		anonymous,
		rec("c2", "PMS", model.TypeIVC, 10),
	})

	require.Len(t, aggs, 1)
	assert.Contains(t, aggs, "c2")
}

func TestAccumulateDropsUnmappableCategories(t *testing.T) {
	t.Parallel()

	aggs := Accumulate([]model.AssessmentScoreRecord{
		rec("c1", "Finance & Accounts", model.TypeIVC, 10),
		rec("c1", "PMS", model.TypeIVC, 10),
	})

	require.Len(t, aggs, 1)
	agg := aggs["c1"]
	assert.Len(t, agg.Categories, 1)
	assert.Contains(t, agg.Categories, category.PMS)
}

func TestAccumulateBackfillsNameAndSize(t *testing.T) {
	t.Parallel()

	first := rec("c1", "PMS", model.TypeIVC, 10)
	first.CompanyName = ""
	first.Size = model.SizeUnknown
	second := rec("c1", "GLC", model.TypeIVC, 10)
	second.CompanyName = "Acme Mills"
	second.Size = model.SizeLarge

	aggs := Accumulate([]model.AssessmentScoreRecord{first, second})

	require.Len(t, aggs, 1)
	assert.Equal(t, "Acme Mills", aggs["c1"].Name)
	assert.Equal(t, model.SizeLarge, aggs["c1"].Size)
}

func TestAccumulateEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Accumulate(nil))
}
