package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

func TestStandardPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		compliance float64
		want       float64
	}{
		{0, 0},
		{30, 0},
		{31, 10},
		{50, 10},
		{51, 15},
		{79, 15},
		{80, 25},
		{99, 25},
		{100, 30},
		{250, 30}, // no upper cutoff
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, standardPoints(tt.compliance), 1e-9,
			"compliance %.0f", tt.compliance)
	}
}

func TestVitaminAFlourBands(t *testing.T) {
	t.Parallel()

	// The flour table keeps the preserved high-compliance bands: compliance
	// up to 240 still earns full points, then decays.
	tests := []struct {
		compliance float64
		want       float64
	}{
		{30, 0},
		{31, 10},
		{51, 15},
		{80, 25},
		{100, 30},
		{240, 30},
		{241, 25},
		{330, 25},
		{331, 15},
		{450, 15},
		{451, 10},
		{900, 10}, // top band is unbounded
	}
	for _, tt := range tests {
		got := micronutrientPoints("Vitamin A", tt.compliance, model.ProductWheatFlour)
		assert.InDelta(t, tt.want, got, 1e-9, "compliance %.0f", tt.compliance)
	}
}

func TestVitaminAStandardTableIsNonMonotonic(t *testing.T) {
	t.Parallel()

	// Outside flour the standard table penalizes over-fortification.
	table := loadVitaminATable()
	tests := []struct {
		compliance float64
		want       float64
	}{
		{100, 30},
		{140, 30},
		{141, 25},
		{180, 25},
		{181, 15},
		{240, 15},
		{241, 10},
		{300, 10},
		{301, 0}, // beyond the last band
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, lookupBands(table.Standard, tt.compliance), 1e-9,
			"compliance %.0f", tt.compliance)
	}
}

func TestVitaminAInOilUsesStandardBand(t *testing.T) {
	t.Parallel()

	// Edible oil keeps the monotonic band: high compliance never decays.
	assert.InDelta(t, 30, micronutrientPoints("Vitamin A", 300, model.ProductEdibleOil), 1e-9)
}

func TestMicronutrientPointsNameMatching(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 30, micronutrientPoints("Niacin B3", 100, model.ProductWheatFlour), 1e-9)
	assert.InDelta(t, 30, micronutrientPoints("Iron", 100, model.ProductWheatFlour), 1e-9)
	assert.InDelta(t, 30, micronutrientPoints("  vitamin a  ", 100, model.ProductEdibleOil), 1e-9)
	assert.InDelta(t, 0, micronutrientPoints("Zinc", 100, model.ProductWheatFlour), 1e-9,
		"unknown micronutrients score zero, not error")
}

func TestAflatoxinPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percentOfMax float64
		want         float64
	}{
		{0, 30},
		{100, 30},  // exactly at the ceiling keeps full points
		{100.1, 20},
		{120, 20},
		{121, 10},
		{150, 10},
		{151, 5},
		{200, 5},
		{201, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, aflatoxinPoints(tt.percentOfMax), 1e-9,
			"percent %.1f", tt.percentOfMax)
	}
}

func TestFortificationLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{30, LabelFullyFortified},
		{29.9, LabelMostlyFortified},
		{25, LabelMostlyFortified},
		{24.9, LabelPartlyFortified},
		{15, LabelPartlyFortified},
		{14.9, LabelPoorlyFortified},
		{10, LabelPoorlyFortified},
		{9.9, LabelNotFortified},
		{0, LabelNotFortified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fortificationLabel(tt.score), "score %.1f", tt.score)
	}
}

func TestScoreProductTestTwoMicronutrients(t *testing.T) {
	t.Parallel()

	score := ScoreProductTest(model.ProductTestRecord{
		CompanyID:   "c1",
		BrandID:     "b1",
		ProductType: model.ProductWheatFlour,
		Results: []model.MicronutrientResult{
			{Name: "Iron", Measured: 30, Expected: 30},    // 100% -> 30
			{Name: "Niacin", Measured: 24, Expected: 30},  // 80% -> 25
		},
	})

	require.Len(t, score.Micronutrients, 2)
	assert.InDelta(t, 100, score.Micronutrients[0].Compliance, 1e-9)
	assert.InDelta(t, 30, score.Micronutrients[0].Points, 1e-9)
	assert.InDelta(t, 80, score.Micronutrients[1].Compliance, 1e-9)
	assert.InDelta(t, 25, score.Micronutrients[1].Points, 1e-9)

	// Average of 30 and 25 = 27.5; no division with two micronutrients.
	assert.InDelta(t, 27.5, score.MicronutrientScore, 1e-9)
	assert.Equal(t, LabelMostlyFortified, score.FortificationLabel)
	assert.Nil(t, score.AflatoxinScore)
	assert.Nil(t, score.OverallKMFIWeightedScore)
}

func TestScoreProductTestThreeMicronutrientDivision(t *testing.T) {
	t.Parallel()

	// With exactly three micronutrients the average is divided by 3 again.
	// This reproduces the historical scoring sheet.
	score := ScoreProductTest(model.ProductTestRecord{
		CompanyID:   "c1",
		BrandID:     "b1",
		ProductType: model.ProductWheatFlour,
		Results: []model.MicronutrientResult{
			{Name: "Iron", Measured: 30, Expected: 30},
			{Name: "Niacin", Measured: 30, Expected: 30},
			{Name: "Vitamin A", Measured: 30, Expected: 30},
		},
	})

	// All three score 30; avg 30, then / 3 = 10.
	assert.InDelta(t, 10, score.MicronutrientScore, 1e-9)
	assert.Equal(t, LabelPoorlyFortified, score.FortificationLabel)
}

func TestScoreProductTestZeroExpected(t *testing.T) {
	t.Parallel()

	// Expected 0 means compliance is undefined; the result scores 0 instead
	// of dividing by zero.
	score := ScoreProductTest(model.ProductTestRecord{
		CompanyID:   "c1",
		BrandID:     "b1",
		ProductType: model.ProductEdibleOil,
		Results: []model.MicronutrientResult{
			{Name: "Vitamin A", Measured: 12, Expected: 0},
		},
	})

	require.Len(t, score.Micronutrients, 1)
	assert.InDelta(t, 0, score.Micronutrients[0].Compliance, 1e-9)
	assert.InDelta(t, 0, score.Micronutrients[0].Points, 1e-9)
	assert.Equal(t, LabelNotFortified, score.FortificationLabel)
}

func TestScoreProductTestComplianceRounding(t *testing.T) {
	t.Parallel()

	// 29/30 = 96.67% rounds to 97 before the band lookup.
	score := ScoreProductTest(model.ProductTestRecord{
		ProductType: model.ProductWheatFlour,
		Results: []model.MicronutrientResult{
			{Name: "Iron", Measured: 29, Expected: 30},
		},
	})

	assert.InDelta(t, 97, score.Micronutrients[0].Compliance, 1e-9)
	assert.InDelta(t, 25, score.Micronutrients[0].Points, 1e-9)
}

func TestScoreProductTestMaizeOverall(t *testing.T) {
	t.Parallel()

	afla := 5.0 // 50% of the 10 ppb ceiling -> full 30 points
	score := ScoreProductTest(model.ProductTestRecord{
		CompanyID:   "c1",
		BrandID:     "b1",
		ProductType: model.ProductMaizeFlour,
		Results: []model.MicronutrientResult{
			{Name: "Iron", Measured: 30, Expected: 30},   // 30
			{Name: "Niacin", Measured: 24, Expected: 30}, // 25
		},
		Aflatoxin: &afla,
	})

	require.NotNil(t, score.AflatoxinScore)
	assert.InDelta(t, 30, *score.AflatoxinScore, 1e-9)

	// Micronutrient 27.5 and aflatoxin 30, each rescaled from the 0-30
	// range then weighted 20%/10%:
	// (27.5/0.3)*0.2 + (30/0.3)*0.1 = 18.333 + 10 = 28.3.
	require.NotNil(t, score.OverallKMFIWeightedScore)
	assert.InDelta(t, 28.3, *score.OverallKMFIWeightedScore, 1e-9)
}

func TestScoreProductTestAflatoxinOnWheatHasNoOverall(t *testing.T) {
	t.Parallel()

	afla := 12.0 // 120% of ceiling -> 20 points
	score := ScoreProductTest(model.ProductTestRecord{
		ProductType: model.ProductWheatFlour,
		Results: []model.MicronutrientResult{
			{Name: "Iron", Measured: 30, Expected: 30},
		},
		Aflatoxin: &afla,
	})

	require.NotNil(t, score.AflatoxinScore)
	assert.InDelta(t, 20, *score.AflatoxinScore, 1e-9)
	assert.Nil(t, score.OverallKMFIWeightedScore, "the blended score is maize flour only")
}

func TestScoreProductTestsBatch(t *testing.T) {
	t.Parallel()

	scores := ScoreProductTests([]model.ProductTestRecord{
		{CompanyID: "c1", BrandID: "b1", ProductType: model.ProductEdibleOil},
		{CompanyID: "c2", BrandID: "b2", ProductType: model.ProductWheatFlour},
	})
	require.Len(t, scores, 2)
	assert.Equal(t, "b1", scores[0].BrandID)
	assert.Equal(t, "b2", scores[1].BrandID)
}
