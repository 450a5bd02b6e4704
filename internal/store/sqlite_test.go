package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/config"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteCompaniesRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	companies := []model.Company{
		{ID: "c1", Name: "Beta Foods", Size: model.SizeMedium, Active: true},
		{ID: "c2", Name: "Acme Mills", Size: model.SizeLarge, Active: false},
	}
	require.NoError(t, st.UpsertCompanies(ctx, companies))

	got, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Listed in name order.
	assert.Equal(t, "Acme Mills", got[0].Name)
	assert.Equal(t, model.SizeLarge, got[0].Size)
	assert.False(t, got[0].Active)
	assert.Equal(t, "Beta Foods", got[1].Name)

	// Re-upsert overwrites in place.
	companies[0].Name = "Beta Foods International"
	require.NoError(t, st.UpsertCompanies(ctx, companies[:1]))

	got, err = st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Beta Foods International", got[1].Name)
}

func TestSQLiteCyclesRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertCycle(ctx, model.Cycle{
		ID:       "2024-r1",
		Name:     "2024 Round 1",
		StartsAt: start,
		EndsAt:   start.AddDate(0, 6, 0),
		Active:   true,
	}))

	cycles, err := st.ListCycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "2024-r1", cycles[0].ID)
	assert.True(t, cycles[0].Active)
	assert.True(t, cycles[0].StartsAt.Equal(start))
}

func TestSQLiteAssessmentScores(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertCompanies(ctx, []model.Company{
		{ID: "c1", Name: "Acme Mills", Size: model.SizeLarge, Active: true},
	}))

	records := []model.AssessmentScoreRecord{
		{CompanyID: "c1", CycleID: "2024-r1", CategoryID: "PMS", Type: model.TypeIVC, Value: 12.5},
		{CompanyID: "c1", CycleID: "2024-r1", CategoryID: "PMS", Type: model.TypeIEG, Value: 13.0},
		{CompanyID: "c1", CycleID: "2023-r2", CategoryID: "PMS", Type: model.TypeIVC, Value: 9.0},
		{CompanyID: "c2", CycleID: "2024-r1", CategoryID: "GLC", Type: model.TypeIVC, Value: 20.0},
	}
	require.NoError(t, st.UpsertAssessmentScores(ctx, records))

	// Listing filters by cycle and type, and joins company metadata.
	got, err := st.ListAssessmentScores(ctx, "2024-r1", model.TypeIVC)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byCompany := map[string]model.AssessmentScoreRecord{}
	for _, r := range got {
		byCompany[r.CompanyID] = r
	}
	require.Contains(t, byCompany, "c1")
	assert.Equal(t, "Acme Mills", byCompany["c1"].CompanyName)
	assert.Equal(t, model.SizeLarge, byCompany["c1"].Size)
	assert.True(t, byCompany["c1"].Active)

	// c2 has no companies row; the left join leaves it inactive and unnamed.
	require.Contains(t, byCompany, "c2")
	assert.Equal(t, "", byCompany["c2"].CompanyName)
	assert.False(t, byCompany["c2"].Active)

	// Re-submitting the same tuple overwrites the value.
	records[0].Value = 14.0
	require.NoError(t, st.UpsertAssessmentScores(ctx, records[:1]))

	got, err = st.ListAssessmentScores(ctx, "2024-r1", model.TypeIVC)
	require.NoError(t, err)
	for _, r := range got {
		if r.CompanyID == "c1" {
			assert.InDelta(t, 14.0, r.Value, 1e-9)
		}
	}
}

func TestSQLiteProductTests(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	afla := 7.5
	tests := []model.ProductTestRecord{
		{
			CompanyID:   "c1",
			BrandID:     "b1",
			BrandName:   "Golden Flour",
			CycleID:     "2024-r1",
			ProductType: model.ProductMaizeFlour,
			Results: []model.MicronutrientResult{
				{Name: "Iron", Measured: 28, Expected: 30},
				{Name: "Vitamin A", Measured: 1.2, Expected: 1.0},
			},
			Aflatoxin: &afla,
		},
		{
			CompanyID:   "c2",
			BrandID:     "b2",
			CycleID:     "2024-r1",
			ProductType: model.ProductEdibleOil,
			Results:     []model.MicronutrientResult{{Name: "Vitamin A", Measured: 10, Expected: 12}},
		},
	}
	require.NoError(t, st.UpsertProductTests(ctx, tests))

	got, err := st.ListProductTests(ctx, "2024-r1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byBrand := map[string]model.ProductTestRecord{}
	for _, pt := range got {
		byBrand[pt.BrandID] = pt
	}
	require.Contains(t, byBrand, "b1")
	assert.Equal(t, model.ProductMaizeFlour, byBrand["b1"].ProductType)
	require.Len(t, byBrand["b1"].Results, 2)
	require.NotNil(t, byBrand["b1"].Aflatoxin)
	assert.InDelta(t, 7.5, *byBrand["b1"].Aflatoxin, 1e-9)

	// Oil carries no aflatoxin value and stays nil through the round trip.
	require.Contains(t, byBrand, "b2")
	assert.Nil(t, byBrand["b2"].Aflatoxin)

	// Other cycles stay out of the listing.
	got, err = st.ListProductTests(ctx, "2023-r2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteListEmpty(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	companies, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)

	scores, err := st.ListAssessmentScores(ctx, "none", model.TypeSAT)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestNewStoreUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.StoreConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
