// Package scoring implements the KMFI aggregation pipeline: per-company
// accumulation, composite ranking, category leaderboards, product-testing
// scores, and the variance and most-improved comparators.
package scoring

import (
	"go.uber.org/zap"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// CategoryScores holds the per-category accumulator buckets for one company.
// SAT (U) is tracked for the triangulation view only; the composite uses V
// and IEG.
type CategoryScores struct {
	SAT float64 `json:"sat"`
	V   float64 `json:"v"`
	IEG float64 `json:"ieg"`
}

// CompanyAggregate is the per-company result of one accumulation pass.
// Built fresh per request; never persisted.
type CompanyAggregate struct {
	CompanyID string             `json:"company_id"`
	Name      string             `json:"name"`
	Size      model.SizeCategory `json:"size"`

	// Categories holds raw per-category type buckets.
	Categories map[category.Code]*CategoryScores `json:"categories"`

	// Contributions holds the derived per-category contribution,
	// Round1((V+IEG)/2). Upstream V/IEG values arrive pre-scaled by the
	// category weight table, so TotalAvg is their plain sum.
	Contributions map[category.Code]float64 `json:"contributions"`

	// TotalAvg is the composite index, the sum of all contributions.
	TotalAvg float64 `json:"total_avg"`
}

// Accumulate groups assessment score records by company, resolves each raw
// category onto a canonical component, and derives contributions and
// composite totals. Inactive companies and unmappable categories are
// dropped, not errors.
func Accumulate(records []model.AssessmentScoreRecord) map[string]*CompanyAggregate {
	aggs := make(map[string]*CompanyAggregate)
	var dropped int

	for _, rec := range records {
		if !rec.Active || rec.CompanyID == "" {
			continue
		}
		code, ok := category.Resolve(rec.CategoryID)
		if !ok {
			dropped++
			continue
		}

		agg := aggs[rec.CompanyID]
		if agg == nil {
			agg = &CompanyAggregate{
				CompanyID:     rec.CompanyID,
				Name:          rec.CompanyName,
				Size:          rec.Size,
				Categories:    make(map[category.Code]*CategoryScores),
				Contributions: make(map[category.Code]float64),
			}
			aggs[rec.CompanyID] = agg
		}
		if agg.Name == "" {
			agg.Name = rec.CompanyName
		}
		if agg.Size == "" || agg.Size == model.SizeUnknown {
			if rec.Size != "" {
				agg.Size = rec.Size
			}
		}

		bucket := agg.Categories[code]
		if bucket == nil {
			bucket = &CategoryScores{}
			agg.Categories[code] = bucket
		}
		switch rec.Type {
		case model.TypeSAT:
			bucket.SAT += rec.Value
		case model.TypeIVC:
			bucket.V += rec.Value
		case model.TypeIEG:
			bucket.IEG += rec.Value
		}
	}

	for _, agg := range aggs {
		if agg.Size == "" {
			agg.Size = model.SizeUnknown
		}
		var total float64
		for code, bucket := range agg.Categories {
			contribution := Round1((bucket.V + bucket.IEG) / 2)
			agg.Contributions[code] = contribution
			total += contribution
		}
		agg.TotalAvg = Round1(total)
	}

	if dropped > 0 {
		zap.L().Info("scoring: dropped records with unmappable categories",
			zap.Int("dropped", dropped),
			zap.Int("total", len(records)),
		)
	}

	return aggs
}

// SATTotal returns the company's summed SAT (U) score across categories,
// for the triangulation and variance views.
func (a *CompanyAggregate) SATTotal() float64 {
	var total float64
	for _, bucket := range a.Categories {
		total += bucket.SAT
	}
	return Round1(total)
}

// IVCTotal returns the company's summed IVC (V) score across categories.
func (a *CompanyAggregate) IVCTotal() float64 {
	var total float64
	for _, bucket := range a.Categories {
		total += bucket.V
	}
	return Round1(total)
}
