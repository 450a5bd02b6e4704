package scoring

import (
	"math"

	"go.uber.org/zap"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// MicronutrientScore is the resolved compliance and MFI points for one lab
// result.
type MicronutrientScore struct {
	Name       string  `json:"name"`
	Compliance float64 `json:"compliance"`
	Points     float64 `json:"points"`
}

// ProductTestScore is the derived fortification score for one brand.
type ProductTestScore struct {
	CompanyID          string               `json:"company_id"`
	BrandID            string               `json:"brand_id"`
	BrandName          string               `json:"brand_name,omitempty"`
	ProductType        model.ProductType    `json:"product_type"`
	Micronutrients     []MicronutrientScore `json:"micronutrients"`
	MicronutrientScore float64              `json:"micronutrient_score"`
	FortificationLabel string               `json:"fortification_label"`

	// AflatoxinScore is set only for product types with an aflatoxin limit.
	AflatoxinScore *float64 `json:"aflatoxin_score,omitempty"`
	// OverallKMFIWeightedScore blends the micronutrient and aflatoxin
	// scores with 20%/10% weights. Maize flour only.
	OverallKMFIWeightedScore *float64 `json:"overall_kmfi_weighted_score,omitempty"`
}

// ScoreProductTest derives the fortification score for one brand's lab
// results. Per micronutrient, compliance = round(measured/expected x 100)
// mapped through the band tables; the brand score is the average of the
// resolved points. When exactly 3 micronutrients were scored, the average is
// divided by 3 again. This reproduces the historical scoring sheet and is
// kept intact deliberately; see DESIGN.md before changing it.
func ScoreProductTest(test model.ProductTestRecord) ProductTestScore {
	score := ProductTestScore{
		CompanyID:   test.CompanyID,
		BrandID:     test.BrandID,
		BrandName:   test.BrandName,
		ProductType: test.ProductType,
	}

	var sum float64
	for _, result := range test.Results {
		ms := MicronutrientScore{Name: result.Name}
		if result.Expected > 0 {
			ms.Compliance = math.Round(result.Measured / result.Expected * 100)
			ms.Points = micronutrientPoints(result.Name, ms.Compliance, test.ProductType)
		}
		if ms.Points == 0 && ms.Compliance >= 31 {
			zap.L().Debug("scoring: micronutrient scored zero points",
				zap.String("brand", test.BrandID),
				zap.String("micronutrient", result.Name),
				zap.Float64("compliance", ms.Compliance),
			)
		}
		score.Micronutrients = append(score.Micronutrients, ms)
		sum += ms.Points
	}

	if n := len(score.Micronutrients); n > 0 {
		avg := sum / float64(n)
		if n == 3 {
			avg /= 3
		}
		score.MicronutrientScore = Round1(avg)
	}
	score.FortificationLabel = fortificationLabel(score.MicronutrientScore)

	if test.Aflatoxin != nil {
		percentOfMax := *test.Aflatoxin / maxPermittedAflatoxin * 100
		afla := aflatoxinPoints(percentOfMax)
		score.AflatoxinScore = &afla

		if test.ProductType == model.ProductMaizeFlour {
			// Rescale each 0-30 score to a fraction, then weight 20%/10%.
			overall := Round1((score.MicronutrientScore/0.3)*0.2 + (afla/0.3)*0.1)
			score.OverallKMFIWeightedScore = &overall
		}
	}

	return score
}

// ScoreProductTests scores a batch of brand tests.
func ScoreProductTests(tests []model.ProductTestRecord) []ProductTestScore {
	out := make([]ProductTestScore, 0, len(tests))
	for _, t := range tests {
		out = append(out, ScoreProductTest(t))
	}
	return out
}
