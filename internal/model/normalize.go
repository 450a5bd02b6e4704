package model

import (
	"strconv"
	"strings"
)

// Upstream documents arrive with inconsistent field names depending on which
// subsystem wrote them. Each entity gets exactly one adapter with an explicit
// field-priority list, applied once at the fetch boundary; nothing downstream
// looks at raw documents.

// RawRecord is a decoded upstream document.
type RawRecord map[string]any

var (
	companyIDFields   = []string{"company_id", "companyId", "company"}
	companyNameFields = []string{"company_name", "companyName", "name"}
	activeFields      = []string{"active", "is_active", "isActive", "company_active"}
	sizeFields        = []string{"size", "size_category", "company_size", "tier_category"}
	categoryFields    = []string{"category_id", "categoryId", "category", "category_name"}
	valueFields       = []string{"value", "score", "points", "total"}
	cycleFields       = []string{"cycle_id", "cycleId", "assessment_cycle"}
)

// NormalizeAssessmentRecord maps a raw upstream score document onto an
// AssessmentScoreRecord. Malformed numeric values coerce to 0 rather than
// propagating NaN through the accumulators.
func NormalizeAssessmentRecord(raw RawRecord, typ AssessmentType) AssessmentScoreRecord {
	rec := AssessmentScoreRecord{
		CompanyID:   firstString(raw, companyIDFields),
		CycleID:     firstString(raw, cycleFields),
		CategoryID:  firstString(raw, categoryFields),
		Type:        typ,
		Value:       firstNumber(raw, valueFields),
		CompanyName: firstString(raw, companyNameFields),
		Active:      firstBool(raw, activeFields),
	}
	rec.Size = ParseSize(firstString(raw, sizeFields))

	// Nested company document takes over whatever the flat fields missed.
	if nested, ok := raw["company"].(map[string]any); ok {
		if rec.CompanyID == "" {
			rec.CompanyID = firstString(nested, []string{"id", "company_id"})
		}
		if rec.CompanyName == "" {
			rec.CompanyName = firstString(nested, []string{"name", "company_name"})
		}
		if !rec.Active {
			rec.Active = firstBool(nested, activeFields)
		}
		if rec.Size == SizeUnknown {
			rec.Size = ParseSize(firstString(nested, sizeFields))
		}
	}
	return rec
}

// NormalizeCompany maps a raw upstream company document onto a Company.
func NormalizeCompany(raw RawRecord) Company {
	c := Company{
		ID:     firstString(raw, []string{"id", "company_id"}),
		Name:   firstString(raw, companyNameFields),
		Active: firstBool(raw, activeFields),
	}
	c.Size = ParseSize(firstString(raw, sizeFields))
	return c
}

// NormalizeProductTest maps a raw upstream product-test document onto a
// ProductTestRecord.
func NormalizeProductTest(raw RawRecord) ProductTestRecord {
	rec := ProductTestRecord{
		CompanyID:   firstString(raw, companyIDFields),
		BrandID:     firstString(raw, []string{"brand_id", "brandId", "brand"}),
		BrandName:   firstString(raw, []string{"brand_name", "brandName"}),
		CycleID:     firstString(raw, cycleFields),
		ProductType: ProductType(firstString(raw, []string{"product_type", "productType", "food_vehicle"})),
	}

	if v, ok := lookupNumber(raw, []string{"aflatoxin", "aflatoxin_value", "aflatoxinValue"}); ok {
		rec.Aflatoxin = &v
	}

	results, ok := raw["results"].([]any)
	if !ok {
		results, _ = raw["micronutrients"].([]any)
	}
	for _, r := range results {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		rec.Results = append(rec.Results, MicronutrientResult{
			Name:     firstString(m, []string{"name", "micronutrient", "micronutrient_name"}),
			Measured: firstNumber(m, []string{"measured", "measured_value", "value"}),
			Expected: firstNumber(m, []string{"expected", "expected_value", "target"}),
		})
	}
	return rec
}

// firstString returns the first non-empty string among the given keys.
func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// firstNumber returns the first coercible numeric value among the given
// keys, or 0 when none parses.
func firstNumber(raw map[string]any, keys []string) float64 {
	v, _ := lookupNumber(raw, keys)
	return v
}

func lookupNumber(raw map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstBool returns the first truthy flag among the given keys. String
// forms ("true", "1", "yes") count as true.
func firstBool(raw map[string]any, keys []string) bool {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			s := strings.ToLower(strings.TrimSpace(b))
			return s == "true" || s == "1" || s == "yes"
		case float64:
			return b != 0
		case int:
			return b != 0
		}
	}
	return false
}
