// Package model defines the entities exchanged between the store, the
// scoring pipeline, and the admin API.
package model

import (
	"strings"
	"time"
)

// AssessmentType identifies which instrument produced a score record.
type AssessmentType string

const (
	// TypeSAT is the company self-assessment score.
	TypeSAT AssessmentType = "SAT"
	// TypeIVC is the validator-corrected score.
	TypeIVC AssessmentType = "IVC"
	// TypeIEG is the independent external assessment score.
	TypeIEG AssessmentType = "IEG"
)

// SizeCategory buckets companies by size for filtered views.
type SizeCategory string

const (
	SizeLarge   SizeCategory = "Large"
	SizeMedium  SizeCategory = "Medium"
	SizeSmall   SizeCategory = "Small"
	SizeUnknown SizeCategory = "Unknown"
)

// ParseSize maps a free-form size label onto a SizeCategory.
func ParseSize(s string) SizeCategory {
	switch {
	case strings.EqualFold(s, "large"):
		return SizeLarge
	case strings.EqualFold(s, "medium"):
		return SizeMedium
	case strings.EqualFold(s, "small"):
		return SizeSmall
	default:
		return SizeUnknown
	}
}

// Cycle is one assessment submission cycle.
type Cycle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Company is a participating company.
type Company struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Size   SizeCategory `json:"size"`
	Active bool         `json:"active"`
}

// AssessmentScoreRecord is one scored (company, cycle, category, type)
// tuple. Records are immutable per cycle; the store upserts on the tuple key.
type AssessmentScoreRecord struct {
	CompanyID   string         `json:"company_id"`
	CycleID     string         `json:"cycle_id"`
	CategoryID  string         `json:"category_id"`
	Type        AssessmentType `json:"type"`
	Value       float64        `json:"value"`
	CompanyName string         `json:"company_name,omitempty"`
	Size        SizeCategory   `json:"size,omitempty"`
	Active      bool           `json:"active"`
}

// MicronutrientResult is one lab result within a product test.
type MicronutrientResult struct {
	Name     string  `json:"name"`
	Measured float64 `json:"measured"`
	Expected float64 `json:"expected"`
}

// ProductTestRecord holds the micronutrient lab results for one brand.
type ProductTestRecord struct {
	CompanyID   string                `json:"company_id"`
	BrandID     string                `json:"brand_id"`
	BrandName   string                `json:"brand_name,omitempty"`
	CycleID     string                `json:"cycle_id"`
	ProductType ProductType           `json:"product_type"`
	Results     []MicronutrientResult `json:"results"`
	// Aflatoxin is the measured aflatoxin level; nil when the product type
	// does not require aflatoxin testing.
	Aflatoxin *float64 `json:"aflatoxin,omitempty"`
}

// ProductType identifies a fortified product vehicle.
type ProductType string

const (
	ProductWheatFlour ProductType = "Wheat Flour"
	ProductMaizeFlour ProductType = "Maize Flour"
	ProductEdibleOil  ProductType = "Edible Oil"
)

// IsFlour reports whether the product type is one of the two flour vehicles
// that keep the preserved high-compliance Vitamin A bands.
func (p ProductType) IsFlour() bool {
	return p == ProductWheatFlour || p == ProductMaizeFlour
}
