package scoring

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// Fortification classification labels derived from the averaged
// micronutrient score.
const (
	LabelFullyFortified  = "Fully Fortified"
	LabelMostlyFortified = "Mostly Fortified"
	LabelPartlyFortified = "Partly Fortified"
	LabelPoorlyFortified = "Poorly Fortified"
	LabelNotFortified    = "Not Fortified"
)

// maxPermittedAflatoxin is the regulatory aflatoxin ceiling (ppb) against
// which measured values are expressed as a percentage.
const maxPermittedAflatoxin = 10.0

//go:embed vitamin_a_bands.yaml
var vitaminABandsYAML []byte

// complianceBand is one row of the externally supplied Vitamin A table.
// Max < 0 means unbounded.
type complianceBand struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points float64 `yaml:"points"`
}

type vitaminATable struct {
	Standard       []complianceBand `yaml:"standard"`
	PreservedFlour []complianceBand `yaml:"preserved_flour"`
}

var (
	vitaminAOnce sync.Once
	vitaminA     vitaminATable
)

func loadVitaminATable() vitaminATable {
	vitaminAOnce.Do(func() {
		// The table ships with the binary; a parse failure is a build
		// defect, not a runtime condition.
		if err := yaml.Unmarshal(vitaminABandsYAML, &vitaminA); err != nil {
			panic("scoring: parse vitamin A band table: " + err.Error())
		}
	})
	return vitaminA
}

// lookupBands returns the points for the first band containing the given
// compliance percentage, or 0 when none matches.
func lookupBands(bands []complianceBand, compliance float64) float64 {
	for _, b := range bands {
		if compliance >= b.Min && (b.Max < 0 || compliance <= b.Max) {
			return b.Points
		}
	}
	return 0
}

// standardPoints is the monotonic band used by Niacin, Iron, and Vitamin A
// in edible oil: no upper cutoff.
func standardPoints(compliance float64) float64 {
	switch {
	case compliance >= 100:
		return 30
	case compliance >= 80:
		return 25
	case compliance >= 51:
		return 15
	case compliance >= 31:
		return 10
	default:
		return 0
	}
}

// micronutrientPoints maps a (micronutrient, compliance, product type)
// triple onto its MFI point value. Unknown micronutrients score 0 rather
// than erroring.
func micronutrientPoints(name string, compliance float64, productType model.ProductType) float64 {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(lower, "vitamin a"):
		if productType == model.ProductEdibleOil {
			return standardPoints(compliance)
		}
		table := loadVitaminATable()
		if productType.IsFlour() {
			return lookupBands(table.PreservedFlour, compliance)
		}
		return lookupBands(table.Standard, compliance)
	case strings.Contains(lower, "niacin"):
		// Covers both naming variants seen upstream ("Niacin", "Niacin B3").
		return standardPoints(compliance)
	case strings.Contains(lower, "iron"):
		return standardPoints(compliance)
	default:
		return 0
	}
}

// aflatoxinPoints maps percent-of-maximum-permitted onto penalty-adjusted
// points. Thresholds are percentages: up to 100% of the ceiling keeps full
// points, beyond it points fall away in bands.
func aflatoxinPoints(percentOfMax float64) float64 {
	switch {
	case percentOfMax > 200:
		return 0
	case percentOfMax > 150:
		return 5
	case percentOfMax > 120:
		return 10
	case percentOfMax > 100:
		return 20
	default:
		return 30
	}
}

// fortificationLabel classifies an averaged micronutrient score.
func fortificationLabel(score float64) string {
	switch {
	case score >= 30:
		return LabelFullyFortified
	case score >= 25:
		return LabelMostlyFortified
	case score >= 15:
		return LabelPartlyFortified
	case score >= 10:
		return LabelPoorlyFortified
	default:
		return LabelNotFortified
	}
}
