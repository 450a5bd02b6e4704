package scoring

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// VarianceInput is one company's self-assessed and validated totals.
type VarianceInput struct {
	CompanyID      string             `json:"company_id"`
	Company        string             `json:"company"`
	Size           model.SizeCategory `json:"size"`
	SelfScore      float64            `json:"self_score"`
	ValidatedScore float64            `json:"validated_score"`
}

// VarianceRow is one eligible row of the precision-parity view.
type VarianceRow struct {
	CompanyID      string             `json:"company_id"`
	Company        string             `json:"company"`
	Size           model.SizeCategory `json:"size"`
	SelfScore      float64            `json:"self_score"`
	ValidatedScore float64            `json:"validated_score"`
	// Variance is signed: validated minus self.
	Variance float64 `json:"variance"`
	// Variance2 is the absolute variance used for eligibility and rank.
	Variance2 float64 `json:"variance2"`
	Rank      int     `json:"rank"`
}

// VarianceComparator computes the precision-parity view: companies whose
// validated score tracks their self-assessment within a threshold, ranked by
// smallest absolute variance. Ranks are memoized by company key so repeated
// computations over the same population keep stable numbers.
type VarianceComparator struct {
	threshold float64
	collator  *collate.Collator
	ranks     map[string]int
}

// NewVarianceComparator creates a comparator with the given eligibility
// threshold on |validated - self|.
func NewVarianceComparator(threshold float64) *VarianceComparator {
	return &VarianceComparator{
		threshold: threshold,
		collator:  collate.New(language.English, collate.IgnoreCase),
		ranks:     make(map[string]int),
	}
}

// Compute filters to eligible rows, ranks ascending by absolute variance
// with an alphabetical tie-break, and returns dense 1..k ranks.
func (c *VarianceComparator) Compute(inputs []VarianceInput) []VarianceRow {
	rows := make([]VarianceRow, 0, len(inputs))
	for _, in := range inputs {
		variance := in.ValidatedScore - in.SelfScore
		variance2 := math.Abs(variance)
		// Both-zero rows are placeholder submissions, not parity.
		if in.SelfScore == 0 && in.ValidatedScore == 0 {
			continue
		}
		if variance2 > c.threshold {
			continue
		}
		rows = append(rows, VarianceRow{
			CompanyID:      in.CompanyID,
			Company:        in.Company,
			Size:           in.Size,
			SelfScore:      Round1(in.SelfScore),
			ValidatedScore: Round1(in.ValidatedScore),
			Variance:       Round1(variance),
			Variance2:      Round1(variance2),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Variance2 != rows[j].Variance2 {
			return rows[i].Variance2 < rows[j].Variance2
		}
		return c.compareNames(rows[i].Company, rows[j].Company) < 0
	})

	for i := range rows {
		rows[i].Rank = i + 1
		c.ranks[varianceKey(rows[i])] = rows[i].Rank
	}

	return rows
}

// RankOf returns the memoized rank for a company key from the most recent
// computation, or 0 when the company was not eligible.
func (c *VarianceComparator) RankOf(companyID, companyName string) int {
	if companyID != "" {
		if r, ok := c.ranks[companyID]; ok {
			return r
		}
	}
	return c.ranks[strings.ToLower(strings.TrimSpace(companyName))]
}

func (c *VarianceComparator) compareNames(a, b string) int {
	if c.collator != nil {
		return c.collator.CompareString(a, b)
	}
	return strings.Compare(a, b)
}

// varianceKey prefers the stable company id, falling back to the lowercased
// name so rerenders without ids still map to the same rank.
func varianceKey(row VarianceRow) string {
	if row.CompanyID != "" {
		return row.CompanyID
	}
	return strings.ToLower(strings.TrimSpace(row.Company))
}
