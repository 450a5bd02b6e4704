package scoring

import (
	"sort"
	"strings"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// Percentile band labels. Bands are computed against the post-filter
// population, so the same company can sit in different bands on different
// filtered views. That is a documented product decision, not a bug.
const (
	BandTop10   = "Top 10%"
	BandTop25   = "Top 25%"
	BandTop50   = "Top 50%"
	BandBelow50 = "Below 50%"
)

// Filters narrows the ranked view before percentile bands are computed.
type Filters struct {
	// Category ranks by a single category's contribution instead of the
	// composite total; empty means composite.
	Category category.Code
	// Size keeps only companies in the given size category.
	Size model.SizeCategory
	// Companies is an explicit allow-list of company ids; empty means all.
	Companies []string
	// Band subsets rows by percentile band after ranking ("top10", "top25",
	// "top50", "below50"); empty means no band filter.
	Band string
	// RenumberAfterBandFilter reassigns contiguous 1..k ranks after the
	// band subset. Global-rank views leave it false and keep original
	// ranks; filtered-table views set it true.
	RenumberAfterBandFilter bool
}

// RankedRow is one row of a ranked composite view.
type RankedRow struct {
	CompanyID      string                    `json:"company_id"`
	Company        string                    `json:"company"`
	Size           model.SizeCategory        `json:"size"`
	CategoryScores map[category.Code]float64 `json:"category_scores"`
	TotalAvg       float64                   `json:"total_avg"`
	Rank           int                       `json:"rank"`
	Percentile     float64                   `json:"percentile"`
	Band           string                    `json:"band"`
	TopPerformer   bool                      `json:"top_performer"`
}

// Rank filters, sorts, and ranks company aggregates. Sort is descending by
// TotalAvg and stable: ties keep their prior relative order. Percentile
// bands are relative to the filtered population size. The award threshold
// marks top performers at TotalAvg >= threshold.
func Rank(aggregates map[string]*CompanyAggregate, filters Filters, awardThreshold float64) []RankedRow {
	allow := make(map[string]bool, len(filters.Companies))
	for _, id := range filters.Companies {
		allow[id] = true
	}

	// Deterministic pre-sort order: company name, then id. The stable sort
	// below preserves it among ties.
	ids := make([]string, 0, len(aggregates))
	for id := range aggregates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := aggregates[ids[i]], aggregates[ids[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CompanyID < b.CompanyID
	})

	rows := make([]RankedRow, 0, len(ids))
	for _, id := range ids {
		agg := aggregates[id]
		if filters.Size != "" && agg.Size != filters.Size {
			continue
		}
		if len(allow) > 0 && !allow[id] {
			continue
		}
		scores := make(map[category.Code]float64, len(agg.Contributions))
		for code, v := range agg.Contributions {
			scores[code] = v
		}
		rows = append(rows, RankedRow{
			CompanyID:      agg.CompanyID,
			Company:        agg.Name,
			Size:           agg.Size,
			CategoryScores: scores,
			TotalAvg:       agg.TotalAvg,
			TopPerformer:   agg.TotalAvg >= awardThreshold,
		})
	}

	sortKey := func(r RankedRow) float64 {
		if filters.Category != "" {
			return r.CategoryScores[filters.Category]
		}
		return r.TotalAvg
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKey(rows[i]) > sortKey(rows[j])
	})

	n := len(rows)
	for i := range rows {
		rows[i].Rank = i + 1
		pct := float64(i+1) / float64(n)
		rows[i].Percentile = pct
		rows[i].Band = percentileBand(pct)
	}

	if filters.Band != "" {
		rows = filterBand(rows, filters.Band)
		if filters.RenumberAfterBandFilter {
			for i := range rows {
				rows[i].Rank = i + 1
			}
		}
	}

	return rows
}

// percentileBand maps a rank percentile onto its display band. Boundary
// ties go to the tighter band.
func percentileBand(pct float64) string {
	switch {
	case pct <= 0.10:
		return BandTop10
	case pct <= 0.25:
		return BandTop25
	case pct <= 0.50:
		return BandTop50
	default:
		return BandBelow50
	}
}

// filterBand subsets rows by award band key (top10/top25/top50/below50).
func filterBand(rows []RankedRow, band string) []RankedRow {
	var want string
	switch strings.ToLower(strings.TrimSpace(band)) {
	case "top10":
		want = BandTop10
	case "top25":
		want = BandTop25
	case "top50":
		want = BandTop50
	case "below50":
		want = BandBelow50
	default:
		return rows
	}

	out := rows[:0:0]
	for _, r := range rows {
		if r.Band == want {
			out = append(out, r)
		}
	}
	return out
}
