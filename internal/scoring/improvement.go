package scoring

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// TotalRow is one company's composite total within a single cycle, the
// input to the most-improved comparison.
type TotalRow struct {
	CompanyID string  `json:"company_id"`
	Company   string  `json:"company"`
	Total     float64 `json:"total"`
}

// ImprovementRow is one row of the most-improved view.
type ImprovementRow struct {
	Company      string  `json:"company"`
	PrevTotal    float64 `json:"prev_total"`
	CurrentTotal float64 `json:"current_total"`
	Delta        float64 `json:"delta"`
	PctChange    float64 `json:"pct_change"`
}

// ComputeImprovement joins current-cycle totals against a baseline cycle by
// lowercase-trimmed company name and sorts by delta descending. Companies
// absent from the baseline (including renames) are dropped from the view;
// misses are counted and logged once. Cycles carry no stable shared company
// id, hence the name join.
func ComputeImprovement(current, baseline []TotalRow) []ImprovementRow {
	prev := make(map[string]TotalRow, len(baseline))
	for _, row := range baseline {
		prev[nameKey(row.Company)] = row
	}

	var rows []ImprovementRow
	var misses int
	for _, cur := range current {
		base, ok := prev[nameKey(cur.Company)]
		if !ok {
			misses++
			continue
		}
		delta := cur.Total - base.Total
		rows = append(rows, ImprovementRow{
			Company:      cur.Company,
			PrevTotal:    RoundWhole(base.Total),
			CurrentTotal: RoundWhole(cur.Total),
			Delta:        Round1(delta),
			PctChange:    Round1(pctChange(base.Total, cur.Total, delta)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Delta > rows[j].Delta
	})

	if misses > 0 {
		zap.L().Info("scoring: companies missing from baseline cycle",
			zap.Int("missing", misses),
			zap.Int("current", len(current)),
		)
	}

	return rows
}

func pctChange(prev, cur, delta float64) float64 {
	switch {
	case prev == 0 && cur == 0:
		return 0
	case prev == 0:
		return 100
	default:
		return delta / math.Abs(prev) * 100
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
