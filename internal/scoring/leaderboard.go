package scoring

import (
	"sort"
	"strings"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
)

// LeaderRow is one merged tie group on a per-category leaderboard. Companies
// whose rounded scores are equal share a single row with their names joined
// by "/".
type LeaderRow struct {
	Names string  `json:"names"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// CategoryLeaders extracts the top-N merged tie groups per canonical
// category, ordered by the category's contribution descending. Tie merging
// on the rounded one-decimal value happens before truncation, so a three-way
// tie at the top yields one merged row at rank 1 and the next distinct value
// takes rank 2.
func CategoryLeaders(aggregates map[string]*CompanyAggregate, topN int) map[category.Code][]LeaderRow {
	out := make(map[category.Code][]LeaderRow, len(category.All))

	for _, code := range category.All {
		type entry struct {
			name  string
			score float64
		}
		var entries []entry
		for _, agg := range aggregates {
			score, ok := agg.Contributions[code]
			if !ok {
				continue
			}
			entries = append(entries, entry{name: agg.Name, score: Round1(score)})
		}

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].score != entries[j].score {
				return entries[i].score > entries[j].score
			}
			return entries[i].name < entries[j].name
		})

		var rows []LeaderRow
		for _, e := range entries {
			if n := len(rows); n > 0 && rows[n-1].Score == e.score {
				rows[n-1].Names += "/" + e.name
				continue
			}
			rows = append(rows, LeaderRow{Names: e.name, Score: e.score, Rank: len(rows) + 1})
		}

		if topN > 0 && len(rows) > topN {
			rows = rows[:topN]
		}
		out[code] = rows
	}

	return out
}

// LeaderNames splits a merged row back into individual company names.
func LeaderNames(row LeaderRow) []string {
	return strings.Split(row.Names, "/")
}
