// Package export writes ranked, variance, and improvement views as CSV and
// XLSX downloads for the admin dashboards.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/scoring"
)

// rankingColumns defines the ordered ranked-view CSV columns. The header
// row always comes first and matches the displayed table.
var rankingColumns = []string{
	"Rank",
	"Company",
	"Size",
	"PMS",
	"PCII",
	"PIM",
	"PE",
	"GLC",
	"Total",
	"Band",
	"Top Performer",
}

// WriteRankingsCSV writes ranked rows as CSV. Scores keep one decimal so a
// reparse reproduces the displayed values exactly.
func WriteRankingsCSV(w io.Writer, rows []scoring.RankedRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(rankingColumns); err != nil {
		return eris.Wrap(err, "export: write rankings header")
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Rank),
			r.Company,
			string(r.Size),
		}
		for _, code := range category.All {
			record = append(record, formatScore(r.CategoryScores[code]))
		}
		record = append(record,
			formatScore(r.TotalAvg),
			r.Band,
			strconv.FormatBool(r.TopPerformer),
		)
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write ranking row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush rankings")
}

var varianceColumns = []string{
	"Rank",
	"Company",
	"Size",
	"Self Score",
	"Validated Score",
	"Variance",
	"Abs Variance",
}

// WriteVarianceCSV writes the precision-parity view as CSV.
func WriteVarianceCSV(w io.Writer, rows []scoring.VarianceRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(varianceColumns); err != nil {
		return eris.Wrap(err, "export: write variance header")
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Rank),
			r.Company,
			string(r.Size),
			formatScore(r.SelfScore),
			formatScore(r.ValidatedScore),
			formatScore(r.Variance),
			formatScore(r.Variance2),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write variance row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush variance")
}

var improvementColumns = []string{
	"Company",
	"Baseline Total",
	"Current Total",
	"Delta",
	"Pct Change",
}

// WriteImprovementCSV writes the most-improved view as CSV.
func WriteImprovementCSV(w io.Writer, rows []scoring.ImprovementRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(improvementColumns); err != nil {
		return eris.Wrap(err, "export: write improvement header")
	}
	for _, r := range rows {
		record := []string{
			r.Company,
			strconv.FormatFloat(r.PrevTotal, 'f', 0, 64),
			strconv.FormatFloat(r.CurrentTotal, 'f', 0, 64),
			formatScore(r.Delta),
			formatScore(r.PctChange),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write improvement row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush improvement")
}

// formatScore renders a one-decimal score the way the tables display it.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
