package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/scoring"
)

// WriteRankingsXLSX writes ranked rows as a single-sheet XLSX workbook for
// the admin "download workbook" surface.
func WriteRankingsXLSX(w io.Writer, rows []scoring.RankedRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Rankings")
	if err != nil {
		return eris.Wrap(err, "export: add rankings sheet")
	}

	header := sheet.AddRow()
	for _, col := range rankingColumns {
		header.AddCell().Value = col
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().Value = r.Company
		row.AddCell().Value = string(r.Size)
		for _, code := range category.All {
			row.AddCell().SetFloatWithFormat(r.CategoryScores[code], "0.0")
		}
		row.AddCell().SetFloatWithFormat(r.TotalAvg, "0.0")
		row.AddCell().Value = r.Band
		row.AddCell().SetBool(r.TopPerformer)
	}

	return eris.Wrap(f.Write(w), "export: write rankings workbook")
}
