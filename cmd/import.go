package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Load companies, score records, or product tests from a CSV file",
	Long: `Reads a CSV file and upserts its rows into the store. The first row must
be a header; column names follow the same aliases the fetch layer accepts
(company_id/companyId/company, value/score/points, and so on).

Kinds:
  companies      one company per row
  scores         one (company, cycle, category) score per row; --type picks
                 the instrument (SAT, IVC, IEG)
  product-tests  one micronutrient result per row, grouped by
                 (company_id, brand_id, cycle_id)`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.String("kind", "scores", "what the file contains: companies, scores, or product-tests")
	f.String("type", "", "assessment type for --kind scores: SAT, IVC, or IEG")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kind, _ := cmd.Flags().GetString("kind")
	typStr, _ := cmd.Flags().GetString("type")

	f, err := os.Open(args[0])
	if err != nil {
		return eris.Wrap(err, "import: open file")
	}
	defer f.Close()

	raws, err := readCSVRecords(f)
	if err != nil {
		return eris.Wrap(err, "import: parse csv")
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "import: open store")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "import: migrate")
	}

	batchID := uuid.NewString()
	log := zap.L().With(
		zap.String("command", "import"),
		zap.String("batch_id", batchID),
		zap.String("kind", kind),
		zap.String("file", args[0]),
	)

	switch kind {
	case "companies":
		companies := make([]model.Company, 0, len(raws))
		for _, raw := range raws {
			companies = append(companies, model.NormalizeCompany(raw))
		}
		if err := st.UpsertCompanies(ctx, companies); err != nil {
			return eris.Wrap(err, "import: upsert companies")
		}
		log.Info("import complete", zap.Int("companies", len(companies)))

	case "scores":
		typ := model.AssessmentType(typStr)
		if typ != model.TypeSAT && typ != model.TypeIVC && typ != model.TypeIEG {
			return eris.Errorf("import: --type must be SAT, IVC, or IEG (got %q)", typStr)
		}
		records := make([]model.AssessmentScoreRecord, 0, len(raws))
		for _, raw := range raws {
			records = append(records, model.NormalizeAssessmentRecord(raw, typ))
		}
		if err := st.UpsertAssessmentScores(ctx, records); err != nil {
			return eris.Wrap(err, "import: upsert scores")
		}
		log.Info("import complete", zap.Int("records", len(records)))

	case "product-tests":
		tests := groupProductTestRows(raws)
		if err := st.UpsertProductTests(ctx, tests); err != nil {
			return eris.Wrap(err, "import: upsert product tests")
		}
		log.Info("import complete", zap.Int("tests", len(tests)))

	default:
		return eris.Errorf("import: unknown kind %q", kind)
	}

	return nil
}

// readCSVRecords turns each CSV row into a raw document keyed by header
// column, so the same normalization adapters apply to file imports and
// fetched documents alike.
func readCSVRecords(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	var raws []model.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		raw := make(model.RawRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				raw[col] = row[i]
			}
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// groupProductTestRows folds per-micronutrient rows into one test record per
// (company, brand, cycle) tuple, preserving row order.
func groupProductTestRows(raws []model.RawRecord) []model.ProductTestRecord {
	index := make(map[string]int)
	var tests []model.ProductTestRecord

	for _, raw := range raws {
		rec := model.NormalizeProductTest(raw)
		key := rec.CompanyID + "|" + rec.BrandID + "|" + rec.CycleID

		i, ok := index[key]
		if !ok {
			i = len(tests)
			index[key] = i
			tests = append(tests, rec)
		} else if tests[i].Aflatoxin == nil && rec.Aflatoxin != nil {
			tests[i].Aflatoxin = rec.Aflatoxin
		}

		if name, ok := raw["micronutrient"].(string); ok && name != "" {
			tests[i].Results = append(tests[i].Results, model.MicronutrientResult{
				Name:     name,
				Measured: csvNumber(raw["measured"]),
				Expected: csvNumber(raw["expected"]),
			})
		}
	}
	return tests
}

// csvNumber coerces a CSV cell to a float; malformed cells become 0, same
// as the fetch-side adapters.
func csvNumber(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
