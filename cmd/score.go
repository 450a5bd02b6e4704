package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/export"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/fetch"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/scoring"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the ranked composite view for a cycle",
	Long: `Aggregates SAT, IVC, and IEG score records for a cycle into the weighted
composite view: per-category contributions, composite totals, ranks,
percentile bands, and the top-performer flag.

Examples:
  # Rank all companies in a cycle
  score --cycle 2024-r1

  # Rank medium companies only, renumbered after the band filter
  score --cycle 2024-r1 --size Medium --band top25 --renumber

  # Export to CSV
  score --cycle 2024-r1 --format csv --output rankings.csv

  # Export a workbook
  score --cycle 2024-r1 --format xlsx --output rankings.xlsx`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("cycle", "", "assessment cycle id (required)")
	f.String("category", "", "rank by one category's contribution instead of the composite total")
	f.String("size", "", "filter by size category (Large, Medium, Small, Unknown)")
	f.String("band", "", "award band filter: top10, top25, top50, below50")
	f.Bool("renumber", false, "renumber ranks 1..k after the band filter")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or xlsx")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cycleID, _ := cmd.Flags().GetString("cycle")
	if cycleID == "" {
		return eris.New("score: --cycle is required")
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "csv" && format != "xlsx" {
		return eris.Errorf("score: --format must be table, csv, or xlsx (got %q)", format)
	}
	outputPath, _ := cmd.Flags().GetString("output")
	if format == "xlsx" && outputPath == "" {
		return eris.New("score: --format xlsx requires --output")
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "score: open store")
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "score: migrate")
	}

	size, _ := cmd.Flags().GetString("size")
	band, _ := cmd.Flags().GetString("band")
	renumber, _ := cmd.Flags().GetBool("renumber")

	var catCode category.Code
	if cat, _ := cmd.Flags().GetString("category"); cat != "" {
		code, ok := category.Resolve(cat)
		if !ok {
			return eris.Errorf("score: unknown category %q", cat)
		}
		catCode = code
	}

	log := zap.L().With(zap.String("command", "score"), zap.String("cycle", cycleID))
	log.Info("starting composite scoring",
		zap.String("size", size),
		zap.String("band", band),
		zap.Bool("renumber", renumber),
	)

	ds := fetch.Gather(ctx, st, cycleID)
	aggs := scoring.Accumulate(ds.Records())
	rows := scoring.Rank(aggs, scoring.Filters{
		Category:                catCode,
		Size:                    model.SizeCategory(size),
		Band:                    band,
		RenumberAfterBandFilter: renumber,
	}, cfg.Scoring.AwardThreshold)

	log.Info("composite scoring complete",
		zap.Int("companies", len(rows)),
		zap.Int("top_performers", countTopPerformers(rows)),
	)

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrap(err, "score: create output file")
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return export.WriteRankingsCSV(out, rows)
	case "xlsx":
		return export.WriteRankingsXLSX(out, rows)
	default:
		printRankingsTable(out, rows)
		return nil
	}
}

func printRankingsTable(out *os.File, rows []scoring.RankedRow) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCOMPANY\tSIZE\tPMS\tPCII\tPIM\tPE\tGLC\tTOTAL\tBAND\tTOP")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s", r.Rank, r.Company, r.Size)
		for _, code := range category.All {
			fmt.Fprintf(w, "\t%.1f", r.CategoryScores[code])
		}
		top := ""
		if r.TopPerformer {
			top = "*"
		}
		fmt.Fprintf(w, "\t%.1f\t%s\t%s\n", r.TotalAvg, r.Band, top)
	}
	w.Flush()
}

func countTopPerformers(rows []scoring.RankedRow) int {
	n := 0
	for i := range rows {
		if rows[i].TopPerformer {
			n++
		}
	}
	return n
}
