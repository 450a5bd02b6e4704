package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/category"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/export"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/fetch"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/scoring"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		// Status is the one view that tolerates a missing cycle: fall back
		// to the most recent one.
		cycles, err := s.store.ListCycles(r.Context())
		if err == nil && len(cycles) > 0 {
			cycleID = cycles[0].ID
		}
	}

	snap, err := s.collector.Collect(r.Context(), cycleID)
	if err != nil {
		zap.L().Error("api: collect status", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect status")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.store.ListCycles(r.Context())
	if err != nil {
		zap.L().Error("api: list cycles", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list cycles")
		return
	}
	if cycles == nil {
		cycles = []model.Cycle{}
	}
	writeJSON(w, http.StatusOK, cycles)
}

// rankedRows runs the full fetch-then-aggregate pass for one request.
func (s *Server) rankedRows(r *http.Request) ([]scoring.RankedRow, error) {
	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		return nil, errMissingCycle
	}

	filters := scoring.Filters{
		Size: model.SizeCategory(r.URL.Query().Get("size")),
		Band: r.URL.Query().Get("band"),
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		code, ok := category.Resolve(cat)
		if !ok {
			return nil, eris.Errorf("unknown category %q", cat)
		}
		filters.Category = code
	}
	if renumber := r.URL.Query().Get("renumber"); renumber != "" {
		filters.RenumberAfterBandFilter = renumber == "true" || renumber == "1"
	}

	ds := fetch.Gather(r.Context(), s.store, cycleID)
	aggs := scoring.Accumulate(ds.Records())

	return scoring.Rank(aggs, filters, s.cfg.Scoring.AwardThreshold), nil
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.rankedRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rows == nil {
		rows = []scoring.RankedRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRankingsCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.rankedRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.csv"`)
	if err := export.WriteRankingsCSV(w, rows); err != nil {
		zap.L().Error("api: write rankings csv", zap.Error(err))
	}
}

func (s *Server) handleRankingsXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := s.rankedRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.xlsx"`)
	if err := export.WriteRankingsXLSX(w, rows); err != nil {
		zap.L().Error("api: write rankings xlsx", zap.Error(err))
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		writeError(w, http.StatusBadRequest, "cycle is required")
		return
	}

	topN := s.cfg.Scoring.LeaderboardTopN
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil || n < 1 || n > 10 {
			writeError(w, http.StatusBadRequest, "n must be an integer between 1 and 10")
			return
		}
		topN = n
	}

	ds := fetch.Gather(r.Context(), s.store, cycleID)
	aggs := scoring.Accumulate(ds.Records())
	writeJSON(w, http.StatusOK, scoring.CategoryLeaders(aggs, topN))
}

// varianceRows builds the precision-parity view for one request.
func (s *Server) varianceRows(r *http.Request) ([]scoring.VarianceRow, error) {
	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		return nil, errMissingCycle
	}

	threshold := s.cfg.Scoring.VarianceThreshold
	if tStr := r.URL.Query().Get("threshold"); tStr != "" {
		t, err := strconv.ParseFloat(tStr, 64)
		if err != nil || t < 0 || t > 20 {
			return nil, eris.New("threshold must be a number between 0 and 20")
		}
		threshold = t
	}

	ds := fetch.Gather(r.Context(), s.store, cycleID)
	aggs := scoring.Accumulate(ds.Records())

	sizeFilter := model.SizeCategory(r.URL.Query().Get("size"))
	inputs := make([]scoring.VarianceInput, 0, len(aggs))
	for _, agg := range aggs {
		if sizeFilter != "" && agg.Size != sizeFilter {
			continue
		}
		inputs = append(inputs, scoring.VarianceInput{
			CompanyID:      agg.CompanyID,
			Company:        agg.Name,
			Size:           agg.Size,
			SelfScore:      agg.SATTotal(),
			ValidatedScore: agg.IVCTotal(),
		})
	}

	return scoring.NewVarianceComparator(threshold).Compute(inputs), nil
}

func (s *Server) handleVariance(w http.ResponseWriter, r *http.Request) {
	rows, err := s.varianceRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rows == nil {
		rows = []scoring.VarianceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleVarianceCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.varianceRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="variance.csv"`)
	if err := export.WriteVarianceCSV(w, rows); err != nil {
		zap.L().Error("api: write variance csv", zap.Error(err))
	}
}

// improvementRows builds the most-improved view for one request.
func (s *Server) improvementRows(r *http.Request) ([]scoring.ImprovementRow, error) {
	cycleID := r.URL.Query().Get("cycle")
	baselineID := r.URL.Query().Get("baseline")
	if cycleID == "" {
		return nil, errMissingCycle
	}
	if baselineID == "" {
		return nil, eris.New("baseline is required")
	}

	current := fetch.Gather(r.Context(), s.store, cycleID)
	baseline := fetch.Gather(r.Context(), s.store, baselineID)

	return scoring.ComputeImprovement(
		totalRows(scoring.Accumulate(current.Records())),
		totalRows(scoring.Accumulate(baseline.Records())),
	), nil
}

func (s *Server) handleImprovement(w http.ResponseWriter, r *http.Request) {
	rows, err := s.improvementRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rows == nil {
		rows = []scoring.ImprovementRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleImprovementCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.improvementRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="improvement.csv"`)
	if err := export.WriteImprovementCSV(w, rows); err != nil {
		zap.L().Error("api: write improvement csv", zap.Error(err))
	}
}

func (s *Server) handleProductTests(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		writeError(w, http.StatusBadRequest, "cycle is required")
		return
	}

	ds := fetch.Gather(r.Context(), s.store, cycleID)
	scores := scoring.ScoreProductTests(ds.ProductTests)
	if scores == nil {
		scores = []scoring.ProductTestScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

var errMissingCycle = eris.New("cycle is required")

// totalRows projects aggregates onto the composite-total rows the
// most-improved comparison consumes.
func totalRows(aggs map[string]*scoring.CompanyAggregate) []scoring.TotalRow {
	out := make([]scoring.TotalRow, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, scoring.TotalRow{
			CompanyID: agg.CompanyID,
			Company:   agg.Name,
			Total:     agg.TotalAvg,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
