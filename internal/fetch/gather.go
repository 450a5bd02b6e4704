// Package fetch runs the independent per-type data fetches of one
// aggregation request concurrently. Failures degrade to empty datasets so a
// partial dashboard still renders; retry policy belongs to the store layer.
package fetch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/store"
)

// Dataset holds everything one aggregation pass needs, fetched fresh per
// request.
type Dataset struct {
	SAT          []model.AssessmentScoreRecord
	IVC          []model.AssessmentScoreRecord
	IEG          []model.AssessmentScoreRecord
	ProductTests []model.ProductTestRecord
}

// Records returns the three assessment datasets as one slice, the shape the
// accumulator consumes.
func (d *Dataset) Records() []model.AssessmentScoreRecord {
	out := make([]model.AssessmentScoreRecord, 0, len(d.SAT)+len(d.IVC)+len(d.IEG))
	out = append(out, d.SAT...)
	out = append(out, d.IVC...)
	out = append(out, d.IEG...)
	return out
}

// Gather fetches all datasets for a cycle in parallel. Each source fails
// soft: an error is logged and its dataset stays empty, so a missing IEG
// export degrades IEG contributions to zero instead of erroring the whole
// ranked view.
func Gather(ctx context.Context, st store.Store, cycleID string) *Dataset {
	ds := &Dataset{}
	log := zap.L().With(zap.String("cycle", cycleID))

	g, ctx := errgroup.WithContext(ctx)
	for _, typ := range []model.AssessmentType{model.TypeSAT, model.TypeIVC, model.TypeIEG} {
		g.Go(func() error {
			recs, err := st.ListAssessmentScores(ctx, cycleID, typ)
			if err != nil {
				log.Warn("fetch: assessment source failed, using empty dataset",
					zap.String("type", string(typ)),
					zap.Error(err),
				)
				return nil
			}
			switch typ {
			case model.TypeSAT:
				ds.SAT = recs
			case model.TypeIVC:
				ds.IVC = recs
			case model.TypeIEG:
				ds.IEG = recs
			}
			return nil
		})
	}
	g.Go(func() error {
		tests, err := st.ListProductTests(ctx, cycleID)
		if err != nil {
			log.Warn("fetch: product test source failed, using empty dataset", zap.Error(err))
			return nil
		}
		ds.ProductTests = tests
		return nil
	})

	// Sources never return errors (fail-soft), so Wait cannot fail.
	_ = g.Wait()

	return ds
}
