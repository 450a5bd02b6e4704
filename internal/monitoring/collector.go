// Package monitoring gathers point-in-time dataset counts for the admin
// status panel.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/store"
)

// Snapshot holds a point-in-time view of stored datasets for one cycle.
type Snapshot struct {
	Companies       int `json:"companies"`
	ActiveCompanies int `json:"active_companies"`
	Cycles          int `json:"cycles"`

	// Per-instrument record counts for the requested cycle.
	SATRecords   int `json:"sat_records"`
	IVCRecords   int `json:"ivc_records"`
	IEGRecords   int `json:"ieg_records"`
	ProductTests int `json:"product_tests"`

	CycleID     string    `json:"cycle_id"`
	CollectedAt time.Time `json:"collected_at"`
}

// Collector gathers dataset metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot for the given cycle.
func (c *Collector) Collect(ctx context.Context, cycleID string) (*Snapshot, error) {
	snap := &Snapshot{
		CycleID:     cycleID,
		CollectedAt: time.Now().UTC(),
	}

	companies, err := c.store.ListCompanies(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list companies")
	}
	snap.Companies = len(companies)
	for _, co := range companies {
		if co.Active {
			snap.ActiveCompanies++
		}
	}

	cycles, err := c.store.ListCycles(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list cycles")
	}
	snap.Cycles = len(cycles)

	for _, typ := range []model.AssessmentType{model.TypeSAT, model.TypeIVC, model.TypeIEG} {
		recs, err := c.store.ListAssessmentScores(ctx, cycleID, typ)
		if err != nil {
			return nil, eris.Wrapf(err, "monitoring: list %s records", typ)
		}
		switch typ {
		case model.TypeSAT:
			snap.SATRecords = len(recs)
		case model.TypeIVC:
			snap.IVCRecords = len(recs)
		case model.TypeIEG:
			snap.IEGRecords = len(recs)
		}
	}

	tests, err := c.store.ListProductTests(ctx, cycleID)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list product tests")
	}
	snap.ProductTests = len(tests)

	return snap, nil
}
