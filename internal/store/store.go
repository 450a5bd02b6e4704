// Package store persists companies, cycles, assessment score records, and
// product tests. It is the input-collector boundary of the aggregation
// pipeline; consistency and retry concerns live here, not in scoring.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/config"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// Store defines the persistence interface for the scoring pipeline.
type Store interface {
	// Companies
	UpsertCompanies(ctx context.Context, companies []model.Company) error
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// Cycles
	UpsertCycle(ctx context.Context, cycle model.Cycle) error
	ListCycles(ctx context.Context) ([]model.Cycle, error)

	// Assessment scores. Upsert is keyed on the
	// (company, cycle, category, type) tuple; re-submissions overwrite.
	UpsertAssessmentScores(ctx context.Context, records []model.AssessmentScoreRecord) error
	ListAssessmentScores(ctx context.Context, cycleID string, typ model.AssessmentType) ([]model.AssessmentScoreRecord, error)

	// Product tests, keyed on (company, brand, cycle).
	UpsertProductTests(ctx context.Context, tests []model.ProductTestRecord) error
	ListProductTests(ctx context.Context, cycleID string) ([]model.ProductTestRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store from config. SQLite is the default local backend;
// Postgres serves shared deployments.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
