package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	size   TEXT NOT NULL DEFAULT 'Unknown',
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS cycles (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	starts_at  TIMESTAMPTZ,
	ends_at    TIMESTAMPTZ,
	active     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assessment_scores (
	company_id  TEXT NOT NULL,
	cycle_id    TEXT NOT NULL,
	category_id TEXT NOT NULL,
	type        TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (company_id, cycle_id, category_id, type)
);

CREATE TABLE IF NOT EXISTS product_tests (
	company_id   TEXT NOT NULL,
	brand_id     TEXT NOT NULL,
	cycle_id     TEXT NOT NULL,
	brand_name   TEXT NOT NULL DEFAULT '',
	product_type TEXT NOT NULL,
	results      JSONB NOT NULL,
	aflatoxin    DOUBLE PRECISION,
	PRIMARY KEY (company_id, brand_id, cycle_id)
);

CREATE INDEX IF NOT EXISTS idx_scores_cycle_type ON assessment_scores(cycle_id, type);
CREATE INDEX IF NOT EXISTS idx_product_tests_cycle ON product_tests(cycle_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertCompanies(ctx context.Context, companies []model.Company) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin upsert companies")
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO companies (id, name, size, active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, size = excluded.size, active = excluded.active`
	for _, c := range companies {
		if _, err := tx.Exec(ctx, q, c.ID, c.Name, string(c.Size), c.Active); err != nil {
			return eris.Wrapf(err, "postgres: upsert company %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit upsert companies")
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, size, active FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		var size string
		if err := rows.Scan(&c.ID, &c.Name, &size, &c.Active); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		c.Size = model.ParseSize(size)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate companies")
}

func (s *PostgresStore) UpsertCycle(ctx context.Context, cycle model.Cycle) error {
	const q = `INSERT INTO cycles (id, name, starts_at, ends_at, active) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, starts_at = excluded.starts_at,
		ends_at = excluded.ends_at, active = excluded.active`
	_, err := s.pool.Exec(ctx, q, cycle.ID, cycle.Name, cycle.StartsAt, cycle.EndsAt, cycle.Active)
	return eris.Wrapf(err, "postgres: upsert cycle %s", cycle.ID)
}

func (s *PostgresStore) ListCycles(ctx context.Context) ([]model.Cycle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, starts_at, ends_at, active, created_at FROM cycles ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cycles")
	}
	defer rows.Close()

	var out []model.Cycle
	for rows.Next() {
		var c model.Cycle
		if err := rows.Scan(&c.ID, &c.Name, &c.StartsAt, &c.EndsAt, &c.Active, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cycle")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate cycles")
}

func (s *PostgresStore) UpsertAssessmentScores(ctx context.Context, records []model.AssessmentScoreRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin upsert scores")
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO assessment_scores (company_id, cycle_id, category_id, type, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, cycle_id, category_id, type) DO UPDATE SET value = excluded.value`
	for _, r := range records {
		if _, err := tx.Exec(ctx, q, r.CompanyID, r.CycleID, r.CategoryID, string(r.Type), r.Value); err != nil {
			return eris.Wrapf(err, "postgres: upsert score %s/%s", r.CompanyID, r.CategoryID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit upsert scores")
}

func (s *PostgresStore) ListAssessmentScores(ctx context.Context, cycleID string, typ model.AssessmentType) ([]model.AssessmentScoreRecord, error) {
	const q = `SELECT s.company_id, s.cycle_id, s.category_id, s.type, s.value,
		COALESCE(c.name, ''), COALESCE(c.size, 'Unknown'), COALESCE(c.active, FALSE)
	FROM assessment_scores s
	LEFT JOIN companies c ON c.id = s.company_id
	WHERE s.cycle_id = $1 AND s.type = $2`

	rows, err := s.pool.Query(ctx, q, cycleID, string(typ))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scores")
	}
	defer rows.Close()

	var out []model.AssessmentScoreRecord
	for rows.Next() {
		var r model.AssessmentScoreRecord
		var typStr, size string
		if err := rows.Scan(&r.CompanyID, &r.CycleID, &r.CategoryID, &typStr, &r.Value,
			&r.CompanyName, &size, &r.Active); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		r.Type = model.AssessmentType(typStr)
		r.Size = model.ParseSize(size)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate scores")
}

func (s *PostgresStore) UpsertProductTests(ctx context.Context, tests []model.ProductTestRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin upsert product tests")
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO product_tests (company_id, brand_id, cycle_id, brand_name, product_type, results, aflatoxin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, brand_id, cycle_id) DO UPDATE SET
		brand_name = excluded.brand_name, product_type = excluded.product_type,
		results = excluded.results, aflatoxin = excluded.aflatoxin`
	for _, t := range tests {
		results, err := json.Marshal(t.Results)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal results for brand %s", t.BrandID)
		}
		if _, err := tx.Exec(ctx, q, t.CompanyID, t.BrandID, t.CycleID, t.BrandName,
			string(t.ProductType), results, t.Aflatoxin); err != nil {
			return eris.Wrapf(err, "postgres: upsert product test %s/%s", t.CompanyID, t.BrandID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit upsert product tests")
}

func (s *PostgresStore) ListProductTests(ctx context.Context, cycleID string) ([]model.ProductTestRecord, error) {
	const q = `SELECT company_id, brand_id, cycle_id, brand_name, product_type, results, aflatoxin
		FROM product_tests WHERE cycle_id = $1`

	rows, err := s.pool.Query(ctx, q, cycleID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list product tests")
	}
	defer rows.Close()

	var out []model.ProductTestRecord
	for rows.Next() {
		var t model.ProductTestRecord
		var productType string
		var results []byte
		if err := rows.Scan(&t.CompanyID, &t.BrandID, &t.CycleID, &t.BrandName,
			&productType, &results, &t.Aflatoxin); err != nil {
			return nil, eris.Wrap(err, "postgres: scan product test")
		}
		t.ProductType = model.ProductType(productType)
		if err := json.Unmarshal(results, &t.Results); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal results for brand %s", t.BrandID)
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate product tests")
}
