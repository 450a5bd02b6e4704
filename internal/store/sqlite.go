package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	size   TEXT NOT NULL DEFAULT 'Unknown',
	active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS cycles (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	starts_at  DATETIME,
	ends_at    DATETIME,
	active     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assessment_scores (
	company_id  TEXT NOT NULL,
	cycle_id    TEXT NOT NULL,
	category_id TEXT NOT NULL,
	type        TEXT NOT NULL,
	value       REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (company_id, cycle_id, category_id, type)
);

CREATE TABLE IF NOT EXISTS product_tests (
	company_id   TEXT NOT NULL,
	brand_id     TEXT NOT NULL,
	cycle_id     TEXT NOT NULL,
	brand_name   TEXT NOT NULL DEFAULT '',
	product_type TEXT NOT NULL,
	results      TEXT NOT NULL,
	aflatoxin    REAL,
	PRIMARY KEY (company_id, brand_id, cycle_id)
);

CREATE INDEX IF NOT EXISTS idx_scores_cycle_type ON assessment_scores(cycle_id, type);
CREATE INDEX IF NOT EXISTS idx_product_tests_cycle ON product_tests(cycle_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCompanies(ctx context.Context, companies []model.Company) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert companies")
	}
	defer tx.Rollback()

	const q = `INSERT INTO companies (id, name, size, active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, size = excluded.size, active = excluded.active`
	for _, c := range companies {
		if _, err := tx.ExecContext(ctx, q, c.ID, c.Name, string(c.Size), boolToInt(c.Active)); err != nil {
			return eris.Wrapf(err, "sqlite: upsert company %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert companies")
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, size, active FROM companies ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		var size string
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &size, &active); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		c.Size = model.ParseSize(size)
		c.Active = active != 0
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate companies")
}

func (s *SQLiteStore) UpsertCycle(ctx context.Context, cycle model.Cycle) error {
	const q = `INSERT INTO cycles (id, name, starts_at, ends_at, active) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, starts_at = excluded.starts_at,
		ends_at = excluded.ends_at, active = excluded.active`
	_, err := s.db.ExecContext(ctx, q, cycle.ID, cycle.Name, cycle.StartsAt, cycle.EndsAt, boolToInt(cycle.Active))
	return eris.Wrapf(err, "sqlite: upsert cycle %s", cycle.ID)
}

func (s *SQLiteStore) ListCycles(ctx context.Context) ([]model.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, starts_at, ends_at, active, created_at FROM cycles ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cycles")
	}
	defer rows.Close()

	var out []model.Cycle
	for rows.Next() {
		var c model.Cycle
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.StartsAt, &c.EndsAt, &active, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cycle")
		}
		c.Active = active != 0
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate cycles")
}

func (s *SQLiteStore) UpsertAssessmentScores(ctx context.Context, records []model.AssessmentScoreRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert scores")
	}
	defer tx.Rollback()

	const q = `INSERT INTO assessment_scores (company_id, cycle_id, category_id, type, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(company_id, cycle_id, category_id, type) DO UPDATE SET value = excluded.value`
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, q, r.CompanyID, r.CycleID, r.CategoryID, string(r.Type), r.Value); err != nil {
			return eris.Wrapf(err, "sqlite: upsert score %s/%s", r.CompanyID, r.CategoryID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert scores")
}

func (s *SQLiteStore) ListAssessmentScores(ctx context.Context, cycleID string, typ model.AssessmentType) ([]model.AssessmentScoreRecord, error) {
	const q = `SELECT s.company_id, s.cycle_id, s.category_id, s.type, s.value,
		COALESCE(c.name, ''), COALESCE(c.size, 'Unknown'), COALESCE(c.active, 0)
	FROM assessment_scores s
	LEFT JOIN companies c ON c.id = s.company_id
	WHERE s.cycle_id = ? AND s.type = ?`

	rows, err := s.db.QueryContext(ctx, q, cycleID, string(typ))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scores")
	}
	defer rows.Close()

	var out []model.AssessmentScoreRecord
	for rows.Next() {
		var r model.AssessmentScoreRecord
		var typStr, size string
		var active int
		if err := rows.Scan(&r.CompanyID, &r.CycleID, &r.CategoryID, &typStr, &r.Value,
			&r.CompanyName, &size, &active); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		r.Type = model.AssessmentType(typStr)
		r.Size = model.ParseSize(size)
		r.Active = active != 0
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate scores")
}

func (s *SQLiteStore) UpsertProductTests(ctx context.Context, tests []model.ProductTestRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert product tests")
	}
	defer tx.Rollback()

	const q = `INSERT INTO product_tests (company_id, brand_id, cycle_id, brand_name, product_type, results, aflatoxin)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, brand_id, cycle_id) DO UPDATE SET
		brand_name = excluded.brand_name, product_type = excluded.product_type,
		results = excluded.results, aflatoxin = excluded.aflatoxin`
	for _, t := range tests {
		results, err := json.Marshal(t.Results)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal results for brand %s", t.BrandID)
		}
		if _, err := tx.ExecContext(ctx, q, t.CompanyID, t.BrandID, t.CycleID, t.BrandName,
			string(t.ProductType), string(results), t.Aflatoxin); err != nil {
			return eris.Wrapf(err, "sqlite: upsert product test %s/%s", t.CompanyID, t.BrandID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert product tests")
}

func (s *SQLiteStore) ListProductTests(ctx context.Context, cycleID string) ([]model.ProductTestRecord, error) {
	const q = `SELECT company_id, brand_id, cycle_id, brand_name, product_type, results, aflatoxin
		FROM product_tests WHERE cycle_id = ?`

	rows, err := s.db.QueryContext(ctx, q, cycleID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list product tests")
	}
	defer rows.Close()

	var out []model.ProductTestRecord
	for rows.Next() {
		var t model.ProductTestRecord
		var productType, results string
		var aflatoxin sql.NullFloat64
		if err := rows.Scan(&t.CompanyID, &t.BrandID, &t.CycleID, &t.BrandName,
			&productType, &results, &aflatoxin); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan product test")
		}
		t.ProductType = model.ProductType(productType)
		if err := json.Unmarshal([]byte(results), &t.Results); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal results for brand %s", t.BrandID)
		}
		if aflatoxin.Valid {
			v := aflatoxin.Float64
			t.Aflatoxin = &v
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate product tests")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
