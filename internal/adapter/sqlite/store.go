// Package sqlite stores feature tables in a SQLite database, one long-format
// row per (county, feature) and one runs row per build.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

//go:embed schema.sql
var schema string

// Store persists feature tables. It implements pipeline.Loader.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Load records the run and every non-missing value and label of the table
// in one transaction.
func (s *Store) Load(ctx context.Context, t *domain.Table, run domain.RunInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (version, generated_at, row_count, column_count) VALUES (?, ?, ?, ?)`,
		run.Version, run.GeneratedAt.UTC().UnixMilli(), t.Len(), len(t.Columns()))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO county_features (run_id, state, county, zone, feature, value, label) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare feature insert: %w", err)
	}
	defer stmt.Close()

	columns, labels := t.Columns(), t.Labels()
	for _, r := range t.Rows() {
		for i, c := range columns {
			v := r.Values[i]
			if math.IsNaN(v) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, runID, r.Key.State, r.Key.County, r.Key.Zone, c, v, nil); err != nil {
				return fmt.Errorf("insert %s %s: %w", r.Key, c, err)
			}
		}
		for i, c := range labels {
			if r.Labels[i] == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, runID, r.Key.State, r.Key.County, r.Key.Zone, c, nil, r.Labels[i]); err != nil {
				return fmt.Errorf("insert %s %s: %w", r.Key, c, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit features: %w", err)
	}
	return nil
}

// LatestRun returns the id and version of the most recent run.
func (s *Store) LatestRun(ctx context.Context) (int64, string, error) {
	var id int64
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT id, version FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id, &version)
	if err != nil {
		return 0, "", fmt.Errorf("latest run: %w", err)
	}
	return id, version, nil
}

// Value reads one stored value of a run.
func (s *Store) Value(ctx context.Context, runID int64, k domain.Key, feature string) (float64, bool, error) {
	var v sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM county_features WHERE run_id = ? AND state = ? AND county = ? AND zone = ? AND feature = ?`,
		runID, k.State, k.County, k.Zone, feature).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return math.NaN(), false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s %s: %w", k, feature, err)
	}
	if !v.Valid {
		return math.NaN(), false, nil
	}
	return v.Float64, true, nil
}
