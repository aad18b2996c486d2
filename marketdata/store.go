package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/meenmo/quantlib/curve"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS term_structure (
	as_of    TIMESTAMPTZ      NOT NULL,
	maturity DOUBLE PRECISION NOT NULL,
	rate     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (as_of, maturity)
)`

// SnapshotStore persists term-structure snapshots in Postgres. Rates are
// stored in percent, mirroring the CSV snapshot format.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens a Postgres connection and ensures the snapshot
// table exists.
func NewSnapshotStore(ctx context.Context, dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("marketdata.NewSnapshotStore: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("marketdata.NewSnapshotStore: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("marketdata.NewSnapshotStore: schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot writes every knot of the curve under the given as-of
// timestamp in a single transaction.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, asOf time.Time, ts *curve.TermStructure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("marketdata.SaveSnapshot: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO term_structure (as_of, maturity, rate) VALUES ($1, $2, $3)
		 ON CONFLICT (as_of, maturity) DO UPDATE SET rate = EXCLUDED.rate`)
	if err != nil {
		return fmt.Errorf("marketdata.SaveSnapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range RowsFromCurve(ts) {
		if _, err := stmt.ExecContext(ctx, asOf, row.Maturity, row.Rate); err != nil {
			return fmt.Errorf("marketdata.SaveSnapshot: insert maturity %g: %w", row.Maturity, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("marketdata.SaveSnapshot: commit: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent snapshot and its as-of timestamp.
func (s *SnapshotStore) LoadLatest(ctx context.Context) (*curve.TermStructure, time.Time, error) {
	var asOf time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(as_of) FROM term_structure`).Scan(&asOf)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("marketdata.LoadLatest: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT maturity, rate FROM term_structure WHERE as_of = $1 ORDER BY maturity`, asOf)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("marketdata.LoadLatest: %w", err)
	}
	defer rows.Close()

	var snapshot []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.Maturity, &r.Rate); err != nil {
			return nil, time.Time{}, fmt.Errorf("marketdata.LoadLatest: scan: %w", err)
		}
		snapshot = append(snapshot, r)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("marketdata.LoadLatest: %w", err)
	}

	ts, err := CurveFromRows(snapshot)
	if err != nil {
		return nil, time.Time{}, err
	}
	return ts, asOf, nil
}
