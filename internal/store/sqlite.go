package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/riverscapes/watershed-cli/internal/topology"
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS huc12_units (
	huc12     TEXT PRIMARY KEY,
	area_sqkm REAL NOT NULL,
	tohuc     TEXT NOT NULL DEFAULT '',
	region    TEXT NOT NULL,
	geom      BLOB,
	loaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS load_status (
	region      TEXT PRIMARY KEY,
	row_count   INTEGER NOT NULL,
	loaded_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contributions (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	huc8        TEXT NOT NULL,
	destination TEXT NOT NULL,
	area_sqkm   REAL NOT NULL,
	units       TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_huc12_units_region ON huc12_units(region);
CREATE INDEX IF NOT EXISTS idx_huc12_units_tohuc ON huc12_units(tohuc);
CREATE INDEX IF NOT EXISTS idx_contributions_huc8 ON contributions(huc8);
CREATE INDEX IF NOT EXISTS idx_contributions_run_id ON contributions(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceUnits atomically swaps a region's HUC12 rows for the given set.
func (s *SQLiteStore) ReplaceUnits(ctx context.Context, region string, units []Unit) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM huc12_units WHERE region = ?`, region); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear region %s", region)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO huc12_units (huc12, area_sqkm, tohuc, region, geom) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, u := range units {
		if _, err := stmt.ExecContext(ctx, u.HUC12, u.AreaSqKm, u.ToHUC, u.Region, u.Geom); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert unit %s", u.HUC12)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: commit region %s", region)
	}
	return n, nil
}

// LoadUnits reads every drainage unit in id order.
func (s *SQLiteStore) LoadUnits(ctx context.Context) ([]topology.DrainageUnit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT huc12, area_sqkm, tohuc FROM huc12_units ORDER BY huc12`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query units")
	}
	defer rows.Close() //nolint:errcheck

	var units []topology.DrainageUnit
	for rows.Next() {
		var u topology.DrainageUnit
		if err := rows.Scan(&u.ID, &u.AreaSqKm, &u.ToHUC); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan unit")
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *SQLiteStore) RecordLoad(ctx context.Context, region string, rowCount int, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO load_status (region, row_count, loaded_at, duration_ms)
		VALUES (?, ?, datetime('now'), ?)
		ON CONFLICT (region) DO UPDATE SET
			row_count = excluded.row_count,
			loaded_at = datetime('now'),
			duration_ms = excluded.duration_ms`,
		region, rowCount, duration.Milliseconds(),
	)
	return eris.Wrapf(err, "sqlite: record load %s", region)
}

func (s *SQLiteStore) RegionLoaded(ctx context.Context, region string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM load_status WHERE region = ?`, region).Scan(&count)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check load status %s", region)
	}
	return count > 0, nil
}

func (s *SQLiteStore) LoadStatus(ctx context.Context) ([]StatusRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT region, row_count, loaded_at, duration_ms
		FROM load_status ORDER BY region`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query load status")
	}
	defer rows.Close() //nolint:errcheck

	var status []StatusRow
	for rows.Next() {
		var sr StatusRow
		if err := rows.Scan(&sr.Region, &sr.RowCount, &sr.LoadedAt, &sr.DurationMs); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan load status row")
		}
		status = append(status, sr)
	}
	return status, rows.Err()
}

// SaveContributions persists the result of one contributing-area query.
func (s *SQLiteStore) SaveContributions(ctx context.Context, runID, huc8 string, contribs []topology.Contribution) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range contribs {
		unitsJSON, err := json.Marshal(c.Units)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal units for %s", c.Destination)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contributions (id, run_id, huc8, destination, area_sqkm, units)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, huc8, c.Destination, c.AreaSqKm, string(unitsJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert contribution %s", c.Destination)
		}
	}

	return eris.Wrapf(tx.Commit(), "sqlite: commit contributions %s", huc8)
}
