package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/riverscapes/watershed-cli/internal/db"
	"github.com/riverscapes/watershed-cli/internal/topology"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS huc12_units (
	huc12     TEXT PRIMARY KEY,
	area_sqkm DOUBLE PRECISION NOT NULL,
	tohuc     TEXT NOT NULL DEFAULT '',
	region    TEXT NOT NULL,
	geom      BYTEA,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS load_status (
	region      TEXT PRIMARY KEY,
	row_count   INTEGER NOT NULL,
	loaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contributions (
	id          UUID PRIMARY KEY,
	run_id      UUID NOT NULL,
	huc8        TEXT NOT NULL,
	destination TEXT NOT NULL,
	area_sqkm   DOUBLE PRECISION NOT NULL,
	units       JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_huc12_units_region ON huc12_units(region);
CREATE INDEX IF NOT EXISTS idx_huc12_units_tohuc ON huc12_units(tohuc);
CREATE INDEX IF NOT EXISTS idx_contributions_huc8 ON contributions(huc8);
CREATE INDEX IF NOT EXISTS idx_contributions_run_id ON contributions(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var unitColumns = []string{"huc12", "area_sqkm", "tohuc", "region", "geom"}

// ReplaceUnits clears a region's rows and bulk-loads the replacement set via COPY.
func (s *PostgresStore) ReplaceUnits(ctx context.Context, region string, units []Unit) (int64, error) {
	if _, err := s.pool.Exec(ctx, `DELETE FROM huc12_units WHERE region = $1`, region); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear region %s", region)
	}

	rows := make([][]any, 0, len(units))
	for _, u := range units {
		rows = append(rows, []any{u.HUC12, u.AreaSqKm, u.ToHUC, u.Region, u.Geom})
	}

	n, err := db.CopyFrom(ctx, s.pool, "huc12_units", unitColumns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: load region %s", region)
	}
	return n, nil
}

func (s *PostgresStore) LoadUnits(ctx context.Context) ([]topology.DrainageUnit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT huc12, area_sqkm, tohuc FROM huc12_units ORDER BY huc12`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query units")
	}
	defer rows.Close()

	var units []topology.DrainageUnit
	for rows.Next() {
		var u topology.DrainageUnit
		if err := rows.Scan(&u.ID, &u.AreaSqKm, &u.ToHUC); err != nil {
			return nil, eris.Wrap(err, "postgres: scan unit")
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *PostgresStore) RecordLoad(ctx context.Context, region string, rowCount int, duration time.Duration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO load_status (region, row_count, loaded_at, duration_ms)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (region) DO UPDATE SET
			row_count = EXCLUDED.row_count,
			loaded_at = now(),
			duration_ms = EXCLUDED.duration_ms`,
		region, rowCount, duration.Milliseconds(),
	)
	return eris.Wrapf(err, "postgres: record load %s", region)
}

func (s *PostgresStore) RegionLoaded(ctx context.Context, region string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM load_status WHERE region = $1`, region).Scan(&count)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: check load status %s", region)
	}
	return count > 0, nil
}

func (s *PostgresStore) LoadStatus(ctx context.Context) ([]StatusRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT region, row_count, loaded_at, COALESCE(duration_ms, 0)
		FROM load_status ORDER BY region`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query load status")
	}
	defer rows.Close()

	var status []StatusRow
	for rows.Next() {
		var sr StatusRow
		if err := rows.Scan(&sr.Region, &sr.RowCount, &sr.LoadedAt, &sr.DurationMs); err != nil {
			return nil, eris.Wrap(err, "postgres: scan load status row")
		}
		status = append(status, sr)
	}
	return status, rows.Err()
}

func (s *PostgresStore) SaveContributions(ctx context.Context, runID, huc8 string, contribs []topology.Contribution) error {
	for _, c := range contribs {
		unitsJSON, err := json.Marshal(c.Units)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal units for %s", c.Destination)
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO contributions (id, run_id, huc8, destination, area_sqkm, units)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), runID, huc8, c.Destination, c.AreaSqKm, unitsJSON,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert contribution %s", c.Destination)
		}
	}
	return nil
}
