// Package store persists HUC12 drainage units and contributing-area results
// behind a driver-agnostic interface with SQLite and Postgres backends.
package store

import (
	"context"
	"time"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

// Unit is one HUC12 row as persisted, with its source region and optional
// EWKB boundary geometry.
type Unit struct {
	HUC12    string
	AreaSqKm float64
	ToHUC    string
	Region   string
	Geom     []byte
}

// StatusRow represents a row from the load_status table.
type StatusRow struct {
	Region     string
	RowCount   int
	LoadedAt   time.Time
	DurationMs int
}

// Store defines persistence for the watershed topology pipeline.
type Store interface {
	// Units
	ReplaceUnits(ctx context.Context, region string, units []Unit) (int64, error)
	LoadUnits(ctx context.Context) ([]topology.DrainageUnit, error)

	// Load bookkeeping
	RecordLoad(ctx context.Context, region string, rowCount int, duration time.Duration) error
	RegionLoaded(ctx context.Context, region string) (bool, error)
	LoadStatus(ctx context.Context) ([]StatusRow, error)

	// Query results
	SaveContributions(ctx context.Context, runID, huc8 string, contribs []topology.Contribution) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
