package wbd

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riverscapes/watershed-cli/internal/store"
)

// LoadOptions configures a WBD data load.
type LoadOptions struct {
	Regions     []string // HU2 region codes; empty = all 22
	TempDir     string   // Download directory
	Concurrency int      // Parallel region downloads (default 2)
	RatePerSec  float64  // Download request rate (default 1)
	Incremental bool     // Skip already-loaded regions
	DryRun      bool     // Download and parse without loading
}

// Load downloads and loads WBD HUC12 units for the given options.
func Load(ctx context.Context, st store.Store, opts LoadOptions) error {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.TempDir == "" {
		opts.TempDir = "/tmp/wbd"
	}

	regions := opts.Regions
	if len(regions) == 0 {
		regions = AllRegionCodes()
	}

	// Pre-validate all region codes before starting any work.
	for _, region := range regions {
		if _, ok := RegionName(region); !ok {
			return eris.Errorf("wbd: unknown region %q", region)
		}
	}

	log := zap.L().With(zap.String("component", "wbd.loader"))
	dl := NewDownloader(opts.RatePerSec)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, region := range regions {
		g.Go(func() error {
			return loadRegion(gCtx, st, dl, region, opts)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("WBD load complete", zap.Int("regions", len(regions)))
	return nil
}

// loadRegion downloads, parses, and loads a single HU2 region.
func loadRegion(ctx context.Context, st store.Store, dl *Downloader, region string, opts LoadOptions) error {
	log := zap.L().With(
		zap.String("component", "wbd.loader"),
		zap.String("region", region),
	)

	if opts.Incremental {
		loaded, err := st.RegionLoaded(ctx, region)
		if err != nil {
			return err
		}
		if loaded {
			log.Debug("already loaded, skipping")
			return nil
		}
	}

	start := time.Now()

	shpPath, err := dl.Fetch(ctx, DownloadURL(region), opts.TempDir+"/"+region)
	if err != nil {
		return eris.Wrapf(err, "wbd: fetch region %s", region)
	}

	log.Info("shapefile downloaded", zap.String("path", shpPath))

	records, err := ParseHUC12(shpPath)
	if err != nil {
		return eris.Wrapf(err, "wbd: parse region %s", region)
	}

	log.Info("shapefile parsed", zap.Int("units", len(records)))

	if opts.DryRun {
		log.Info("dry run, skipping load", zap.Int("units", len(records)))
		return nil
	}

	units := make([]store.Unit, 0, len(records))
	for _, r := range records {
		units = append(units, store.Unit{
			HUC12:    r.Unit.ID,
			AreaSqKm: r.Unit.AreaSqKm,
			ToHUC:    r.Unit.ToHUC,
			Region:   region,
			Geom:     r.Geom,
		})
	}

	n, err := st.ReplaceUnits(ctx, region, units)
	if err != nil {
		return err
	}

	duration := time.Since(start)

	if err := st.RecordLoad(ctx, region, int(n), duration); err != nil {
		log.Warn("failed to record load status", zap.Error(err))
	}

	log.Info("region loaded",
		zap.Int64("units", n),
		zap.Duration("duration", duration),
	)

	return nil
}
