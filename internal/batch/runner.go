package batch

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riverscapes/watershed-cli/internal/store"
	"github.com/riverscapes/watershed-cli/internal/topology"
)

// Runner fans contributing-area queries out over a worker pool. Queries are
// read-only against the shared topology, so no locking is needed beyond the
// result collection.
type Runner struct {
	Topo        *topology.Store
	Store       store.Store // optional; nil skips persistence
	Concurrency int
}

// Result is the outcome of one boundary query within a batch run.
type Result struct {
	HUC8          string                           `json:"huc8"`
	Contributions map[string]topology.Contribution `json:"contributions"`
}

// Run executes one query per HUC8 and returns results ordered by HUC8.
// All prefixes are validated before any query runs.
func (r *Runner) Run(ctx context.Context, huc8s []string) ([]Result, error) {
	if r.Topo == nil {
		return nil, eris.New("batch: no topology loaded")
	}
	for _, huc8 := range huc8s {
		if len(huc8) != topology.HUC8Len {
			return nil, eris.Wrapf(topology.ErrInvalidPrefix, "batch entry %q", huc8)
		}
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	runID := uuid.New().String()
	log := zap.L().With(
		zap.String("component", "batch.runner"),
		zap.String("run_id", runID),
	)

	var mu sync.Mutex
	results := make([]Result, 0, len(huc8s))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, huc8 := range huc8s {
		g.Go(func() error {
			contribs, err := r.Topo.ContributingArea(huc8)
			if err != nil {
				return eris.Wrapf(err, "batch: query %s", huc8)
			}

			if r.Store != nil {
				flat := make([]topology.Contribution, 0, len(contribs))
				for _, c := range contribs {
					flat = append(flat, c)
				}
				sort.Slice(flat, func(i, j int) bool { return flat[i].Destination < flat[j].Destination })
				if err := r.Store.SaveContributions(gCtx, runID, huc8, flat); err != nil {
					return eris.Wrapf(err, "batch: persist %s", huc8)
				}
			}

			mu.Lock()
			results = append(results, Result{HUC8: huc8, Contributions: contribs})
			mu.Unlock()

			log.Debug("boundary query complete",
				zap.String("huc8", huc8),
				zap.Int("destinations", len(contribs)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].HUC8 < results[j].HUC8 })

	log.Info("batch run complete", zap.Int("queries", len(results)))
	return results, nil
}
