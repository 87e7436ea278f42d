package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/riverscapes/watershed-cli/internal/store"
	"github.com/riverscapes/watershed-cli/internal/topology"
)

// openStore opens the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// loadTopology materializes the full drainage topology from the store.
func loadTopology(ctx context.Context, st store.Store) (*topology.Store, error) {
	units, err := st.LoadUnits(ctx)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, eris.New("no drainage units loaded; run wbdload first")
	}
	return topology.NewStore(units)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
