package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/batch"
	"github.com/riverscapes/watershed-cli/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch [huc8...]",
	Short: "Run contributing-area queries for many HUC8 boundaries",
	Long: `Runs one contributing-area query per HUC8 concurrently against a single
in-memory topology. Boundaries come from positional arguments or a YAML
manifest with a top-level huc8s list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manifestPath, _ := cmd.Flags().GetString("manifest")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		save, _ := cmd.Flags().GetBool("save")

		huc8s := args
		if manifestPath != "" {
			m, err := batch.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			huc8s = append(huc8s, m.HUC8s...)
		}
		if len(huc8s) == 0 {
			return eris.New("batch: no HUC8 boundaries given; pass arguments or --manifest")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		topo, err := loadTopology(ctx, st)
		if err != nil {
			return err
		}

		if concurrency == 0 {
			concurrency = cfg.Batch.Concurrency
		}

		var resultStore store.Store
		if save {
			resultStore = st
		}

		runner := &batch.Runner{
			Topo:        topo,
			Store:       resultStore,
			Concurrency: concurrency,
		}

		zap.L().Info("starting batch run",
			zap.Int("queries", len(huc8s)),
			zap.Int("concurrency", concurrency),
			zap.Bool("save", save),
		)

		results, err := runner.Run(ctx, huc8s)
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "batch: encode results")
	},
}

func init() {
	batchCmd.Flags().String("manifest", "", "YAML manifest listing huc8s")
	batchCmd.Flags().Int("concurrency", 0, "parallel queries (default: from config)")
	batchCmd.Flags().Bool("save", false, "persist results to the contributions table")
	rootCmd.AddCommand(batchCmd)
}
