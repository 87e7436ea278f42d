package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

var contribCmd = &cobra.Command{
	Use:   "contrib <huc8>",
	Short: "Compute upstream contributing area for a HUC8 boundary",
	Long: `Finds every drainage unit outside the given HUC8 boundary whose flow
crosses into it, and for each inflow point accumulates the full upstream
closure: total area and the set of contributing HUC12 ids.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		huc8 := args[0]
		save, _ := cmd.Flags().GetBool("save")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		topo, err := loadTopology(ctx, st)
		if err != nil {
			return err
		}

		zap.L().Info("topology loaded", zap.Int("units", topo.Len()))

		results, err := topo.ContributingArea(huc8)
		if err != nil {
			return eris.Wrapf(err, "contrib %s", huc8)
		}

		if save {
			runID := uuid.New().String()
			flat := make([]topology.Contribution, 0, len(results))
			for _, c := range results {
				flat = append(flat, c)
			}
			sort.Slice(flat, func(i, j int) bool { return flat[i].Destination < flat[j].Destination })
			if err := st.SaveContributions(ctx, runID, huc8, flat); err != nil {
				return eris.Wrapf(err, "contrib: save %s", huc8)
			}
			zap.L().Info("contributions saved",
				zap.String("run_id", runID),
				zap.Int("destinations", len(flat)),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "contrib: encode results")
		}

		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "no external inflows found for %s\n", huc8)
		}
		return nil
	},
}

func init() {
	contribCmd.Flags().Bool("save", false, "persist results to the contributions table")
	rootCmd.AddCommand(contribCmd)
}
