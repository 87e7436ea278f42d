package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/store"
	"github.com/riverscapes/watershed-cli/internal/wbd"
)

var wbdloadCmd = &cobra.Command{
	Use:   "wbdload",
	Short: "Load WBD HUC12 units into the store",
	Long: `Downloads USGS Watershed Boundary Dataset archives per 2-digit hydrologic
region and loads their HUC12 drainage units. Required before any
contributing-area query can run.

By default loads all 22 regions. Use --regions to restrict.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		showStatus, _ := cmd.Flags().GetBool("status")
		if showStatus {
			return printLoadStatus(ctx, st)
		}

		regionsStr, _ := cmd.Flags().GetString("regions")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		incremental, _ := cmd.Flags().GetBool("incremental")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		opts := wbd.LoadOptions{
			TempDir:     cfg.WBD.TempDir,
			RatePerSec:  cfg.WBD.RatePerSec,
			Concurrency: concurrency,
			Incremental: incremental,
			DryRun:      dryRun,
		}

		if regionsStr != "" {
			opts.Regions = splitAndTrim(regionsStr)
		} else if len(cfg.WBD.Regions) > 0 {
			opts.Regions = cfg.WBD.Regions
		}
		if opts.Concurrency == 0 {
			opts.Concurrency = cfg.WBD.Concurrency
		}

		zap.L().Info("starting WBD load",
			zap.Strings("regions", opts.Regions),
			zap.Bool("incremental", opts.Incremental),
			zap.Bool("dry_run", opts.DryRun),
			zap.Int("concurrency", opts.Concurrency),
		)

		if err := wbd.Load(ctx, st, opts); err != nil {
			return eris.Wrap(err, "wbdload")
		}

		fmt.Println("WBD load complete")
		return nil
	},
}

func init() {
	wbdloadCmd.Flags().String("regions", "", "comma-separated HU2 region codes (default: all 22)")
	wbdloadCmd.Flags().Bool("incremental", true, "skip already-loaded regions")
	wbdloadCmd.Flags().Bool("dry-run", false, "download and parse without loading")
	wbdloadCmd.Flags().Int("concurrency", 0, "parallel region downloads (default: from config)")
	wbdloadCmd.Flags().Bool("status", false, "show current load status")
	rootCmd.AddCommand(wbdloadCmd)
}

// printLoadStatus displays the per-region load status table.
func printLoadStatus(ctx context.Context, st store.Store) error {
	status, err := st.LoadStatus(ctx)
	if err != nil {
		return eris.Wrap(err, "wbdload: get status")
	}
	if len(status) == 0 {
		fmt.Println("no regions loaded")
		return nil
	}

	fmt.Printf("%-8s %-22s %10s %12s %s\n", "REGION", "NAME", "UNITS", "DURATION", "LOADED AT")
	for _, sr := range status {
		name, _ := wbd.RegionName(sr.Region)
		fmt.Printf("%-8s %-22s %10d %10dms %s\n",
			sr.Region, name, sr.RowCount, sr.DurationMs,
			sr.LoadedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}
