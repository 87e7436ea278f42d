package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "watershed-cli",
	Short: "Watershed topology loader and contributing-area queries",
	Long:  "Loads USGS Watershed Boundary Dataset HUC12 units into SQLite or Postgres and computes upstream contributing areas for HUC8 boundaries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
