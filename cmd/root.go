package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lystoolbox",
	Short: "Pharmacy storefront price and qualification auditing",
	Long:  "Captures marketplace search traffic through a forwarding proxy, extracts competing drugstore listings per platform, and maintains deduplicated per-keyword audit workbooks with business-licence backfill.",
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
