package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
)

var (
	incrementalBase    string
	incrementalUpdated string
	incrementalOut     string
)

var incrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Extract rows present in an updated workbook but not in the baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if incrementalBase == "" || incrementalUpdated == "" {
			return eris.New("--base and --updated are required")
		}

		base, err := dataset.Load(incrementalBase)
		if err != nil {
			return err
		}
		updated, err := dataset.Load(incrementalUpdated)
		if err != nil {
			return err
		}

		diff := dataset.Incremental(base.Rows, updated.Rows)

		out := &dataset.Dataset{Path: incrementalOut, Rows: diff}
		if err := out.Save(); err != nil {
			return err
		}

		zap.L().Info("incremental diff written",
			zap.String("out", incrementalOut),
			zap.Int("rows", len(diff)),
		)
		return nil
	},
}

func init() {
	incrementalCmd.Flags().StringVar(&incrementalBase, "base", "", "baseline workbook")
	incrementalCmd.Flags().StringVar(&incrementalUpdated, "updated", "", "updated workbook")
	incrementalCmd.Flags().StringVar(&incrementalOut, "out", "incremental.xlsx", "output workbook")
	rootCmd.AddCommand(incrementalCmd)
}
