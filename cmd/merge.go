package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
)

var (
	mergeDir string
	mergeOut string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Combine every keyword workbook in a directory into one deduplicated workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := mergeDir
		if dir == "" {
			dir = cfg.Dataset.Dir
		}

		rows, err := dataset.LoadDir(dir)
		if err != nil {
			return err
		}
		combined := dataset.Combine(rows)

		out := &dataset.Dataset{Path: mergeOut, Rows: combined}
		if err := out.Save(); err != nil {
			return err
		}

		zap.L().Info("merged workbooks",
			zap.String("dir", dir),
			zap.String("out", mergeOut),
			zap.Int("rows_in", len(rows)),
			zap.Int("rows_out", len(combined)),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeDir, "dir", "", "workbook directory (default from config)")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "merged.xlsx", "output workbook")
	rootCmd.AddCommand(mergeCmd)
}
