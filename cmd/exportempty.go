package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
)

var (
	exportEmptyDir string
	exportEmptyOut string
)

var exportEmptyCmd = &cobra.Command{
	Use:   "export-empty",
	Short: "Collect rows with a blank qualification name across all workbooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportEmptyDir
		if dir == "" {
			dir = cfg.Dataset.Dir
		}

		rows, err := dataset.ExportEmpty(dir)
		if err != nil {
			return err
		}

		out := &dataset.Dataset{Path: exportEmptyOut, Rows: rows}
		if err := out.Save(); err != nil {
			return err
		}

		zap.L().Info("empty-qualification rows exported",
			zap.String("out", exportEmptyOut),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	exportEmptyCmd.Flags().StringVar(&exportEmptyDir, "dir", "", "workbook directory (default from config)")
	exportEmptyCmd.Flags().StringVar(&exportEmptyOut, "out", "empty_qualification.xlsx", "output workbook")
	rootCmd.AddCommand(exportEmptyCmd)
}
