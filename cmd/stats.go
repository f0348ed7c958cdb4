package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
)

var statsDir string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-workbook totals and qualification gaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := statsDir
		if dir == "" {
			dir = cfg.Dataset.Dir
		}

		stats, err := dataset.Stats(dir)
		if err != nil {
			return err
		}

		total, missing := 0, 0
		for _, fs := range stats {
			total += fs.Total
			missing += fs.MissingQual

			fmt.Printf("%s: %d 行, %d 行缺少资质名称\n", fs.Name, fs.Total, fs.MissingQual)
			platforms := make([]string, 0, len(fs.MissingByPlatform))
			for p := range fs.MissingByPlatform {
				platforms = append(platforms, p)
			}
			sort.Strings(platforms)
			for _, p := range platforms {
				fmt.Printf("  %s: %d\n", p, fs.MissingByPlatform[p])
			}
		}
		fmt.Printf("合计: %d 个文件, %d 行, %d 行缺少资质名称\n", len(stats), total, missing)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDir, "dir", "", "workbook directory (default from config)")
	rootCmd.AddCommand(statsCmd)
}
