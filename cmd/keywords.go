package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ChaXxl/LysToolBox/internal/fetcher"
)

var keywordsFile string

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the keywords in a sweep workbook and their capture status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if keywordsFile == "" {
			return eris.New("--file is required")
		}

		keywords, err := fetcher.ReadKeywordList(keywordsFile)
		if err != nil {
			return err
		}

		done := 0
		for _, kw := range keywords {
			if _, err := os.Stat(datasetPath(kw)); err == nil {
				done++
				fmt.Printf("✓ %s\n", kw)
			} else {
				fmt.Printf("  %s\n", kw)
			}
		}
		fmt.Printf("%d/%d 个关键词已有数据集\n", done, len(keywords))
		return nil
	},
}

func init() {
	keywordsCmd.Flags().StringVar(&keywordsFile, "file", "", "keyword workbook")
	rootCmd.AddCommand(keywordsCmd)
}
