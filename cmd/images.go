package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
	"github.com/ChaXxl/LysToolBox/internal/fetcher"
	"github.com/ChaXxl/LysToolBox/internal/images"
)

var (
	imagesFile  string
	imagesEmbed bool
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Mirror the licence and product images a workbook references",
	Long:  "Downloads every image URL in a workbook into the local image directory as a thumbnail, and can embed the licence photos into the workbook itself for the delivered report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if imagesFile == "" {
			return eris.New("--file is required")
		}
		ctx := cmd.Context()

		ds, err := dataset.Load(imagesFile)
		if err != nil {
			return err
		}

		var urls []string
		for _, r := range ds.Rows {
			urls = append(urls, r.LicenseImage, r.Image)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: limitersFromConfig(),
		})
		dl := images.NewDownloader(f, images.Options{
			Dir:         cfg.Images.Dir,
			Concurrency: cfg.Images.Concurrency,
			MaxWidth:    cfg.Images.MaxWidth,
			MaxHeight:   cfg.Images.MaxHeight,
		})

		paths, err := dl.DownloadAll(ctx, urls)
		if err != nil {
			return err
		}
		zap.L().Info("images mirrored",
			zap.Int("referenced", len(urls)),
			zap.Int("downloaded", len(paths)),
		)

		if !imagesEmbed {
			return nil
		}
		return embedLicences(imagesFile, ds, paths)
	},
}

// limitersFromConfig combines the per-CDN defaults with the configured
// overall rate as the fallback for unlisted hosts.
func limitersFromConfig() map[string]*rate.Limiter {
	limiters := fetcher.DefaultRateLimiters()
	if cfg.Images.RatePerSec > 0 {
		for host := range limiters {
			limiters[host] = rate.NewLimiter(rate.Limit(cfg.Images.RatePerSec), int(cfg.Images.RatePerSec)+1)
		}
	}
	return limiters
}

// embedLicences drops the mirrored licence thumbnails into the workbook's
// 营业执照图片 column.
func embedLicences(path string, ds *dataset.Dataset, local map[string]string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return eris.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	embedded := 0
	for i, r := range ds.Rows {
		img, ok := local[r.LicenseImage]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(5, i+2)
		if err != nil {
			return eris.Wrap(err, "cell name")
		}
		if err := images.Embed(f, sheet, cell, img); err != nil {
			return err
		}
		embedded++
	}

	if err := f.Save(); err != nil {
		return eris.Wrapf(err, "save workbook %s", path)
	}
	zap.L().Info("licence images embedded", zap.Int("rows", embedded))
	return nil
}

func init() {
	imagesCmd.Flags().StringVar(&imagesFile, "file", "", "workbook to mirror images for")
	imagesCmd.Flags().BoolVar(&imagesEmbed, "embed", false, "embed licence thumbnails into the workbook")
	rootCmd.AddCommand(imagesCmd)
}
