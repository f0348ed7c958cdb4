// Package images mirrors the licence and product photos referenced by
// dataset rows onto local disk, shrunk to thumbnail size, and embeds them
// into the workbooks the audit reports are delivered in.
package images

import (
	"context"
	"crypto/sha1"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ChaXxl/LysToolBox/internal/fetcher"
)

// Options configures the downloader.
type Options struct {
	Dir         string
	Concurrency int
	MaxWidth    int
	MaxHeight   int
}

// Downloader fetches remote images and stores rescaled PNG copies.
type Downloader struct {
	f    fetcher.Fetcher
	opts Options
	log  *zap.Logger
}

// NewDownloader builds a downloader storing images under opts.Dir.
func NewDownloader(f fetcher.Fetcher, opts Options) *Downloader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 200
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 200
	}
	return &Downloader{
		f:    f,
		opts: opts,
		log:  zap.L().With(zap.String("component", "images")),
	}
}

// LocalPath returns where the local copy of a URL lives. The name is a
// digest of the URL, so repeated runs reuse existing files.
func (d *Downloader) LocalPath(url string) string {
	return filepath.Join(d.opts.Dir, fmt.Sprintf("%x.png", sha1.Sum([]byte(url))))
}

// DownloadAll mirrors every URL, skipping ones already on disk. It returns
// the URL-to-path mapping for the images that made it; individual download
// failures are logged and leave the URL out of the map.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) (map[string]string, error) {
	if err := os.MkdirAll(d.opts.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "images: create dir %s", d.opts.Dir)
	}

	var mu sync.Mutex
	paths := make(map[string]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)

	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		g.Go(func() error {
			path, err := d.download(ctx, url)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				d.log.Warn("image download failed", zap.String("url", url), zap.Error(err))
				return nil
			}
			mu.Lock()
			paths[url] = path
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return paths, eris.Wrap(err, "images: download all")
	}
	return paths, nil
}

func (d *Downloader) download(ctx context.Context, url string) (string, error) {
	path := d.LocalPath(url)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	body, err := d.f.Download(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		return "", eris.Wrapf(err, "images: decode %s", url)
	}

	thumb := resize.Thumbnail(uint(d.opts.MaxWidth), uint(d.opts.MaxHeight), img, resize.Lanczos3)

	out, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "images: create %s", path)
	}
	defer out.Close()

	if err := png.Encode(out, thumb); err != nil {
		os.Remove(path)
		return "", eris.Wrapf(err, "images: encode %s", path)
	}
	return path, nil
}

// Embed places a local image into a workbook cell, scaled to fit the row.
func Embed(f *excelize.File, sheet, cell, path string) error {
	err := f.AddPicture(sheet, cell, path, &excelize.GraphicOptions{
		ScaleX:          0.5,
		ScaleY:          0.5,
		LockAspectRatio: true,
	})
	return eris.Wrapf(err, "images: embed %s at %s", path, cell)
}
