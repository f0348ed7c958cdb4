// Package fetcher downloads remote artefacts referenced by dataset rows:
// licence photos, product images, and shared audit workbooks. Platform CDN
// hosts get per-host rate limits so a bulk image pull never trips their
// abuse thresholds.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
