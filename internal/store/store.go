// Package store persists storefront qualification records in a database,
// mirroring what the workbooks hold. The database is the cross-audit
// archive; workbooks remain the per-keyword working copies.
package store

import (
	"context"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// StoreInfo is one storefront qualification record.
type StoreInfo struct {
	StoreName         string `json:"store_name"`
	Homepage          string `json:"store_homepage"`
	QualificationName string `json:"qualification_name"`
	LicenseImage      string `json:"license_image"`
	Platform          string `json:"platform"`
}

// InfoFilter specifies criteria for listing store records.
type InfoFilter struct {
	Platform string `json:"platform,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for storefront records.
type Store interface {
	// SaveStoreInfo inserts records, silently skipping ones already
	// present under (store_name, store_homepage, qualification_name,
	// platform). It returns the number actually inserted.
	SaveStoreInfo(ctx context.Context, infos []StoreInfo) (int, error)

	// QualificationFor returns the archived record for a storefront on a
	// platform, or nil when none is known.
	QualificationFor(ctx context.Context, storeName, platform string) (*StoreInfo, error)

	ListStoreInfo(ctx context.Context, filter InfoFilter) ([]StoreInfo, error)
	CountByPlatform(ctx context.Context) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// FromRows projects dataset rows onto store records, dropping rows with no
// storefront name and collapsing in-batch duplicates.
func FromRows(rows []model.Row) []StoreInfo {
	type key struct{ store, home, qual, platform string }
	seen := make(map[key]struct{}, len(rows))

	var out []StoreInfo
	for _, r := range rows {
		if r.StoreName == "" {
			continue
		}
		k := key{r.StoreName, r.StoreURL, r.Qualification, r.Platform}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, StoreInfo{
			StoreName:         r.StoreName,
			Homepage:          r.StoreURL,
			QualificationName: r.Qualification,
			LicenseImage:      r.LicenseImage,
			Platform:          r.Platform,
		})
	}
	return out
}
