package dataset

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// skipMarkers identify workbooks in a dataset directory that are not
// keyword datasets: Excel lock files, orphaned save temp files, and the
// operator's manual worksheets.
var skipMarkers = []string{"~", ".tmp", "对照", "排查"}

// ListFiles returns the keyword dataset files in a directory, sorted.
func ListFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: glob %s", dir)
	}

	var files []string
	for _, path := range matches {
		stem := strings.TrimSuffix(filepath.Base(path), ".xlsx")
		skip := false
		for _, marker := range skipMarkers {
			if strings.Contains(stem, marker) {
				skip = true
				break
			}
		}
		if !skip {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads every keyword dataset in a directory into one row slice.
// Unreadable files abort: a half-merged reconciliation is worse than none.
func LoadDir(dir string) ([]model.Row, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var rows []model.Row
	for _, path := range files {
		ds, err := Load(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ds.Rows...)
	}
	return rows, nil
}

// Combine deduplicates rows by full cell contents, preserving first
// occurrence order. This is the cross-keyword merge: identity keys are
// per-keyword, so here only exact duplicates collapse.
func Combine(rows []model.Row) []model.Row {
	seen := make(map[model.Row]struct{}, len(rows))
	var out []model.Row
	for _, r := range rows {
		probe := r
		probe.UUID = ""
		if _, dup := seen[probe]; dup {
			continue
		}
		seen[probe] = struct{}{}
		out = append(out, r)
	}
	return out
}

// incrementalKey identifies a row for dataset-to-dataset diffing. Prices
// and capture dates vary between audit rounds and are deliberately left
// out, unlike the merge identity key.
type incrementalKey struct {
	store, homepage, qualification, product, platform string
}

// Incremental returns the rows of updated that have no counterpart in base.
func Incremental(base, updated []model.Row) []model.Row {
	known := make(map[incrementalKey]struct{}, len(base))
	for _, r := range base {
		known[incKey(r)] = struct{}{}
	}

	var out []model.Row
	for _, r := range updated {
		if _, ok := known[incKey(r)]; !ok {
			out = append(out, r)
		}
	}
	return out
}

func incKey(r model.Row) incrementalKey {
	return incrementalKey{
		store:         r.StoreName,
		homepage:      r.StoreURL,
		qualification: r.Qualification,
		product:       r.ProductName,
		platform:      r.Platform,
	}
}

// FileStats summarizes one keyword dataset for the audit overview.
type FileStats struct {
	Name              string         `json:"name"`
	Total             int            `json:"total"`
	MissingQual       int            `json:"missing_qualification"`
	MissingByPlatform map[string]int `json:"missing_by_platform,omitempty"`
}

// Stats computes per-file totals and qualification gaps for a directory.
func Stats(dir string) ([]FileStats, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var out []FileStats
	for _, path := range files {
		ds, err := Load(path)
		if err != nil {
			return nil, err
		}

		fs := FileStats{
			Name:              strings.TrimSuffix(filepath.Base(path), ".xlsx"),
			Total:             len(ds.Rows),
			MissingByPlatform: map[string]int{},
		}
		for _, r := range ds.Rows {
			if strings.TrimSpace(r.Qualification) == "" {
				fs.MissingQual++
				fs.MissingByPlatform[r.Platform]++
			}
		}
		if fs.MissingQual == 0 {
			fs.MissingByPlatform = nil
		}
		out = append(out, fs)
	}
	return out, nil
}

// ExportEmpty collects the rows with a blank qualification name across a
// directory, exact duplicates removed.
func ExportEmpty(dir string) ([]model.Row, error) {
	rows, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	var empty []model.Row
	for _, r := range rows {
		if strings.TrimSpace(r.Qualification) == "" {
			empty = append(empty, r)
		}
	}
	return Combine(empty), nil
}
