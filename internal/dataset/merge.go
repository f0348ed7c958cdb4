package dataset

import (
	"github.com/lithammer/shortuuid/v4"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// MergeResult reports the outcome of merging candidates into a dataset.
type MergeResult struct {
	Inserted int
	Total    int
}

// Merge inserts the given rows into the dataset, dropping any whose
// identity key is already present — in the dataset or earlier in the same
// batch. Genuinely new rows receive a fresh short UUID. Dropping duplicates
// is the expected steady state on repeat captures, so it is silent here;
// the caller decides what to log from the counts.
//
// Merging the same rows twice inserts nothing the second time, and the
// final row set does not depend on the order rows arrive in.
func Merge(ds *Dataset, rows []model.Row) MergeResult {
	seen := make(map[model.IdentityKey]struct{}, len(ds.Rows))
	for _, r := range ds.Rows {
		seen[r.Key()] = struct{}{}
	}

	inserted := 0
	for _, r := range rows {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		r.UUID = shortuuid.New()
		ds.Rows = append(ds.Rows, r)
		inserted++
	}

	return MergeResult{Inserted: inserted, Total: len(ds.Rows)}
}
