package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

func TestLoad_MissingFileIsEmptyDataset(t *testing.T) {
	t.Parallel()

	ds, err := Load(filepath.Join(t.TempDir(), "感冒灵.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)
}

func TestDataset_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "安徽 立迪 感冒灵.xlsx")
	ds := &Dataset{Path: path}
	Merge(ds, []model.Row{
		obs("药无忧大药房", "安徽 立迪 感冒灵", "29.9", model.PlatformTaobao),
		obs("仁和大药房", "安徽 立迪 感冒灵", "19.9", model.PlatformJD),
	})
	require.NoError(t, ds.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 2)

	// Saved output is platform-sorted; compare as sets keyed by identity.
	byKey := map[model.IdentityKey]model.Row{}
	for _, r := range ds.Rows {
		byKey[r.Key()] = r
	}
	for _, r := range loaded.Rows {
		assert.Equal(t, byKey[r.Key()], r)
	}

	// 京东 sorts before 淘宝天猫.
	assert.Equal(t, model.PlatformJD, loaded.Rows[0].Platform)
}

func TestDataset_SaveWritesHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ds.xlsx")
	require.NoError(t, (&Dataset{Path: path}).Save())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, model.Header, rows[0])
}

func TestDataset_SaveLeavesNoTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ds.xlsx")
	ds := &Dataset{Path: path}
	Merge(ds, []model.Row{obs("店", "药", "1", model.PlatformJD)})
	require.NoError(t, ds.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ds.xlsx", entries[0].Name())
}

func TestDataset_SaveOverwritePreservesExistingRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ds.xlsx")

	ds := &Dataset{Path: path}
	Merge(ds, []model.Row{obs("店甲", "药", "1", model.PlatformJD)})
	require.NoError(t, ds.Save())

	// Second capture run: load, merge more, save again.
	ds2, err := Load(path)
	require.NoError(t, err)
	Merge(ds2, []model.Row{obs("店乙", "药", "2", model.PlatformMeituan)})
	require.NoError(t, ds2.Save())

	final, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, final.Rows, 2)
}

func TestLoad_WrongSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"序号", "名称"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_SkipsBlankRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ds.xlsx")
	f := excelize.NewFile()
	header := make([]any, len(model.Header))
	for i, h := range model.Header {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"id1", "店", "url", "", "", "药", "", "", "", "9.9", model.PlatformJD, "2026-08-28"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "店", ds.Rows[0].StoreName)
}
