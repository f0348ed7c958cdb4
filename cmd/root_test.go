package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaXxl/LysToolBox/internal/config"
	"github.com/ChaXxl/LysToolBox/internal/dataset"
	"github.com/ChaXxl/LysToolBox/internal/model"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"intercept", "merge", "incremental", "stats",
		"export-empty", "db", "serve", "images", "keywords",
	}

	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], "command %s not registered", name)
	}
}

func TestDBSubcommands(t *testing.T) {
	have := map[string]bool{}
	for _, c := range dbCmd.Commands() {
		have[c.Name()] = true
	}
	assert.True(t, have["push"])
	assert.True(t, have["fill"])
}

func TestDatasetPath(t *testing.T) {
	cfg = &config.Config{}
	cfg.Dataset.Dir = "数据集"
	assert.Equal(t, filepath.Join("数据集", "感冒灵.xlsx"), datasetPath("感冒灵"))
}

func TestMergeCommand(t *testing.T) {
	cfg = &config.Config{}

	dir := t.TempDir()
	for _, name := range []string{"a.xlsx", "b.xlsx"} {
		ds, err := dataset.Load(filepath.Join(dir, name))
		require.NoError(t, err)
		dataset.Merge(ds, []model.Row{
			{StoreName: "康健大药房", ProductName: "感冒灵", Price: "15.80", Platform: model.PlatformTaobao},
		})
		require.NoError(t, ds.Save())
	}

	mergeDir = dir
	mergeOut = filepath.Join(t.TempDir(), "merged.xlsx")
	require.NoError(t, mergeCmd.RunE(mergeCmd, nil))

	merged, err := dataset.Load(mergeOut)
	require.NoError(t, err)
	// The same observation from both files collapses to one row.
	assert.Len(t, merged.Rows, 1)
}

func TestExportEmptyCommand(t *testing.T) {
	cfg = &config.Config{}

	dir := t.TempDir()
	ds, err := dataset.Load(filepath.Join(dir, "感冒灵.xlsx"))
	require.NoError(t, err)
	dataset.Merge(ds, []model.Row{
		{StoreName: "康健大药房", ProductName: "感冒灵", Platform: model.PlatformTaobao, Qualification: "康健医药有限公司"},
		{StoreName: "药无忧大药房", ProductName: "感冒灵", Platform: model.PlatformJD},
	})
	require.NoError(t, ds.Save())

	exportEmptyDir = dir
	exportEmptyOut = filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, exportEmptyCmd.RunE(exportEmptyCmd, nil))

	out, err := dataset.Load(exportEmptyOut)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "药无忧大药房", out.Rows[0].StoreName)
}
