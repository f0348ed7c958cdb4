package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleInfos() []StoreInfo {
	return []StoreInfo{
		{
			StoreName:         "康健大药房",
			Homepage:          "https://store.taobao.com/shop/1.htm",
			QualificationName: "康健医药有限公司",
			LicenseImage:      "https://img.example.com/licence1.jpg",
			Platform:          model.PlatformTaobao,
		},
		{
			StoreName:         "药无忧大药房",
			Homepage:          "https://mall.jd.com/index-1000001.html",
			QualificationName: "某某医药有限公司",
			Platform:          model.PlatformJD,
		},
		{
			StoreName: "仁和堂药店",
			Homepage:  "https://mall.jd.com/index-1000002.html",
			Platform:  model.PlatformJD,
		},
	}
}

func TestSQLiteSaveStoreInfo(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.SaveStoreInfo(ctx, sampleInfos())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Saving the same batch again inserts nothing.
	n, err = s.SaveStoreInfo(ctx, sampleInfos())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A changed qualification is a distinct record.
	changed := sampleInfos()[:1]
	changed[0].QualificationName = "康健医药连锁有限公司"
	n, err = s.SaveStoreInfo(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteSaveStoreInfoEmpty(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)

	n, err := s.SaveStoreInfo(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteQualificationFor(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveStoreInfo(ctx, sampleInfos())
	require.NoError(t, err)

	info, err := s.QualificationFor(ctx, "药无忧大药房", model.PlatformJD)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "某某医药有限公司", info.QualificationName)

	// Records without a qualification never answer the lookup.
	info, err = s.QualificationFor(ctx, "仁和堂药店", model.PlatformJD)
	require.NoError(t, err)
	assert.Nil(t, info)

	// Platform is part of the key.
	info, err = s.QualificationFor(ctx, "药无忧大药房", model.PlatformTaobao)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestSQLiteListStoreInfo(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveStoreInfo(ctx, sampleInfos())
	require.NoError(t, err)

	all, err := s.ListStoreInfo(ctx, InfoFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	jd, err := s.ListStoreInfo(ctx, InfoFilter{Platform: model.PlatformJD})
	require.NoError(t, err)
	require.Len(t, jd, 2)
	for _, info := range jd {
		assert.Equal(t, model.PlatformJD, info.Platform)
	}

	paged, err := s.ListStoreInfo(ctx, InfoFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestSQLiteCountByPlatform(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveStoreInfo(ctx, sampleInfos())
	require.NoError(t, err)

	counts, err := s.CountByPlatform(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		model.PlatformJD:     2,
		model.PlatformTaobao: 1,
	}, counts)
}

func TestFromRows(t *testing.T) {
	t.Parallel()

	rows := []model.Row{
		{StoreName: "康健大药房", StoreURL: "https://a", Qualification: "康健医药有限公司", Platform: model.PlatformTaobao},
		{StoreName: "康健大药房", StoreURL: "https://a", Qualification: "康健医药有限公司", Platform: model.PlatformTaobao, ProductName: "另一个药"},
		{StoreName: "", StoreURL: "https://b", Platform: model.PlatformJD},
		{StoreName: "药无忧大药房", StoreURL: "https://c", Platform: model.PlatformJD},
	}

	infos := FromRows(rows)
	require.Len(t, infos, 2)
	assert.Equal(t, "康健大药房", infos[0].StoreName)
	assert.Equal(t, "药无忧大药房", infos[1].StoreName)
}
