package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "keywords.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t, "Sheet1", [][]string{
		{"关键词", "备注"},
		{"安徽 三九 感冒灵", "重点"},
		{"一口 良药 止咳糖浆", ""},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "关键词", rows[0][0])

	rows, err = ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "安徽 三九 感冒灵", rows[0][0])
}

func TestReadXLSXSheetSelection(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t, "关键词表", [][]string{{"a"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "不存在"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "关键词表"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadKeywordList(t *testing.T) {
	t.Parallel()

	path := writeTestWorkbook(t, "Sheet1", [][]string{
		{"关键词"},
		{"安徽 三九 感冒灵"},
		{"  "},
		{},
		{"一口 良药 止咳糖浆"},
	})

	keywords, err := ReadKeywordList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"安徽 三九 感冒灵", "一口 良药 止咳糖浆"}, keywords)
}

func TestReadXLSXMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
