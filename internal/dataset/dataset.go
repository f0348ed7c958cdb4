// Package dataset owns the per-keyword observation workbooks: loading,
// identity-key merging, in-place qualification patching, and the
// reconciliation utilities built on top of them.
package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

const sheetName = "Sheet1"

// Dataset is one keyword's observations, backed by a workbook on disk.
type Dataset struct {
	Path string
	Rows []model.Row
}

// Load opens a keyword dataset. A missing file is an empty dataset, not an
// error: first capture for a keyword creates it on save.
func Load(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Dataset{Path: path}, nil
		}
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read rows of %s", path)
	}

	ds := &Dataset{Path: path}
	for i, cells := range rows {
		if i == 0 {
			if len(cells) == 0 || cells[0] != model.Header[0] {
				return nil, eris.Errorf("dataset: %s has no recognizable header row", path)
			}
			continue
		}
		if isBlank(cells) {
			continue
		}
		ds.Rows = append(ds.Rows, model.RowFromCells(cells))
	}
	return ds, nil
}

// Save persists the dataset, platform-sorted for deterministic output. The
// workbook is written to a sibling temp file and renamed over the previous
// one so a crash mid-write leaves the last good file intact.
func (d *Dataset) Save() error {
	sort.SliceStable(d.Rows, func(i, j int) bool {
		return d.Rows[i].Platform < d.Rows[j].Platform
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, model.Header); err != nil {
		return err
	}
	for i, row := range d.Rows {
		if err := setRow(f, i+2, row.Cells()); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return eris.Wrapf(err, "dataset: create dir for %s", d.Path)
	}

	// excelize rejects filenames without a workbook extension, so the
	// temp file keeps .xlsx.
	tmp := d.Path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return eris.Wrapf(err, "dataset: write %s", tmp)
	}
	if err := os.Rename(tmp, d.Path); err != nil {
		return eris.Wrapf(err, "dataset: replace %s", d.Path)
	}
	return nil
}

// PatchQualification sets the qualification name (and licence image, when
// given) on every row whose store name matches. Returns how many rows were
// touched; zero means the store has no observations yet.
func (d *Dataset) PatchQualification(storeName, company, licenseImage string) int {
	patched := 0
	for i := range d.Rows {
		if d.Rows[i].StoreName != storeName {
			continue
		}
		d.Rows[i].Qualification = company
		if licenseImage != "" {
			d.Rows[i].LicenseImage = licenseImage
		}
		patched++
	}
	return patched
}

func setRow(f *excelize.File, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return eris.Wrap(err, "dataset: cell name")
	}
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
		return eris.Wrapf(err, "dataset: set row %d", rowNum)
	}
	return nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
