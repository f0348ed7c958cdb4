package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/ChaXxl/LysToolBox/internal/model"
	"github.com/ChaXxl/LysToolBox/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadMedicines reads the medicine ID table if one is configured; a missing
// file just disables the lookup.
func loadMedicines() (*model.MedicineIndex, error) {
	path := cfg.Dataset.MedicineFile
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return model.LoadMedicineIndex(path)
}

// datasetPath returns the workbook path for a keyword.
func datasetPath(keyword string) string {
	return filepath.Join(cfg.Dataset.Dir, keyword+".xlsx")
}
