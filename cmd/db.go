package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dataset"
	"github.com/ChaXxl/LysToolBox/internal/store"
)

var dbDir string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Sync workbooks with the store_info database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Run the root setup first; cobra only calls the nearest hook.
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("db")
	},
}

var dbPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Insert storefront records from workbooks, skipping ones already archived",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		dir := dbDir
		if dir == "" {
			dir = cfg.Dataset.Dir
		}
		rows, err := dataset.LoadDir(dir)
		if err != nil {
			return err
		}

		infos := store.FromRows(rows)
		inserted, err := st.SaveStoreInfo(ctx, infos)
		if err != nil {
			return err
		}

		zap.L().Info("store records pushed",
			zap.Int("candidates", len(infos)),
			zap.Int("inserted", inserted),
		)
		return nil
	},
}

var dbFillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Backfill blank qualification names in workbooks from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		dir := dbDir
		if dir == "" {
			dir = cfg.Dataset.Dir
		}
		files, err := dataset.ListFiles(dir)
		if err != nil {
			return err
		}

		filled := 0
		for _, path := range files {
			ds, err := dataset.Load(path)
			if err != nil {
				return err
			}

			changed := false
			for i := range ds.Rows {
				if ds.Rows[i].Qualification != "" {
					continue
				}
				info, err := st.QualificationFor(ctx, ds.Rows[i].StoreName, ds.Rows[i].Platform)
				if err != nil {
					return err
				}
				if info == nil {
					continue
				}
				ds.Rows[i].Qualification = info.QualificationName
				if ds.Rows[i].LicenseImage == "" {
					ds.Rows[i].LicenseImage = info.LicenseImage
				}
				filled++
				changed = true
			}

			if changed {
				if err := ds.Save(); err != nil {
					return err
				}
			}
		}

		zap.L().Info("qualifications backfilled",
			zap.Int("files", len(files)),
			zap.Int("rows", filled),
		)
		return nil
	},
}

func init() {
	dbCmd.PersistentFlags().StringVar(&dbDir, "dir", "", "workbook directory (default from config)")
	dbCmd.AddCommand(dbPushCmd)
	dbCmd.AddCommand(dbFillCmd)
	rootCmd.AddCommand(dbCmd)
}
