package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS store_info (
	id                 TEXT PRIMARY KEY,
	store_name         TEXT NOT NULL,
	store_homepage     TEXT NOT NULL DEFAULT '',
	qualification_name TEXT NOT NULL DEFAULT '',
	license_image      TEXT NOT NULL DEFAULT '',
	platform           TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (store_name, store_homepage, qualification_name, platform)
);

CREATE INDEX IF NOT EXISTS idx_store_info_platform ON store_info(platform);
CREATE INDEX IF NOT EXISTS idx_store_info_store_name ON store_info(store_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveStoreInfo(ctx context.Context, infos []StoreInfo) (int, error) {
	if len(infos) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO store_info (id, store_name, store_homepage, qualification_name, license_image, platform)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (store_name, store_homepage, qualification_name, platform) DO NOTHING`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, info := range infos {
		res, err := stmt.ExecContext(ctx,
			uuid.New().String(), info.StoreName, info.Homepage,
			info.QualificationName, info.LicenseImage, info.Platform,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert store %s", info.StoreName)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return inserted, nil
}

func (s *SQLiteStore) QualificationFor(ctx context.Context, storeName, platform string) (*StoreInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT store_name, store_homepage, qualification_name, license_image, platform
		FROM store_info
		WHERE store_name = ? AND platform = ? AND qualification_name != ''
		ORDER BY created_at DESC LIMIT 1`,
		storeName, platform,
	)

	var info StoreInfo
	err := row.Scan(&info.StoreName, &info.Homepage, &info.QualificationName, &info.LicenseImage, &info.Platform)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: qualification for %s", storeName)
	}
	return &info, nil
}

func (s *SQLiteStore) ListStoreInfo(ctx context.Context, filter InfoFilter) ([]StoreInfo, error) {
	query := `SELECT store_name, store_homepage, qualification_name, license_image, platform FROM store_info WHERE 1=1`
	var args []any

	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	query += ` ORDER BY store_name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list store info")
	}
	defer rows.Close()

	var out []StoreInfo
	for rows.Next() {
		var info StoreInfo
		if err := rows.Scan(&info.StoreName, &info.Homepage, &info.QualificationName, &info.LicenseImage, &info.Platform); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan store info")
		}
		out = append(out, info)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate store info")
}

func (s *SQLiteStore) CountByPlatform(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT platform, COUNT(*) FROM store_info GROUP BY platform`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by platform")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan count")
		}
		out[platform] = n
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate counts")
}
