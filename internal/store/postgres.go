package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ChaXxl/LysToolBox/internal/db"
)

// Pool is the subset of pgxpool.Pool the store uses, so tests can swap in
// a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool

	// raw is set on real connections and enables the COPY-based bulk
	// path; mocks leave it nil and take the row-at-a-time path.
	raw *pgxpool.Pool
}

// bulkThreshold is the batch size past which SaveStoreInfo switches to
// COPY into a temp table.
const bulkThreshold = 500

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, raw: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS store_info (
	id                 UUID PRIMARY KEY,
	store_name         TEXT NOT NULL,
	store_homepage     TEXT NOT NULL DEFAULT '',
	qualification_name TEXT NOT NULL DEFAULT '',
	license_image      TEXT NOT NULL DEFAULT '',
	platform           TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (store_name, store_homepage, qualification_name, platform)
);

CREATE INDEX IF NOT EXISTS idx_store_info_platform ON store_info(platform);
CREATE INDEX IF NOT EXISTS idx_store_info_store_name ON store_info(store_name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveStoreInfo(ctx context.Context, infos []StoreInfo) (int, error) {
	if s.raw != nil && len(infos) >= bulkThreshold {
		return s.bulkSave(ctx, infos)
	}

	inserted := 0
	for _, info := range infos {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO store_info (id, store_name, store_homepage, qualification_name, license_image, platform)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (store_name, store_homepage, qualification_name, platform) DO NOTHING`,
			uuid.New().String(), info.StoreName, info.Homepage,
			info.QualificationName, info.LicenseImage, info.Platform,
		)
		if err != nil {
			return inserted, eris.Wrapf(err, "postgres: insert store %s", info.StoreName)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PostgresStore) bulkSave(ctx context.Context, infos []StoreInfo) (int, error) {
	rows := make([][]any, len(infos))
	for i, info := range infos {
		rows[i] = []any{
			uuid.New().String(), info.StoreName, info.Homepage,
			info.QualificationName, info.LicenseImage, info.Platform,
		}
	}

	n, err := db.BulkInsertIgnore(ctx, s.raw, db.InsertIgnoreConfig{
		Table:        "store_info",
		Columns:      []string{"id", "store_name", "store_homepage", "qualification_name", "license_image", "platform"},
		ConflictKeys: []string{"store_name", "store_homepage", "qualification_name", "platform"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert store info")
	}
	return int(n), nil
}

func (s *PostgresStore) QualificationFor(ctx context.Context, storeName, platform string) (*StoreInfo, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT store_name, store_homepage, qualification_name, license_image, platform
		FROM store_info
		WHERE store_name = $1 AND platform = $2 AND qualification_name != ''
		ORDER BY created_at DESC LIMIT 1`,
		storeName, platform,
	)

	var info StoreInfo
	err := row.Scan(&info.StoreName, &info.Homepage, &info.QualificationName, &info.LicenseImage, &info.Platform)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: qualification for %s", storeName)
	}
	return &info, nil
}

func (s *PostgresStore) ListStoreInfo(ctx context.Context, filter InfoFilter) ([]StoreInfo, error) {
	query := `SELECT store_name, store_homepage, qualification_name, license_image, platform FROM store_info WHERE 1=1`
	var args []any

	if filter.Platform != "" {
		args = append(args, filter.Platform)
		query += ` AND platform = $1`
	}
	query += ` ORDER BY store_name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list store info")
	}
	defer rows.Close()

	var out []StoreInfo
	for rows.Next() {
		var info StoreInfo
		if err := rows.Scan(&info.StoreName, &info.Homepage, &info.QualificationName, &info.LicenseImage, &info.Platform); err != nil {
			return nil, eris.Wrap(err, "postgres: scan store info")
		}
		out = append(out, info)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate store info")
}

func (s *PostgresStore) CountByPlatform(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT platform, COUNT(*) FROM store_info GROUP BY platform`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by platform")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var platform string
		var n int64
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan count")
		}
		out[platform] = int(n)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate counts")
}
