package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the SQL migrations for the storefront_kv table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db database.TxBeginner, logger *slog.Logger) error {
	return database.RunMigrations(ctx, db, Migrations(), logger)
}

const (
	getSQL    = `SELECT value FROM storefront_kv WHERE key = $1`
	upsertSQL = `INSERT INTO storefront_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteSQL = `DELETE FROM storefront_kv WHERE key = $1`
)

// KVStore implements repository.KVStore on PostgreSQL.
type KVStore struct {
	db database.DBTX
}

// NewKVStore creates a new PostgreSQL-backed store.
func NewKVStore(db database.DBTX) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) (value []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.Get", getSQL)
	defer func() { end(err) }()

	err = s.db.QueryRow(ctx, getSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.Set", upsertSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgresql", "kv.Delete", deleteSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
