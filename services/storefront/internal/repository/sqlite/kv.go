package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/database"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

const (
	getSQL    = `SELECT value FROM kv_entries WHERE key = ?`
	upsertSQL = `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteSQL = `DELETE FROM kv_entries WHERE key = ?`
)

// KVStore implements repository.KVStore on an embedded SQLite database.
type KVStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVStore creates the kv_entries table if needed and returns the store.
func NewKVStore(ctx context.Context, db *sql.DB) (*KVStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create kv_entries table: %w", err)
	}
	return &KVStore{db: db, now: time.Now}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (value []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.Get", getSQL)
	defer func() { end(err) }()

	err = s.db.QueryRowContext(ctx, getSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.Set", upsertSQL)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, upsertSQL, key, value, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "sqlite", "kv.Delete", deleteSQL)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
