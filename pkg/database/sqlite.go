package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	// Path is a file path or ":memory:".
	Path string
}

// OpenSQLite opens the pure-Go SQLite driver with WAL journaling and a busy
// timeout, then pings it. In-memory databases are pinned to one connection
// since each connection would otherwise see its own empty database.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sql.DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}

	memory := path == ":memory:"
	dsn := path
	if !memory {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
