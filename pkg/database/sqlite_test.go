package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(context.Background(), SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE t (v TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (v) VALUES ('marble')")
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRow("SELECT v FROM t").Scan(&v))
	assert.Equal(t, "marble", v)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	db, err := OpenSQLite(context.Background(), SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), SQLiteConfig{Path: "  "})
	require.Error(t, err)
}
