package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/services/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

// newTestBridge returns a bridge over a fresh in-memory store together with
// the store so tests can inspect or seed raw values.
func newTestBridge(t *testing.T) (*storage.Bridge, *memory.KVStore) {
	t.Helper()
	store := memory.NewKVStore()
	return storage.NewBridge(store, nil), store
}

func seedRaw(t *testing.T, store *memory.KVStore, key, value string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), key, []byte(value)))
}
