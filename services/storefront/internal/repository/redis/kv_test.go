package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewKVStore(client, ttl), mr
}

func TestKVStore_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, mr.Set("storefront:visitor:v1:god-statues-cart", `[{"id":"1","quantity":2}]`))

	got, err := repo.Get(context.Background(), "visitor:v1:god-statues-cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","quantity":2}]`, string(got))
}

func TestKVStore_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t, time.Hour)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKVStore_Set_AppliesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t, 2*time.Hour)

	require.NoError(t, repo.Set(context.Background(), "token", []byte("abc")))

	got, err := mr.Get("storefront:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, 2*time.Hour, mr.TTL("storefront:token"))

	mr.FastForward(3 * time.Hour)
	_, err = repo.Get(context.Background(), "token")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKVStore_Set_ZeroTTLNeverExpires(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	require.NoError(t, repo.Set(context.Background(), "user", []byte(`{}`)))
	assert.Equal(t, time.Duration(0), mr.TTL("storefront:user"))
}

func TestKVStore_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, mr.Set("storefront:god-statues-wishlist", `[]`))

	require.NoError(t, repo.Delete(context.Background(), "god-statues-wishlist"))
	assert.False(t, mr.Exists("storefront:god-statues-wishlist"))

	require.NoError(t, repo.Delete(context.Background(), "god-statues-wishlist"), "deleting twice is fine")
}

func TestKVStore_ConnectionError(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	mr.Close()

	_, err := repo.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	assert.Error(t, repo.Set(context.Background(), "k", []byte("v")))
	assert.Error(t, repo.Ping(context.Background()))
}
