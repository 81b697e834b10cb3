package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository/memory"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestBridge_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(memory.NewKVStore(), nil)

	items := []domain.CartItem{{ID: "1", Name: "Ganesha", Price: 4500, Quantity: 2}}
	b.Save(ctx, CartKey, items)

	var got []domain.CartItem
	require.True(t, b.Load(ctx, CartKey, &got))
	assert.Equal(t, items, got)
}

func TestBridge_LoadMissing(t *testing.T) {
	var got []domain.CartItem
	assert.False(t, NewBridge(memory.NewKVStore(), nil).Load(context.Background(), CartKey, &got))
	assert.Nil(t, got)
}

func TestBridge_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	require.NoError(t, store.Set(ctx, CartKey, []byte("not-json")))

	var buf bytes.Buffer
	b := NewBridge(store, logger.NewWithWriter("test", "info", &buf))

	var got []domain.CartItem
	assert.False(t, b.Load(ctx, CartKey, &got))
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "discarding corrupt stored value")
}

func TestBridge_PlaceholdersAreAbsent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	b := NewBridge(store, nil)

	for _, v := range []string{"", "null", "undefined", "  "} {
		require.NoError(t, store.Set(ctx, UserKey, []byte(v)))

		var u *domain.User
		assert.False(t, b.Load(ctx, UserKey, &u), "value %q", v)
		assert.Nil(t, u)
	}
}

func TestBridge_RawRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(memory.NewKVStore(), nil)

	b.SaveRaw(ctx, TokenKey, "header.payload.sig")
	got, ok := b.LoadRaw(ctx, TokenKey)
	require.True(t, ok)
	assert.Equal(t, "header.payload.sig", got)

	b.Remove(ctx, TokenKey)
	_, ok = b.LoadRaw(ctx, TokenKey)
	assert.False(t, ok)
}

func TestBridge_NamespaceIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	root := NewBridge(store, nil)

	alice := root.Namespace(VisitorNamespace("a"))
	bob := root.Namespace(VisitorNamespace("b"))

	alice.SaveRaw(ctx, TokenKey, "alice-token")

	_, ok := bob.LoadRaw(ctx, TokenKey)
	assert.False(t, ok)

	raw, err := store.Get(ctx, "visitor:a:token")
	require.NoError(t, err)
	assert.Equal(t, "alice-token", string(raw))
}

func TestBridge_FailingStoreIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	boom := errors.New("disk full")

	store.On("Get", ctx, CartKey).Return(nil, boom)
	store.On("Set", ctx, CartKey, mock.Anything).Return(boom)
	store.On("Delete", ctx, CartKey).Return(boom)

	var buf bytes.Buffer
	b := NewBridge(store, logger.NewWithWriter("test", "info", &buf))

	var got []domain.CartItem
	assert.False(t, b.Load(ctx, CartKey, &got))
	assert.NotPanics(t, func() {
		b.Save(ctx, CartKey, []domain.CartItem{{ID: "1", Quantity: 1}})
		b.Remove(ctx, CartKey)
	})

	out := buf.String()
	assert.Contains(t, out, "storage read failed")
	assert.Contains(t, out, "storage write failed")
	assert.Contains(t, out, "storage delete failed")
	store.AssertExpectations(t)
}

func TestBridge_NotFoundIsQuiet(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Get", ctx, WishlistKey).Return(nil, apperrors.NotFound("key", WishlistKey))

	var buf bytes.Buffer
	b := NewBridge(store, logger.NewWithWriter("test", "info", &buf))

	var got []domain.WishlistItem
	assert.False(t, b.Load(ctx, WishlistKey, &got))
	assert.Empty(t, buf.String())
}

func TestBridge_NilStore(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(nil, nil)

	b.Save(ctx, CartKey, []int{1})
	var got []int
	assert.False(t, b.Load(ctx, CartKey, &got))
	assert.Error(t, b.Ping(ctx))
}

func TestBridge_Ping(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Ping", ctx).Return(nil)

	assert.NoError(t, NewBridge(store, nil).Ping(ctx))
}
