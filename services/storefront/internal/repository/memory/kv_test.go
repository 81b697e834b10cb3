package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestKVStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	require.NoError(t, s.Set(ctx, "god-statues-cart", []byte(`[]`)))
	got, err := s.Get(ctx, "god-statues-cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "god-statues-cart"))
	_, err = s.Get(ctx, "god-statues-cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKVStore_DeleteMissing(t *testing.T) {
	assert.NoError(t, NewKVStore().Delete(context.Background(), "nope"))
}

func TestKVStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestKVStore_Ping(t *testing.T) {
	assert.NoError(t, NewKVStore().Ping(context.Background()))
}
