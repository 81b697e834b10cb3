package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "storefront:"

// KVStore implements repository.KVStore on Redis.
type KVStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewKVStore creates a Redis-backed store. Every write refreshes the key's
// TTL, so idle visitors expire while active ones persist. A zero ttl keeps
// keys forever.
func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *KVStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *KVStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
