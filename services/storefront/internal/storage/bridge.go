// Package storage persists visitor state through a repository.KVStore.
// Every operation swallows backend failures: callers always get a usable
// default and the failure is logged.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// Keys under which visitor state is persisted.
const (
	CartKey     = "god-statues-cart"
	WishlistKey = "god-statues-wishlist"
	TokenKey    = "token"
	UserKey     = "user"
)

// Bridge reads and writes JSON values under optionally prefixed keys.
type Bridge struct {
	store  repository.KVStore
	prefix string
	logger *slog.Logger
}

// NewBridge creates a bridge over store. A nil logger discards output.
func NewBridge(store repository.KVStore, l *slog.Logger) *Bridge {
	if l == nil {
		l = logger.Discard()
	}
	return &Bridge{store: store, logger: l}
}

// Namespace returns a bridge whose keys are prefixed with prefix on top of
// any existing prefix.
func (b *Bridge) Namespace(prefix string) *Bridge {
	return &Bridge{
		store:  b.store,
		prefix: b.prefix + prefix,
		logger: b.logger,
	}
}

// VisitorNamespace is the prefix isolating one visitor's keys.
func VisitorNamespace(visitorID string) string {
	return "visitor:" + visitorID + ":"
}

func (b *Bridge) key(k string) string { return b.prefix + k }

// LoadRaw returns the stored string. Missing keys, backend failures and the
// placeholder values "", "null" and "undefined" all report false.
func (b *Bridge) LoadRaw(ctx context.Context, key string) (string, bool) {
	if b.store == nil {
		return "", false
	}

	data, err := b.store.Get(ctx, b.key(key))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WithContext(ctx, b.logger).Warn("storage read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}

	raw := strings.TrimSpace(string(data))
	switch raw {
	case "", "null", "undefined":
		return "", false
	}
	return raw, true
}

// Load decodes the value stored under key into dst. It reports false and
// leaves the caller on its default when the value is absent or corrupt.
func (b *Bridge) Load(ctx context.Context, key string, dst any) bool {
	raw, ok := b.LoadRaw(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.WithContext(ctx, b.logger).Warn("discarding corrupt stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// SaveRaw stores value verbatim.
func (b *Bridge) SaveRaw(ctx context.Context, key, value string) {
	b.write(ctx, key, []byte(value))
}

// Save JSON-encodes value and stores it.
func (b *Bridge) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.WithContext(ctx, b.logger).Error("failed to encode value for storage",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	b.write(ctx, key, data)
}

func (b *Bridge) write(ctx context.Context, key string, data []byte) {
	if b.store == nil {
		return
	}
	if err := b.store.Set(ctx, b.key(key), data); err != nil {
		logger.WithContext(ctx, b.logger).Error("storage write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Remove deletes key.
func (b *Bridge) Remove(ctx context.Context, key string) {
	if b.store == nil {
		return
	}
	if err := b.store.Delete(ctx, b.key(key)); err != nil {
		logger.WithContext(ctx, b.logger).Error("storage delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Ping checks the underlying store.
func (b *Bridge) Ping(ctx context.Context) error {
	if b.store == nil {
		return errors.New("storage: no backend configured")
	}
	return b.store.Ping(ctx)
}
