package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/services/storefront/internal/config"
	"github.com/utafrali/storefront/services/storefront/internal/content"
)

// countTracerShutdowns swaps in a tracer whose shutdown calls are counted.
func countTracerShutdowns(t *testing.T) *int {
	t.Helper()
	var calls int
	prev := initTracer
	initTracer = func(context.Context, tracing.Config) (func(context.Context) error, error) {
		return func(context.Context) error {
			calls++
			return nil
		}, nil
	}
	t.Cleanup(func() { initTracer = prev })
	return &calls
}

func TestNewApp_StorageFailureShutsDownTracer(t *testing.T) {
	calls := countTracerShutdowns(t)

	cfg, err := config.LoadFrom(map[string]string{
		"KV_BACKEND":  "sqlite",
		"SQLITE_PATH": filepath.Join(t.TempDir(), "missing", "kv.db"),
	})
	require.NoError(t, err)

	a, err := NewApp(cfg, logger.Discard())
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Equal(t, 1, *calls)
}

func TestNewApp_PageFailureShutsDownTracer(t *testing.T) {
	calls := countTracerShutdowns(t)

	prev := loadPages
	loadPages = func() (*content.Library, error) { return nil, errors.New("no pages") }
	t.Cleanup(func() { loadPages = prev })

	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	a, err := NewApp(cfg, logger.Discard())
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "load content pages")
	assert.Equal(t, 1, *calls)
}

func TestNewApp_Wires(t *testing.T) {
	calls := countTracerShutdowns(t)

	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	assert.Zero(t, *calls)

	require.NoError(t, a.Shutdown())
	assert.Equal(t, 1, *calls)
}
