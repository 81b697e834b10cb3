package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(nil)

	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, KVBackendMemory, cfg.KVBackend)
	assert.Equal(t, 168*time.Hour, cfg.KVTTL())
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, 30*time.Minute, cfg.VisitorIdle())
	assert.False(t, cfg.APICircuitBreaker)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.shopfinyra.test/api")
	t.Setenv("KV_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.shopfinyra.test/api", cfg.APIBaseURL)
	assert.Equal(t, KVBackendRedis, cfg.KVBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"STOREFRONT_HTTP_PORT": "0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnknownKVBackend(t *testing.T) {
	_, err := LoadFrom(map[string]string{"KV_BACKEND": "localstorage"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KV_BACKEND")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"OTEL_SAMPLE_RATE": "2.0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	_, err := LoadFrom(map[string]string{"RATE_LIMIT_RPS": "0"})
	assert.Error(t, err)
}

func TestLoad_InvalidType(t *testing.T) {
	_, err := LoadFrom(map[string]string{"REDIS_DB": "zero"})
	assert.Error(t, err)
}

func TestConfig_Builders(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"POSTGRES_HOST": "db.internal",
		"POSTGRES_PORT": "6432",
		"REDIS_ADDR":    "cache:6380",
		"REDIS_DB":      "2",
		"OTEL_ENABLED":  "true",
		"ENVIRONMENT":   "production",
	})
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 6432, pg.Port)
	assert.Equal(t, int32(10), pg.MaxConns)

	rc := cfg.Redis()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.Equal(t, 2, rc.DB)

	tc := cfg.Tracing("storefront")
	assert.True(t, tc.Enabled)
	assert.Equal(t, "production", tc.Environment)
	assert.Equal(t, "storefront", tc.ServiceName)
}
