package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/tracing"
)

// KV backends.
const (
	KVBackendMemory   = "memory"
	KVBackendRedis    = "redis"
	KVBackendSQLite   = "sqlite"
	KVBackendPostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	RequestTimeout  int      `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSOrigins     []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	CookieSecure    bool     `env:"COOKIE_SECURE" envDefault:"false"`
	VisitorIdleMins int      `env:"VISITOR_IDLE_MINUTES" envDefault:"30"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Storefront REST backend
	APIBaseURL        string `env:"API_BASE_URL" envDefault:"http://localhost:5000/api"`
	APITimeoutSeconds int    `env:"API_TIMEOUT_SECONDS" envDefault:"10"`
	APICircuitBreaker bool   `env:"API_CIRCUIT_BREAKER" envDefault:"false"`

	// Visitor state storage
	KVBackend  string `env:"KV_BACKEND" envDefault:"memory"`
	KVTTLHours int    `env:"KV_TTL_HOURS" envDefault:"168"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// SQLite
	SQLitePath string `env:"SQLITE_PATH" envDefault:"storefront.db"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Kafka; events are disabled when no brokers are set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	SlowQueryMillis int `env:"SLOW_QUERY_MS" envDefault:"200"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return finish(cfg)
}

// LoadFrom reads configuration from an explicit variable set.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.KVBackend = strings.ToLower(strings.TrimSpace(cfg.KVBackend))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.KVBackend {
	case KVBackendMemory, KVBackendRedis, KVBackendSQLite, KVBackendPostgres:
	default:
		return fmt.Errorf("KV_BACKEND must be one of memory, redis, sqlite, postgres; got %q", c.KVBackend)
	}
	if c.KVTTLHours < 0 {
		return fmt.Errorf("KV_TTL_HOURS must not be negative")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST at least 1")
	}
	if c.APITimeoutSeconds < 1 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must be at least 1")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

// KVTTL is the idle expiry for Redis keys. Zero keeps keys forever.
func (c *Config) KVTTL() time.Duration {
	return time.Duration(c.KVTTLHours) * time.Hour
}

// APITimeout is the REST client request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// VisitorIdle is how long an untouched visitor stays in memory.
func (c *Config) VisitorIdle() time.Duration {
	return time.Duration(c.VisitorIdleMins) * time.Minute
}

// Postgres builds the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}

// Redis builds the client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPass, DB: c.RedisDB}
}

// Tracing builds the tracer configuration.
func (c *Config) Tracing(serviceName string) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}
