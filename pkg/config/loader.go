package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses process environment variables into the provided struct.
// The struct uses `env` and `envDefault` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port    int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
//	    BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:5000/api"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadFrom parses cfg from an explicit variable set instead of the process
// environment. Unset variables fall back to their envDefault tags.
func LoadFrom(cfg any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
