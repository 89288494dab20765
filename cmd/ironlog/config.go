package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ironlog/ironlog/pkg/auth"
	"github.com/ironlog/ironlog/pkg/db"
	"github.com/ironlog/ironlog/pkg/logger"
	"github.com/ironlog/ironlog/pkg/redis"
)

// config is the server configuration, read from the environment.
type config struct {
	Addr            string        `env:"IRONLOG_ADDR" envDefault:":8080"`
	LogLevel        slog.Level    `env:"IRONLOG_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"IRONLOG_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"IRONLOG_REQUEST_TIMEOUT" envDefault:"15s"`
	SentryFlush     time.Duration `env:"IRONLOG_SENTRY_FLUSH_TIMEOUT" envDefault:"2s"`
	OwnershipTTL    time.Duration `env:"IRONLOG_OWNERSHIP_CACHE_TTL" envDefault:"1m"`
	OwnershipSize   int           `env:"IRONLOG_OWNERSHIP_CACHE_SIZE" envDefault:"10000"`

	DB     db.Config
	Auth   auth.Config
	Redis  redis.Config
	Sentry logger.SentryConfig
}

// loadConfig parses the configuration from environ, or from the process
// environment when environ is nil.
func loadConfig(environ map[string]string) (config, error) {
	cfg, err := env.ParseAsWithOptions[config](env.Options{Environment: environ})
	if err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
