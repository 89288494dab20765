// Command ironlog serves the workout-plans API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironlog/ironlog"
	"github.com/ironlog/ironlog/functions/plans"
	"github.com/ironlog/ironlog/middlewares"
	"github.com/ironlog/ironlog/migrations"
	"github.com/ironlog/ironlog/pkg/auth"
	"github.com/ironlog/ironlog/pkg/cache"
	"github.com/ironlog/ironlog/pkg/db"
	"github.com/ironlog/ironlog/pkg/health"
	"github.com/ironlog/ironlog/pkg/logger"
	"github.com/ironlog/ironlog/pkg/redis"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, cfg.LogLevel, middlewares.RequestIDExtractor())

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	checks := health.Checks{"postgres": db.Healthcheck(pool)}
	if err := health.Evaluate(ctx, checks, health.WithLogger(log)); err != nil {
		return err
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	runOpts := []ironlog.RunOption{
		ironlog.Logger(log),
		ironlog.ShutdownTimeout(cfg.ShutdownTimeout),
		ironlog.StartupHook(db.Migrator(pool, migrations.FS, cfg.DB.MigrationsTable, log)),
		ironlog.ShutdownHook(db.Shutdown(pool)),
	}
	readiness := []ironlog.HealthOption{ironlog.WithReadinessCheck("postgres", db.Healthcheck(pool))}

	var owners cache.Cache[bool]
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		owners = cache.NewRedis[bool](client, nil, cache.WithPrefix("ironlog"))
		readiness = append(readiness, ironlog.WithReadinessCheck("redis", redis.Healthcheck(client)))
		runOpts = append(runOpts, ironlog.ShutdownHook(redis.Shutdown(client)))
	} else {
		mem := cache.NewMemory[bool](cache.WithMaxEntries(cfg.OwnershipSize))
		owners = mem
		runOpts = append(runOpts, ironlog.ShutdownHook(func(context.Context) error { return mem.Close() }))
	}
	runOpts = append(runOpts, ironlog.ShutdownHook(logger.SentryFlush(cfg.SentryFlush)))

	plansFn := plans.NewFunction(plans.NewRepository(pool),
		ironlog.WithAuthenticator(verifier),
		ironlog.WithStore(cache.NewOwnership(db.NewStore(pool), owners, cfg.OwnershipTTL)),
		ironlog.WithFunctionLogger(log.With(slog.String("function", "plans"))),
	)

	app := ironlog.New(
		ironlog.WithLogger(log),
		ironlog.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(ironlog.NewResponder(log, ironlog.DefaultCORS())),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		ironlog.WithFunctions(plansFn),
		ironlog.WithHealthChecks(readiness...),
	)

	return app.Run(cfg.Addr, runOpts...)
}
