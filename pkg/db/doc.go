// Package db holds the PostgreSQL plumbing: pool setup, migrations,
// transactions and a small query layer over pgx.
//
// # Configuration
//
// [Config] is populated from the environment:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts at startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//
// # Lifecycle
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	err = app.Run(addr,
//	    ironlog.StartupHook(db.Migrator(pool, migrations.FS, cfg.MigrationsTable, log)),
//	    ironlog.ShutdownHook(db.Shutdown(pool)),
//	)
//
// [Healthcheck] plugs into the readiness probe.
//
// # Queries
//
// The helpers build parameterised SQL from a table name, an [Eq] filter and
// [Values]. Identifiers are quoted with pgx.Identifier and columns are
// emitted in sorted order, so the same call always produces the same SQL.
// Rows are decoded into structs by column name (db tags):
//
//	days, err := db.SelectAll[Day](ctx, q, "plan_days", db.Eq{"plan_id": id}, db.Order{"position"})
//	day, err := db.Update[Day](ctx, q, "plan_days", db.Values{"name": name}, db.Eq{"id": dayID})
//	if errors.Is(err, db.ErrNotFound) { ... }
//
// Every helper takes a [DBTX], so the same code runs on the pool or inside
// [WithTx].
package db
