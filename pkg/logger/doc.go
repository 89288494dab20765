// Package logger builds the service's slog loggers.
//
// Loggers write JSON to stdout. A [LogHandlerDecorator] runs a list of
// [ContextExtractor] functions on every record so request-scoped values such
// as the request id are attached without passing loggers around:
//
//	log := logger.New(slog.LevelInfo, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "plan created", slog.String("plan_id", id))
//	// {"level":"INFO","msg":"plan created","plan_id":"...","request_id":"..."}
//
// [NewWithSentry] additionally forwards warnings and errors to Sentry when a
// DSN is configured. Errors become Sentry issues; warnings are stored as
// logs. With no DSN it falls back to stdout only, so the same code path runs
// locally and in production. Register [SentryFlush] as a shutdown hook to
// drain buffered events.
//
// [NewNope] returns a discarding logger and is the default for every
// component that accepts one.
package logger
