// Package middlewares provides net/http middleware for ironlog apps.
//
// # Request ID
//
// RequestID reuses an upstream X-Request-ID (or X-Correlation-ID) or
// generates a UUID, stores it in the request context and echoes it back.
// Error log lines carry it in their request group; RequestIDExtractor adds
// it to every other log line:
//
//	log := logger.New(slog.LevelInfo, middlewares.RequestIDExtractor())
//	app := ironlog.New(
//	    ironlog.WithLogger(log),
//	    ironlog.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a panic outside a function's own recovery (for example in
// another middleware) into a 500 SERVER_ERROR envelope:
//
//	responder := ironlog.NewResponder(log, ironlog.DefaultCORS())
//	ironlog.WithMiddleware(middlewares.Recover(responder))
//
// # Timeout
//
// Timeout puts a deadline on the request context so slow queries are
// cancelled:
//
//	ironlog.WithMiddleware(middlewares.Timeout(10 * time.Second))
//
// Register RequestID first so the other middlewares see the ID.
package middlewares
