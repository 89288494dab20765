package internal

import "log/slog"

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger used for app-level errors and
// health probe failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithFunctions mounts functions at their mount paths.
func WithFunctions(fns ...*Function) Option {
	return func(a *App) {
		for _, fn := range fns {
			if fn != nil {
				a.functions = append(a.functions, fn)
			}
		}
	}
}

// WithAppCORS sets the CORS headers attached to app-level error responses.
func WithAppCORS(cors CORSConfig) Option {
	return func(a *App) {
		a.cors = cors
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	ironlog.WithHealthChecks(
//	    ironlog.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
