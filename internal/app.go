package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ironlog/ironlog/pkg/health"
	"github.com/ironlog/ironlog/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Middleware wraps the whole HTTP handler chain (request id, recovery, ...).
type Middleware = func(http.Handler) http.Handler

// App serves a set of functions behind one HTTP listener.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router       chi.Router
	responder    *Responder
	healthConfig *healthConfig
	logger       *slog.Logger
	cors         CORSConfig
	middlewares  []Middleware
	functions    []*Function
}

// New creates a new application with the given options.
//
// Example:
//
//	app := ironlog.New(
//	    ironlog.WithLogger(log),
//	    ironlog.WithMiddleware(middlewares.RequestID()),
//	    ironlog.WithFunctions(plansFn),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(), // Default: noop logger (before options)
		cors:   DefaultCORS,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.responder = NewResponder(a.logger, a.cors)
	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// Responder returns the envelope builder used for app-level errors.
func (a *App) Responder() *Responder {
	return a.responder
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", ironlog.Logger(log), ironlog.ShutdownHook(db.Shutdown(pool)))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware, health probes and
// function mounts.
func (a *App) setupRoutes() {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := a.responder.Error(r.Context(), http.StatusNotFound, "No route found for "+r.URL.Path,
			WithCode(CodeRouteNotFound),
			WithRequestInfo(NewRequestInfo(r)),
		)
		_ = resp.WriteTo(w)
	})
	a.router.NotFound(notFound)
	a.router.MethodNotAllowed(notFound)

	// Apply global middleware
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		opts := []health.Option{health.WithLogger(a.logger)}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, opts...))
	}

	// Each function owns its mount path and everything below it; routing
	// inside the function is done by its own route table.
	for _, fn := range a.functions {
		a.router.Handle(fn.MountPath(), fn)
		a.router.Handle(fn.MountPath()+"/*", fn)
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	ironlog.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
