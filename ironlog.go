package ironlog

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/ironlog/ironlog/internal"
	"github.com/ironlog/ironlog/pkg/health"
)

// Type aliases - public API
type (
	// App serves a set of functions behind one HTTP listener.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Middleware wraps the whole HTTP handler chain.
	Middleware = internal.Middleware

	// Function is a deployable unit: a mount path and an ordered route table.
	Function = internal.Function

	// FunctionOption configures a Function.
	FunctionOption = internal.FunctionOption

	// Route is one path pattern and its per-method handlers.
	Route = internal.Route

	// RouteOption configures a Route.
	RouteOption = internal.RouteOption

	// HandlerFunc is the signature for business handlers.
	HandlerFunc = internal.HandlerFunc

	// RequestContext is the per-request state handed to handlers.
	RequestContext = internal.RequestContext

	// Response is a fully built HTTP response.
	Response = internal.Response

	// Principal is the authenticated caller.
	Principal = internal.Principal

	// Authenticator turns a bearer token into a Principal.
	Authenticator = internal.Authenticator

	// AuthenticatorFunc adapts a function to Authenticator.
	AuthenticatorFunc = internal.AuthenticatorFunc

	// OwnershipChecker answers whether a row belongs to a principal.
	OwnershipChecker = internal.OwnershipChecker

	// Extractor pulls the access token from a request.
	Extractor = internal.Extractor

	// ExtractorSource is one place an Extractor looks for a token.
	ExtractorSource = internal.ExtractorSource

	// CORSConfig holds the CORS headers attached to every response.
	CORSConfig = internal.CORSConfig

	// HTTPError is an error carrying an HTTP status and error code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// SuccessOption configures a success envelope.
	SuccessOption = internal.SuccessOption

	// Responder builds the JSON envelopes of an app or function.
	Responder = internal.Responder

	// Scalar is the set of types typed path and query helpers convert to.
	Scalar = internal.Scalar
)

// Error codes carried in the "code" field of the error envelope.
const (
	CodeAuthRequired          = internal.CodeAuthRequired
	CodeInvalidUUID           = internal.CodeInvalidUUID
	CodeResourceNotFound      = internal.CodeResourceNotFound
	CodeMissingParameter      = internal.CodeMissingParameter
	CodeMethodHandlerError    = internal.CodeMethodHandlerError
	CodeServerError           = internal.CodeServerError
	CodeRouteNotFound         = internal.CodeRouteNotFound
	CodeValidationError       = internal.CodeValidationError
	CodeInvalidJSON           = internal.CodeInvalidJSON
	CodeResourceConflict      = internal.CodeResourceConflict
	CodeRequestEntityTooLarge = internal.CodeRequestEntityTooLarge
)

// DefaultOwnerField is the owner column used by WithOwnership.
const DefaultOwnerField = internal.DefaultOwnerField

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := ironlog.New(
//	    ironlog.WithLogger(log),
//	    ironlog.WithMiddleware(middlewares.RequestID()),
//	    ironlog.WithFunctions(plans.NewFunction(repo, ...)),
//	)
//
//	err := app.Run(":8080", ironlog.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewFunction creates a function mounted at mountPath.
//
// Example:
//
//	fn := ironlog.NewFunction("/workout-plans",
//	    ironlog.WithAuthenticator(verifier),
//	    ironlog.WithStore(store),
//	    ironlog.WithRoutes(routes...),
//	)
func NewFunction(mountPath string, opts ...FunctionOption) *Function {
	return internal.NewFunction(mountPath, opts...)
}

// NewRoute creates a route for an absolute path pattern such as
// "/plans/{planId}/days". It panics if the pattern is malformed.
func NewRoute(pattern string, opts ...RouteOption) *Route {
	return internal.NewRoute(pattern, opts...)
}

// NewResponder creates an envelope builder. Middlewares that answer outside
// a function, such as panic recovery, use one to match the function envelopes.
func NewResponder(log *slog.Logger, cors CORSConfig) *Responder {
	return internal.NewResponder(log, cors)
}

// DefaultCORS returns the permissive CORS configuration the API ships with.
// The result is a copy; changing it affects no existing responder.
func DefaultCORS() CORSConfig {
	cors := internal.DefaultCORS
	cors.AllowHeaders = slices.Clone(cors.AllowHeaders)
	cors.AllowMethods = slices.Clone(cors.AllowMethods)
	return cors
}

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithFunctions mounts functions at their mount paths.
func WithFunctions(fns ...*Function) Option {
	return internal.WithFunctions(fns...)
}

// WithAppCORS sets the CORS headers on app-level error responses.
func WithAppCORS(cors CORSConfig) Option {
	return internal.WithAppCORS(cors)
}

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	ironlog.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Function options

// WithRoutes appends routes to the function's table. Routes are tried in
// registration order and the first match wins.
func WithRoutes(routes ...*Route) FunctionOption {
	return internal.WithRoutes(routes...)
}

// WithAuthenticator sets the token verifier for non-public routes.
func WithAuthenticator(a Authenticator) FunctionOption {
	return internal.WithAuthenticator(a)
}

// WithStore sets the ownership lookup used by WithOwnership routes.
func WithStore(s OwnershipChecker) FunctionOption {
	return internal.WithStore(s)
}

// WithTokenExtractor overrides where the access token is read from.
func WithTokenExtractor(e Extractor) FunctionOption {
	return internal.WithTokenExtractor(e)
}

// WithFunctionLogger sets the function's logger.
func WithFunctionLogger(l *slog.Logger) FunctionOption {
	return internal.WithFunctionLogger(l)
}

// WithCORS sets the CORS headers on every response of the function.
func WithCORS(cors CORSConfig) FunctionOption {
	return internal.WithCORS(cors)
}

// Route options

// WithOwnership requires the path parameter param to name a row of table
// owned by the caller.
func WithOwnership(table, param string) RouteOption {
	return internal.WithOwnership(table, param)
}

// WithOwnershipField is WithOwnership with a custom owner column.
func WithOwnershipField(table, param, field string) RouteOption {
	return internal.WithOwnershipField(table, param, field)
}

// Public disables authentication for the route.
func Public() RouteOption {
	return internal.Public()
}

// Token extraction

// NewExtractor tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromBearerToken reads "Authorization: Bearer <token>".
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// FromHeader reads the named header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads the named query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// Run options

// Logger sets the runtime logger. Defaults to the App logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the listener opens, e.g. database migrations.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	ironlog.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an error answered with code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithErrorCode sets the machine-readable error code.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithErrorDetails attaches details to the error envelope.
func WithErrorDetails(details any) HTTPErrorOption {
	return internal.WithErrorDetails(details)
}

// WithError wraps an underlying error for logging.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrConflict creates a 409 error.
func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

// ErrValidation creates a 400 VALIDATION_ERROR carrying per-field messages.
func ErrValidation(fields map[string]string) *HTTPError {
	return internal.ErrValidation(fields)
}

// AsHTTPError returns the *HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Success envelope options

// WithMessage sets the envelope message.
func WithMessage(msg string) SuccessOption {
	return internal.WithMessage(msg)
}

// WithTotalCount sets totalCount for paged lists.
func WithTotalCount(n int) SuccessOption {
	return internal.WithTotalCount(n)
}

// Request helpers

// IsValidUUID reports whether s is a canonical RFC 4122 UUID string.
func IsValidUUID(s string) bool {
	return internal.IsValidUUID(s)
}

// Param returns the path parameter converted to T, or its zero value.
func Param[T Scalar](rc *RequestContext, name string) T {
	return internal.Param[T](rc, name)
}

// Query returns the query parameter converted to T, or its zero value.
func Query[T Scalar](rc *RequestContext, name string) T {
	return internal.Query[T](rc, name)
}

// QueryDefault returns the query parameter converted to T, or defaultValue.
func QueryDefault[T Scalar](rc *RequestContext, name string, defaultValue T) T {
	return internal.QueryDefault(rc, name, defaultValue)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return internal.RequestIDFromContext(ctx)
}
