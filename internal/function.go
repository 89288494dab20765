package internal

import (
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	ironlogger "github.com/ironlog/ironlog/pkg/logger"
)

// Function is one deployable function boundary: a mount path and the
// ordered route modules it serves. Routes are fixed at construction.
type Function struct {
	responder  *Responder
	dispatcher *dispatcher
	store      OwnershipChecker
	logger     *slog.Logger
	mountPath  string
	routes     []*Route
}

// FunctionOption configures a Function.
type FunctionOption func(*functionConfig)

type functionConfig struct {
	logger    *slog.Logger
	auth      Authenticator
	store     OwnershipChecker
	extractor *Extractor
	cors      CORSConfig
	routes    []*Route
	stackSize int
}

// WithRoutes appends route modules. Earlier routes win when two patterns
// match the same path.
func WithRoutes(routes ...*Route) FunctionOption {
	return func(c *functionConfig) {
		for _, r := range routes {
			if r != nil {
				c.routes = append(c.routes, r)
			}
		}
	}
}

// WithAuthenticator sets the principal resolver used by protected routes.
func WithAuthenticator(a Authenticator) FunctionOption {
	return func(c *functionConfig) {
		c.auth = a
	}
}

// WithStore sets the data-access handle used for ownership checks and
// exposed to handlers as RequestContext.Store.
func WithStore(s OwnershipChecker) FunctionOption {
	return func(c *functionConfig) {
		c.store = s
	}
}

// WithTokenExtractor overrides the default Bearer token extractor.
func WithTokenExtractor(e Extractor) FunctionOption {
	return func(c *functionConfig) {
		c.extractor = &e
	}
}

// WithFunctionLogger sets the logger errors are written to.
func WithFunctionLogger(l *slog.Logger) FunctionOption {
	return func(c *functionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCORS replaces the default CORS configuration.
func WithCORS(cors CORSConfig) FunctionOption {
	return func(c *functionConfig) {
		c.cors = cors
	}
}

// WithStackSize sets the maximum stack trace captured for handler panics.
func WithStackSize(size int) FunctionOption {
	return func(c *functionConfig) {
		if size > 0 {
			c.stackSize = size
		}
	}
}

// NewFunction creates a function mounted at mountPath (e.g. "/plans").
//
// Example:
//
//	fn := ironlog.NewFunction("/plans",
//	    ironlog.WithAuthenticator(verifier),
//	    ironlog.WithStore(store),
//	    ironlog.WithRoutes(plans.Routes(repo)...),
//	)
func NewFunction(mountPath string, opts ...FunctionOption) *Function {
	cfg := &functionConfig{
		logger:    ironlogger.NewNope(),
		cors:      DefaultCORS,
		stackSize: DefaultStackSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	extractor := DefaultExtractor()
	if cfg.extractor != nil {
		extractor = *cfg.extractor
	}

	responder := NewResponder(cfg.logger, cfg.cors)

	return &Function{
		responder: responder,
		dispatcher: &dispatcher{
			responder: responder,
			auth:      cfg.auth,
			extractor: extractor,
			owner:     NewOwnershipValidator(cfg.store, responder),
			stackSize: cfg.stackSize,
		},
		store:     cfg.store,
		logger:    cfg.logger,
		mountPath: normalizeMountPath(mountPath),
		routes:    cfg.routes,
	}
}

// MountPath returns the path the function is served under.
func (f *Function) MountPath() string {
	return f.mountPath
}

// Responder returns the envelope builder used by the function.
func (f *Function) Responder() *Responder {
	return f.responder
}

// Handle routes r and returns the response to send. It never returns nil.
func (f *Function) Handle(r *http.Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := make([]byte, f.dispatcher.stackSize)
			stack = stack[:runtime.Stack(stack, false)]
			resp = f.responder.Error(r.Context(), http.StatusInternalServerError, "Internal server error",
				WithCode(CodeServerError),
				WithCause(&PanicError{Value: rec, Stack: stack}),
				WithRequestInfo(NewRequestInfo(r)),
			)
		}
	}()

	if r.Method == http.MethodOptions && normalizeMountPath(r.URL.Path) == f.mountPath {
		return f.responder.Preflight("")
	}

	rc := newRequestContext(r, f.store, f.responder)
	for _, route := range f.routes {
		if res, ok := f.tryRoute(route, rc).Response(); ok {
			return res
		}
	}

	return f.responder.Error(r.Context(), http.StatusNotFound, "No route found for "+f.mountPath,
		WithCode(CodeRouteNotFound),
		WithRequestInfo(rc.Info),
	)
}

// tryRoute matches the route's pattern and, on match, hands the request to
// the dispatcher with the captured params attached.
func (f *Function) tryRoute(route *Route, rc *RequestContext) RouteResult {
	params, ok := route.pattern.Match(rc.URL.Path)
	if !ok {
		return NotMatched
	}
	rc.Params = params
	return f.dispatcher.dispatch(route, rc)
}

// ServeHTTP implements http.Handler.
func (f *Function) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := f.Handle(r)
	if err := resp.WriteTo(w); err != nil {
		f.logger.WarnContext(r.Context(), "failed to write response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
}

func normalizeMountPath(p string) string {
	return "/" + strings.Trim(p, "/")
}
