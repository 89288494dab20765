package internal

import (
	"context"
	"errors"
	"net/http"
	"runtime"
)

// DefaultStackSize is the maximum stack trace captured for a handler panic.
const DefaultStackSize = 4096

// Authenticator exchanges a presented credential for a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (Principal, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Principal, error) {
	return f(ctx, token)
}

// errNoAuthenticator is reported when a protected route is hit on a function
// built without WithAuthenticator.
var errNoAuthenticator = errors.New("dispatcher: no authenticator configured")

// dispatcher runs one matched route: preflight, auth, ownership, handler.
// Each step either advances or returns a terminal response.
type dispatcher struct {
	responder *Responder
	auth      Authenticator
	extractor Extractor
	owner     *OwnershipValidator
	stackSize int
}

// dispatch handles rc for route. NotMatched means the route has no handler
// for the request method, letting a later route claim the path.
func (d *dispatcher) dispatch(route *Route, rc *RequestContext) RouteResult {
	m, ok := ParseMethod(rc.Request.Method)
	if !ok {
		return NotMatched
	}

	if m == MethodOptions {
		if h := route.handlers.lookup(MethodOptions); h != nil {
			return Matched(d.invoke(h, rc))
		}
		return Matched(d.responder.Preflight(route.handlers.allowed()))
	}

	h := route.handlers.lookup(m)
	if h == nil {
		return NotMatched
	}

	if !route.public {
		if resp := d.authenticate(rc); resp != nil {
			return Matched(resp)
		}
	}

	for _, rule := range route.ownership {
		if resp := d.checkOwnership(rule, rc); resp != nil {
			return Matched(resp)
		}
	}

	return Matched(d.invoke(h, rc))
}

func (d *dispatcher) authenticate(rc *RequestContext) *Response {
	ctx := rc.Context()

	token, ok := d.extractor.Extract(rc.Request)
	if !ok {
		return d.responder.Error(ctx, http.StatusUnauthorized, "Authentication required",
			WithCode(CodeAuthRequired),
			WithRequestInfo(rc.Info),
		)
	}

	if d.auth == nil {
		return d.responder.Error(ctx, http.StatusUnauthorized, "Authentication required",
			WithCode(CodeAuthRequired),
			WithCause(errNoAuthenticator),
			WithRequestInfo(rc.Info),
		)
	}

	principal, err := d.auth.Authenticate(ctx, token)
	if err != nil || principal.ID == "" {
		opts := []ErrorOption{WithCode(CodeAuthRequired), WithRequestInfo(rc.Info)}
		if err != nil {
			opts = append(opts, WithCause(err))
		}
		return d.responder.Error(ctx, http.StatusUnauthorized, "Authentication required", opts...)
	}

	rc.Principal = &Principal{ID: principal.ID, Email: principal.Email}
	return nil
}

func (d *dispatcher) checkOwnership(rule OwnershipRule, rc *RequestContext) *Response {
	id := rc.Param(rule.Param)
	if id == "" {
		return d.responder.Error(rc.Context(), http.StatusBadRequest, "Missing required parameter: "+rule.Param,
			WithCode(CodeMissingParameter),
			WithDetails(map[string]string{"parameter": rule.Param}),
			WithRequestInfo(rc.Info),
		)
	}
	return d.owner.Validate(rc.Context(), rule.Table, id, rule.Field, rc.PrincipalID(), rc.Info)
}

// invoke runs the handler, converting returned errors and panics into
// envelopes.
func (d *dispatcher) invoke(h HandlerFunc, rc *RequestContext) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, d.stackSize)
			stack = stack[:runtime.Stack(stack, false)]
			resp = d.handlerError(rc, &PanicError{Value: r, Stack: stack})
		}
	}()

	resp, err := h(rc)
	if err != nil {
		return d.handlerError(rc, err)
	}
	if resp == nil {
		return d.handlerError(rc, errNilResponse)
	}
	return resp
}

var errNilResponse = errors.New("dispatcher: handler returned no response")

func (d *dispatcher) handlerError(rc *RequestContext, err error) *Response {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return d.responder.HTTPError(rc.Context(), httpErr, rc.Info)
	}
	return d.responder.Error(rc.Context(), http.StatusInternalServerError, "Internal server error",
		WithCode(CodeMethodHandlerError),
		WithDetails(map[string]string{"message": err.Error()}),
		WithCause(err),
		WithRequestInfo(rc.Info),
	)
}
