package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DefaultMaxBodyBytes bounds the JSON body Bind will read.
const DefaultMaxBodyBytes = 1 << 20 // 1MB

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// redactedHeaders are never written to logs verbatim.
var redactedHeaders = []string{"Authorization", "Apikey", "Cookie"}

// RequestInfo is a snapshot of the request taken once for logging.
type RequestInfo struct {
	Headers   map[string]string `json:"headers,omitempty"`
	Query     map[string]string `json:"query,omitempty"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	RequestID string            `json:"request_id,omitempty"`
}

// NewRequestInfo captures method, path, headers and query of r.
// Credential-bearing headers are redacted.
func NewRequestInfo(r *http.Request) RequestInfo {
	info := RequestInfo{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: RequestIDFromContext(r.Context()),
	}

	if len(r.Header) > 0 {
		info.Headers = make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			if slices.Contains(redactedHeaders, name) {
				info.Headers[name] = "[redacted]"
				continue
			}
			info.Headers[name] = strings.Join(values, ", ")
		}
	}

	if q := r.URL.Query(); len(q) > 0 {
		info.Query = make(map[string]string, len(q))
		for name, values := range q {
			info.Query[name] = strings.Join(values, ",")
		}
	}

	return info
}

// LogValue renders the snapshot as a slog group with stable key order.
func (i RequestInfo) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("method", i.Method),
		slog.String("path", i.Path),
	}
	if i.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", i.RequestID))
	}
	if len(i.Query) > 0 {
		attrs = append(attrs, slog.Any("query", mapGroup(i.Query)))
	}
	if len(i.Headers) > 0 {
		attrs = append(attrs, slog.Any("headers", mapGroup(i.Headers)))
	}
	return slog.GroupValue(attrs...)
}

func mapGroup(m map[string]string) slog.Value {
	attrs := make([]slog.Attr, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		attrs = append(attrs, slog.String(k, m[k]))
	}
	return slog.GroupValue(attrs...)
}

// RequestContext is the per-request state threaded through routing, the
// dispatcher and the business handler. The router creates it; the
// dispatcher attaches path params and the principal; handlers only read it.
type RequestContext struct {
	Request   *http.Request
	URL       *url.URL
	Params    map[string]string
	Principal *Principal
	Store     OwnershipChecker
	Info      RequestInfo

	responder *Responder
}

func newRequestContext(r *http.Request, store OwnershipChecker, responder *Responder) *RequestContext {
	return &RequestContext{
		Request:   r,
		URL:       r.URL,
		Params:    map[string]string{},
		Store:     store,
		Info:      NewRequestInfo(r),
		responder: responder,
	}
}

// Context returns the request's context.Context.
func (rc *RequestContext) Context() context.Context {
	return rc.Request.Context()
}

// Param returns the path parameter value by name.
// Returns empty string if the parameter doesn't exist.
func (rc *RequestContext) Param(name string) string {
	return rc.Params[name]
}

// Query returns the query parameter value by name.
func (rc *RequestContext) Query(name string) string {
	return rc.URL.Query().Get(name)
}

// PrincipalID returns the authenticated principal id, or "" on public routes.
func (rc *RequestContext) PrincipalID() string {
	if rc.Principal == nil {
		return ""
	}
	return rc.Principal.ID
}

// Bind decodes the JSON request body into v.
// Malformed bodies are reported as a 400 INVALID_JSON HTTPError.
func (rc *RequestContext) Bind(v any) error {
	if rc.Request.Body == nil || rc.Request.Body == http.NoBody {
		return ErrBadRequest("Request body is required", WithErrorCode(CodeInvalidJSON))
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, rc.Request.Body, DefaultMaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large",
				WithErrorCode(CodeRequestEntityTooLarge), WithError(err))
		case errors.Is(err, io.EOF):
			return ErrBadRequest("Request body is required", WithErrorCode(CodeInvalidJSON))
		default:
			return ErrBadRequest("Invalid JSON body", WithErrorCode(CodeInvalidJSON), WithError(err))
		}
	}
	return nil
}

// JSON returns a success envelope with the given status.
func (rc *RequestContext) JSON(status int, data any, opts ...SuccessOption) (*Response, error) {
	return rc.responder.Success(status, data, opts...)
}

// Created returns a 201 success envelope.
func (rc *RequestContext) Created(data any, opts ...SuccessOption) (*Response, error) {
	return rc.responder.Success(http.StatusCreated, data, opts...)
}

// NoContent returns an empty 204 response.
func (rc *RequestContext) NoContent() (*Response, error) {
	return rc.responder.Success(http.StatusNoContent, nil)
}

// Error returns an error envelope carrying this request's snapshot.
func (rc *RequestContext) Error(status int, message string, opts ...ErrorOption) *Response {
	opts = append(opts, WithRequestInfo(rc.Info))
	return rc.responder.Error(rc.Context(), status, message, opts...)
}

// requestIDKey is the context key for the request ID.
type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
