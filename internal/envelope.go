package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"net/http"
	"strings"
	"time"

	ironlogger "github.com/ironlog/ironlog/pkg/logger"
)

// CORSConfig is the immutable set of CORS headers attached to every response.
type CORSConfig struct {
	AllowOrigin  string
	AllowHeaders []string
	AllowMethods []string
}

// DefaultCORS is the permissive configuration the API ships with.
var DefaultCORS = CORSConfig{
	AllowOrigin:  "*",
	AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	AllowMethods: []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	},
}

// clone returns a copy that shares no slices with c.
func (c CORSConfig) clone() CORSConfig {
	c.AllowHeaders = slices.Clone(c.AllowHeaders)
	c.AllowMethods = slices.Clone(c.AllowMethods)
	return c
}

// Header builds a fresh header set. The returned map is owned by the caller.
func (c CORSConfig) Header() http.Header {
	h := make(http.Header, 3)
	h.Set("Access-Control-Allow-Origin", c.AllowOrigin)
	h.Set("Access-Control-Allow-Headers", strings.Join(c.AllowHeaders, ", "))
	h.Set("Access-Control-Allow-Methods", strings.Join(c.AllowMethods, ", "))
	return h
}

// ErrorEnvelope is the wire shape of every error response.
type ErrorEnvelope struct {
	Details any    `json:"details,omitempty"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// SuccessEnvelope is the wire shape of every non-204 success response.
type SuccessEnvelope struct {
	Data       any    `json:"data"`
	TotalCount *int   `json:"totalCount,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Response is a fully built HTTP response. Handlers return it instead of
// writing to the http.ResponseWriter themselves.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// WriteTo writes the response to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	maps.Copy(w.Header(), r.Header)
	w.WriteHeader(r.Status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

// Responder builds success and error envelopes.
// Every response leaving a Function is produced by exactly one of its
// Success or Error methods.
type Responder struct {
	logger *slog.Logger
	cors   CORSConfig
	now    func() time.Time
}

// NewResponder creates a Responder. A nil logger discards error logs.
func NewResponder(logger *slog.Logger, cors CORSConfig) *Responder {
	if logger == nil {
		logger = ironlogger.NewNope()
	}
	return &Responder{logger: logger, cors: cors.clone(), now: time.Now}
}

// CORS returns the configuration the responder was built with.
func (r *Responder) CORS() CORSConfig {
	return r.cors.clone()
}

// ErrorOption configures an error response.
type ErrorOption func(*errorOptions)

type errorOptions struct {
	details any
	cause   any
	info    *RequestInfo
	code    string
}

// WithDetails sets the envelope "details" field.
func WithDetails(details any) ErrorOption {
	return func(o *errorOptions) {
		o.details = details
	}
}

// WithCode sets the envelope "code" field.
func WithCode(code string) ErrorOption {
	return func(o *errorOptions) {
		o.code = code
	}
}

// WithCause attaches the original error (or any recovered value) to the log
// line. It is never serialized into the response body.
func WithCause(cause any) ErrorOption {
	return func(o *errorOptions) {
		o.cause = cause
	}
}

// WithRequestInfo attaches the request snapshot to the log line.
func WithRequestInfo(info RequestInfo) ErrorOption {
	return func(o *errorOptions) {
		o.info = &info
	}
}

// Error logs the failure as a single structured line and returns the error
// envelope with the given status.
func (r *Responder) Error(ctx context.Context, status int, message string, opts ...ErrorOption) *Response {
	o := &errorOptions{}
	for _, opt := range opts {
		opt(o)
	}

	r.logError(ctx, status, message, o)

	body, err := json.Marshal(ErrorEnvelope{
		Error:   message,
		Details: o.details,
		Code:    o.code,
	})
	if err != nil {
		// Details were not serializable; drop them rather than fail the response.
		body, _ = json.Marshal(ErrorEnvelope{Error: message, Code: o.code})
	}

	h := r.cors.Header()
	h.Set("Content-Type", "application/json")
	return &Response{Status: status, Header: h, Body: body}
}

// HTTPError converts a handler-returned HTTPError into an error envelope.
func (r *Responder) HTTPError(ctx context.Context, e *HTTPError, info RequestInfo) *Response {
	opts := []ErrorOption{WithCode(e.ErrorCode), WithRequestInfo(info)}
	if e.Details != nil {
		opts = append(opts, WithDetails(e.Details))
	}
	if e.Err != nil {
		opts = append(opts, WithCause(e.Err))
	}
	return r.Error(ctx, e.Code, e.Message, opts...)
}

func (r *Responder) logError(ctx context.Context, status int, message string, o *errorOptions) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.Time("timestamp", r.now().UTC()),
		slog.Int("status", status),
	}
	if o.code != "" {
		attrs = append(attrs, slog.String("code", o.code))
	}
	if o.details != nil {
		attrs = append(attrs, slog.Any("context", o.details))
	}
	if o.info != nil {
		attrs = append(attrs, slog.Any("request", *o.info))
	}
	if o.cause != nil {
		attrs = append(attrs, causeAttr(o.cause))
	}

	r.logger.LogAttrs(ctx, level, message, attrs...)
}

// causeAttr renders the original error: errors as name/message/stack, any
// other value as-is.
func causeAttr(cause any) slog.Attr {
	err, ok := cause.(error)
	if !ok {
		return slog.Any("error", cause)
	}

	attrs := []any{
		slog.String("name", fmt.Sprintf("%T", err)),
		slog.String("message", err.Error()),
	}
	if pe, ok := AsPanicError(err); ok && len(pe.Stack) > 0 {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	return slog.Group("error", attrs...)
}

// SuccessOption configures a success response.
type SuccessOption func(*SuccessEnvelope)

// WithMessage sets the envelope "message" field.
func WithMessage(msg string) SuccessOption {
	return func(e *SuccessEnvelope) {
		e.Message = msg
	}
}

// WithTotalCount sets the envelope "totalCount" field.
func WithTotalCount(n int) SuccessOption {
	return func(e *SuccessEnvelope) {
		e.TotalCount = &n
	}
}

// Success returns the success envelope with the given status.
// A 204 response never carries a body.
func (r *Responder) Success(status int, data any, opts ...SuccessOption) (*Response, error) {
	h := r.cors.Header()
	if status == http.StatusNoContent {
		return &Response{Status: status, Header: h}, nil
	}

	env := SuccessEnvelope{Data: data}
	for _, opt := range opts {
		opt(&env)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	h.Set("Content-Type", "application/json")
	return &Response{Status: status, Header: h, Body: body}, nil
}

// Preflight answers a CORS preflight with the given allowed methods.
// An empty list advertises the configured defaults.
func (r *Responder) Preflight(allowMethods string) *Response {
	h := r.cors.Header()
	if allowMethods != "" {
		h.Set("Access-Control-Allow-Methods", allowMethods)
	}
	return &Response{Status: http.StatusNoContent, Header: h}
}
