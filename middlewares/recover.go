package middlewares

import (
	"errors"
	"net/http"
	"runtime"

	"github.com/ironlog/ironlog/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that turns a panic anywhere below it into a
// 500 SERVER_ERROR envelope built by responder. Function handlers recover
// their own panics; this catches the rest of the chain.
func Recover(responder *internal.Responder, opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// The server aborts the connection for this sentinel; keep that.
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				var stack []byte
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}

				resp := responder.Error(r.Context(), http.StatusInternalServerError, "Internal server error",
					internal.WithCode(internal.CodeServerError),
					internal.WithCause(&internal.PanicError{Value: rec, Stack: stack}),
					internal.WithRequestInfo(internal.NewRequestInfo(r)),
				)
				_ = resp.WriteTo(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
