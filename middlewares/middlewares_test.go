package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/internal"
	"github.com/ironlog/ironlog/middlewares"
	"github.com/ironlog/ironlog/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	capture := func(got *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*got = internal.RequestIDFromContext(r.Context())
		})
	}

	t.Run("generates a uuid", func(t *testing.T) {
		t.Parallel()
		var got string
		rec := httptest.NewRecorder()
		middlewares.RequestID()(capture(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(got)
		require.NoError(t, err)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses upstream id", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "trace-1")
		rec := httptest.NewRecorder()
		middlewares.RequestID()(capture(&got)).ServeHTTP(rec, req)

		require.Equal(t, "trace-1", got)
		require.Equal(t, "trace-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("rejects oversized upstream id", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", 500))
		middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "fresh" }))(capture(&got)).
			ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, "fresh", got)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Amzn-Trace-Id", "amzn-1")
		rec := httptest.NewRecorder()
		middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Amzn-Trace-Id"),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		)(capture(&got)).ServeHTTP(rec, req)

		require.Equal(t, "amzn-1", got)
		require.Equal(t, "amzn-1", rec.Header().Get("X-Trace"))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo, middlewares.RequestIDExtractor())

	log.InfoContext(internal.ContextWithRequestID(context.Background(), "req-42"), "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "req-42", line["request_id"])

	_, ok := middlewares.RequestIDExtractor()(context.Background())
	require.False(t, ok)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	responder := internal.NewResponder(nil, internal.DefaultCORS)

	t.Run("panic becomes server error envelope", func(t *testing.T) {
		t.Parallel()
		h := middlewares.Recover(responder)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"error":"Internal server error","code":"SERVER_ERROR"}`, rec.Body.String())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("passes through without panic", func(t *testing.T) {
		t.Parallel()
		h := middlewares.Recover(responder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		t.Parallel()
		h := middlewares.Recover(responder)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		require.PanicsWithValue(t, http.ErrAbortHandler, func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	h := middlewares.Timeout(time.Minute)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, _ = r.Context().Deadline()
	}))

	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
}
