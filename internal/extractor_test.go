package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		v, ok := internal.NewExtractor().Extract(req)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
		req.Header.Set("X-Token", "from-header")

		ext := internal.NewExtractor(
			internal.FromHeader("X-Token"),
			internal.FromQuery("token"),
		)
		v, ok := ext.Extract(req)
		require.True(t, ok)
		require.Equal(t, "from-header", v)
	})

	t.Run("falls through to second source when first misses", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)

		ext := internal.NewExtractor(
			internal.FromHeader("X-Token"),
			internal.FromQuery("token"),
		)
		v, ok := ext.Extract(req)
		require.True(t, ok)
		require.Equal(t, "from-query", v)
	})

	t.Run("all sources miss returns false", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		ext := internal.NewExtractor(
			internal.FromHeader("X-Token"),
			internal.FromQuery("token"),
		)
		_, ok := ext.Extract(req)
		require.False(t, ok)
	})
}

func TestFromHeader(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Apikey", "  key-1 ")
		v, ok := internal.FromHeader("apikey")(req)
		require.True(t, ok)
		require.Equal(t, "key-1", v)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := internal.FromHeader("apikey")(req)
		require.False(t, ok)
	})
}

func TestFromBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid Bearer token", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case insensitive prefix", "bearer token-1", "token-1", true},
		{"mixed case prefix", "BeArEr token-2", "token-2", true},
		{"missing Authorization header", "", "", false},
		{"non-Bearer scheme", "Basic dXNlcjpwYXNz", "", false},
		{"prefix only", "Bearer ", "", false},
		{"whitespace token", "Bearer    ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			v, ok := internal.FromBearerToken()(req)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, v)
		})
	}
}
