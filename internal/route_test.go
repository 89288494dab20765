package internal_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/internal"
)

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"/plans", false},
		{"/plans/{planId}", false},
		{"/plans/{planId}/days/{dayId}", false},
		{"/", false},
		{"plans", true},
		{"/plans//days", true},
		{"/plans/{}", true},
		{"/plans/{id", true},
		{"/plans/x{id}", true},
		{"/plans/{id}/days/{id}", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			p, err := internal.CompilePattern(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestMustCompilePatternPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { internal.MustCompilePattern("relative") })
	require.Panics(t, func() { internal.NewRoute("/a/{x}/{x}") })
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		params  map[string]string
		match   bool
	}{
		{"static exact", "/plans", "/plans", map[string]string{}, true},
		{"static trailing slash", "/plans", "/plans/", map[string]string{}, true},
		{"param trailing slash", "/plans/{planId}", "/plans/abc/", map[string]string{"planId": "abc"}, true},
		{"only one trailing slash is ignored", "/plans", "/plans//", nil, false},
		{"static case sensitive", "/plans", "/Plans", nil, false},
		{"single param", "/plans/{planId}", "/plans/abc", map[string]string{"planId": "abc"}, true},
		{
			"nested params", "/plans/{planId}/days/{dayId}", "/plans/p1/days/d2",
			map[string]string{"planId": "p1", "dayId": "d2"}, true,
		},
		{"literal mismatch between params", "/plans/{planId}/days/{dayId}", "/plans/p1/weeks/d2", nil, false},
		{"empty param segment", "/plans/{planId}/days", "/plans//days", nil, false},
		{"too few segments", "/plans/{planId}", "/plans", nil, false},
		{"too many segments", "/plans/{planId}", "/plans/a/b", nil, false},
		{"no greedy placeholder", "/plans/{rest}", "/plans/a/b/c", nil, false},
		{"root", "/", "/", map[string]string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			params, ok := internal.MustCompilePattern(tt.pattern).Match(tt.path)
			require.Equal(t, tt.match, ok)
			if tt.match {
				require.Equal(t, tt.params, params)
			}
		})
	}
}

func TestPatternSegmentCountNeverMatches(t *testing.T) {
	t.Parallel()

	patterns := []string{
		"/things",
		"/things/{id}",
		"/{a}/{b}",
		"/things/{id}/subthings/{subId}",
		"/{a}/x/{b}/{c}",
	}

	for _, raw := range patterns {
		p := internal.MustCompilePattern(raw)
		n := strings.Count(strings.Trim(raw, "/"), "/") + 1

		for count := 1; count <= 6; count++ {
			if count == n {
				continue
			}
			segs := make([]string, count)
			for i := range segs {
				segs[i] = fmt.Sprintf("s%d", i)
			}
			path := "/" + strings.Join(segs, "/")
			_, ok := p.Match(path)
			require.False(t, ok, "pattern %s must not match %s", raw, path)
		}
	}
}

func TestRouteResult(t *testing.T) {
	t.Parallel()

	resp, ok := internal.NotMatched.Response()
	require.False(t, ok)
	require.Nil(t, resp)

	want := &internal.Response{Status: 200}
	resp, ok = internal.Matched(want).Response()
	require.True(t, ok)
	require.Same(t, want, resp)

	// A matched route may legitimately carry a nil response; it is still
	// distinct from NotMatched.
	_, ok = internal.Matched(nil).Response()
	require.True(t, ok)
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, m := range []internal.Method{
		internal.MethodGet, internal.MethodPost, internal.MethodPut,
		internal.MethodPatch, internal.MethodDelete, internal.MethodOptions,
	} {
		got, ok := internal.ParseMethod(m.String())
		require.True(t, ok)
		require.Equal(t, m, got)
	}

	_, ok := internal.ParseMethod("HEAD")
	require.False(t, ok)
	_, ok = internal.ParseMethod("get")
	require.False(t, ok)
}
