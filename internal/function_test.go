package internal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/internal"
)

func TestFunctionNoRoute(t *testing.T) {
	t.Parallel()

	h := &countingHandler{}
	fn := internal.NewFunction("/things",
		internal.WithAuthenticator(fakeAuth()),
		internal.WithRoutes(
			internal.NewRoute("/things").GET(h.handle),
			internal.NewRoute("/things/{id}").GET(h.handle),
		),
	)

	for _, path := range []string{"/things/a/b", "/other", "/things/a/b/c/d"} {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, path, nil)))
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		env := decodeError(t, rec)
		require.Contains(t, env.Error, "/things")
		require.Equal(t, internal.CodeRouteNotFound, env.Code)
	}
	require.Zero(t, h.calls.Load())
}

func TestFunctionFirstMatchWins(t *testing.T) {
	t.Parallel()

	first, second := &countingHandler{}, &countingHandler{}
	fn := internal.NewFunction("/things",
		internal.WithAuthenticator(fakeAuth()),
		internal.WithRoutes(
			internal.NewRoute("/things/{id}").GET(first.handle),
			internal.NewRoute("/things/special").GET(second.handle),
		),
	)

	rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things/special", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, first.calls.Load())
	require.Zero(t, second.calls.Load())
}

func TestFunctionMethodAbsenceFallsThrough(t *testing.T) {
	t.Parallel()

	reader, writer := &countingHandler{}, &countingHandler{}
	fn := internal.NewFunction("/things",
		internal.WithAuthenticator(fakeAuth()),
		internal.WithRoutes(
			internal.NewRoute("/things/{id}").GET(reader.handle),
			internal.NewRoute("/things/{id}").DELETE(writer.handle),
		),
	)

	t.Run("later route claims another method on the same path", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodDelete, "/things/1", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 1, writer.calls.Load())
	})

	t.Run("unclaimed method is 404, not 405", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodPut, "/things/1", nil)))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, internal.CodeRouteNotFound, decodeError(t, rec).Code)
	})

	t.Run("undispatchable method is 404", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodHead, "/things/1", nil)))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFunctionPreflight(t *testing.T) {
	t.Parallel()

	h := &countingHandler{}
	t.Cleanup(func() { require.Zero(t, h.calls.Load()) })
	fn := internal.NewFunction("/things",
		internal.WithRoutes(
			internal.NewRoute("/things").GET(h.handle).POST(h.handle),
			internal.NewRoute("/things/{id}").GET(h.handle).PATCH(h.handle),
			internal.NewRoute("/things/{id}/custom").GET(h.handle).OPTIONS(func(rc *internal.RequestContext) (*internal.Response, error) {
				return rc.NoContent()
			}),
		),
	)

	t.Run("bare function path", func(t *testing.T) {
		t.Parallel()
		rec := serve(fn, httptest.NewRequest(http.MethodOptions, "/things", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET, POST")
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Zero(t, rec.Body.Len())
	})

	t.Run("sub-route advertises its own methods", func(t *testing.T) {
		t.Parallel()
		rec := serve(fn, httptest.NewRequest(http.MethodOptions, "/things/42", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "GET, PATCH, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("route-specific OPTIONS handler", func(t *testing.T) {
		t.Parallel()
		rec := serve(fn, httptest.NewRequest(http.MethodOptions, "/things/42/custom", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("preflight needs no credentials", func(t *testing.T) {
		t.Parallel()
		rec := serve(fn, httptest.NewRequest(http.MethodOptions, "/things/42", nil))
		require.NotEqual(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestFunctionAuthentication(t *testing.T) {
	t.Parallel()

	var seen *internal.Principal
	fn := internal.NewFunction("/things",
		internal.WithAuthenticator(fakeAuth()),
		internal.WithRoutes(
			internal.NewRoute("/things").GET(func(rc *internal.RequestContext) (*internal.Response, error) {
				seen = rc.Principal
				return rc.JSON(http.StatusOK, rc.Principal)
			}),
			internal.NewRoute("/things/open", internal.Public()).GET(func(rc *internal.RequestContext) (*internal.Response, error) {
				return rc.JSON(http.StatusOK, rc.PrincipalID())
			}),
		),
	)

	t.Run("missing credential", func(t *testing.T) {
		rec := serve(fn, httptest.NewRequest(http.MethodGet, "/things", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, internal.CodeAuthRequired, decodeError(t, rec).Code)
	})

	t.Run("rejected credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/things", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := serve(fn, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, internal.CodeAuthRequired, decodeError(t, rec).Code)
	})

	t.Run("principal attached", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, testUserID, seen.ID)
		require.Equal(t, testEmail, seen.Email)
	})

	t.Run("public route skips auth", func(t *testing.T) {
		rec := serve(fn, httptest.NewRequest(http.MethodGet, "/things/open", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"data":""}`, rec.Body.String())
	})

	t.Run("no authenticator configured fails closed", func(t *testing.T) {
		bare := internal.NewFunction("/things", internal.WithRoutes(
			internal.NewRoute("/things").GET((&countingHandler{}).handle),
		))
		rec := serve(bare, authed(httptest.NewRequest(http.MethodGet, "/things", nil)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestFunctionOwnership(t *testing.T) {
	t.Parallel()

	newFn := func(store *fakeStore, h *countingHandler) *internal.Function {
		return internal.NewFunction("/plans",
			internal.WithAuthenticator(fakeAuth()),
			internal.WithStore(store),
			internal.WithRoutes(
				internal.NewRoute("/plans/{planId}", internal.WithOwnership("workout_plans", "planId")).
					GET(h.handle),
				internal.NewRoute("/plans/{planId}/misconfigured", internal.WithOwnership("workout_plans", "missing")).
					GET(h.handle),
			),
		)
	}

	t.Run("owner reaches handler", func(t *testing.T) {
		t.Parallel()
		store, h := newPlanStore(), &countingHandler{}
		rec := serve(newFn(store, h), authed(httptest.NewRequest(http.MethodGet, "/plans/"+ownedPlanID, nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 1, h.calls.Load())
		require.JSONEq(t, `{"data":{"planId":"`+ownedPlanID+`"}}`, rec.Body.String())
	})

	t.Run("foreign plan never reaches handler", func(t *testing.T) {
		t.Parallel()
		store, h := newPlanStore(), &countingHandler{}
		rec := serve(newFn(store, h), authed(httptest.NewRequest(http.MethodGet, "/plans/"+foreignPlanID, nil)))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, internal.CodeResourceNotFound, decodeError(t, rec).Code)
		require.Zero(t, h.calls.Load())
	})

	t.Run("malformed id is rejected before the store", func(t *testing.T) {
		t.Parallel()
		store, h := newPlanStore(), &countingHandler{}
		rec := serve(newFn(store, h), authed(httptest.NewRequest(http.MethodGet, "/plans/not-a-uuid", nil)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, internal.CodeInvalidUUID, decodeError(t, rec).Code)
		require.Zero(t, store.callCount())
		require.Zero(t, h.calls.Load())
	})

	t.Run("rule naming an absent param", func(t *testing.T) {
		t.Parallel()
		store, h := newPlanStore(), &countingHandler{}
		rec := serve(newFn(store, h), authed(httptest.NewRequest(http.MethodGet, "/plans/"+ownedPlanID+"/misconfigured", nil)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, internal.CodeMissingParameter, decodeError(t, rec).Code)
		require.Zero(t, h.calls.Load())
	})

	t.Run("auth runs before ownership", func(t *testing.T) {
		t.Parallel()
		store, h := newPlanStore(), &countingHandler{}
		rec := serve(newFn(store, h), httptest.NewRequest(http.MethodGet, "/plans/"+ownedPlanID, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, store.callCount())
	})
}

func TestFunctionHandlerFailures(t *testing.T) {
	t.Parallel()

	log, buf := newJSONLogger()
	fn := internal.NewFunction("/things",
		internal.WithFunctionLogger(log),
		internal.WithAuthenticator(fakeAuth()),
		internal.WithRoutes(
			internal.NewRoute("/things/error").GET(func(*internal.RequestContext) (*internal.Response, error) {
				return nil, errors.New("connection reset")
			}),
			internal.NewRoute("/things/panic").GET(func(*internal.RequestContext) (*internal.Response, error) {
				panic("nil map write")
			}),
			internal.NewRoute("/things/http-error").GET(func(*internal.RequestContext) (*internal.Response, error) {
				return nil, internal.ErrValidation(map[string]string{"name": "is required"})
			}),
			internal.NewRoute("/things/nil").GET(func(*internal.RequestContext) (*internal.Response, error) {
				return nil, nil
			}),
		),
	)

	t.Run("returned error", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things/error", nil)))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeError(t, rec)
		require.Equal(t, internal.CodeMethodHandlerError, env.Code)
		require.Equal(t, map[string]any{"message": "connection reset"}, env.Details)
	})

	t.Run("panic", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things/panic", nil)))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeError(t, rec)
		require.Equal(t, internal.CodeMethodHandlerError, env.Code)
		require.NotContains(t, rec.Body.String(), "goroutine")
	})

	t.Run("HTTPError keeps its status and code", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things/http-error", nil)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeError(t, rec)
		require.Equal(t, internal.CodeValidationError, env.Code)
		require.Equal(t, map[string]any{"name": "is required"}, env.Details)
	})

	t.Run("nil response", func(t *testing.T) {
		rec := serve(fn, authed(httptest.NewRequest(http.MethodGet, "/things/nil", nil)))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	var stacks int
	for _, line := range buf.lines(t) {
		if cause, ok := line["error"].(map[string]any); ok {
			if s, ok := cause["stack"].(string); ok && strings.Contains(s, "goroutine") {
				stacks++
			}
		}
	}
	require.Equal(t, 1, stacks, "only the panic carries a stack trace")
}

func TestFunctionMountPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/plans", internal.NewFunction("plans/").MountPath())
	require.Equal(t, "/plans", internal.NewFunction("/plans").MountPath())
}
