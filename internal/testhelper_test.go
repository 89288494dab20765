package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/internal"
)

const (
	testToken     = "valid-token"
	testUserID    = "11111111-1111-4111-8111-111111111111"
	otherUserID   = "22222222-2222-4222-8222-222222222222"
	testEmail     = "lifter@example.com"
	ownedPlanID   = "3f1c2a4e-5b6d-4c7e-8f90-a1b2c3d4e5f6"
	foreignPlanID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
)

// fakeAuth accepts testToken only.
func fakeAuth() internal.Authenticator {
	return internal.AuthenticatorFunc(func(_ context.Context, token string) (internal.Principal, error) {
		if token != testToken {
			return internal.Principal{}, errors.New("invalid token")
		}
		return internal.Principal{ID: testUserID, Email: testEmail}, nil
	})
}

type ownedRow struct {
	table string
	id    string
	owner string
}

// fakeStore records ownership lookups and answers from a fixed row set.
type fakeStore struct {
	err   error
	rows  []ownedRow
	mu    sync.Mutex
	calls []ownedRow
}

func (s *fakeStore) OwnedRowExists(_ context.Context, table, id, ownerField, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ownedRow{table: table, id: id, owner: ownerID})
	if s.err != nil {
		return false, s.err
	}
	if ownerField != internal.DefaultOwnerField {
		return false, nil
	}
	for _, r := range s.rows {
		if r.table == table && r.id == id && r.owner == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newPlanStore() *fakeStore {
	return &fakeStore{rows: []ownedRow{
		{table: "workout_plans", id: ownedPlanID, owner: testUserID},
		{table: "workout_plans", id: foreignPlanID, owner: otherUserID},
	}}
}

// countingHandler returns 200 with the captured params and counts calls.
type countingHandler struct {
	calls atomic.Int32
}

func (h *countingHandler) handle(rc *internal.RequestContext) (*internal.Response, error) {
	h.calls.Add(1)
	return rc.JSON(http.StatusOK, rc.Params)
}

// logBuffer is a goroutine-safe JSON log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) lines(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for line := range bytes.SplitSeq(bytes.TrimSpace(b.buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func newJSONLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func serve(fn http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fn.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) internal.ErrorEnvelope {
	t.Helper()
	var env internal.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
