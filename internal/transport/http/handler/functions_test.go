package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/torn-watcher/internal/domain"
)

// --- mock ---

type mockRunner struct{ mock.Mock }

func (m *mockRunner) Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error) {
	args := m.Called(ctx, runID, opts)
	if s, _ := args.Get(0).(*domain.RunSummary); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newRouter(runners map[string]Runner) http.Handler {
	h := NewFunctionHandler(runners)
	r := chi.NewRouter()
	r.Get("/v1/functions", h.List)
	r.Post("/v1/functions/{name}", h.Invoke)
	r.Get("/v1/health-check/{action}", NewHealthHandler().Ping)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- tests ---

func TestInvoke_Summary(t *testing.T) {
	run := &mockRunner{}
	run.On("Run", mock.Anything, mock.AnythingOfType("string"), domain.RunOptions{}).
		Return(&domain.RunSummary{Function: "status-watcher", Processed: 3, Notified: 1, Errors: []string{}}, nil)

	rr := do(t, newRouter(map[string]Runner{"status-watcher": run}), http.MethodPost, "/v1/functions/status-watcher", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "status-watcher", got["function"])
	assert.Equal(t, float64(3), got["processed"])
	assert.Equal(t, float64(1), got["notified"])
}

func TestInvoke_LimitFromBody(t *testing.T) {
	run := &mockRunner{}
	run.On("Run", mock.Anything, mock.Anything, domain.RunOptions{Limit: 5}).
		Return(domain.NewRunSummary("chain-status", "r"), nil).Once()

	rr := do(t, newRouter(map[string]Runner{"chain-status": run}), http.MethodPost, "/v1/functions/chain-status", `{"limit":5}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	run.AssertExpectations(t)
}

func TestInvoke_BadBodies(t *testing.T) {
	run := &mockRunner{}
	h := newRouter(map[string]Runner{"chain-status": run})

	for _, body := range []string{`{"limit":0.5}`, `{"limit":500}`, `not json`} {
		rr := do(t, h, http.MethodPost, "/v1/functions/chain-status", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	run.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoke_UnknownFunction(t *testing.T) {
	rr := do(t, newRouter(map[string]Runner{}), http.MethodPost, "/v1/functions/nope", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"unknown function \"nope\""}`, rr.Body.String())
}

func TestInvoke_TopLevelFailure(t *testing.T) {
	run := &mockRunner{}
	run.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("load credentials: rpc failed"))

	rr := do(t, newRouter(map[string]Runner{"event-sync": run}), http.MethodPost, "/v1/functions/event-sync", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"load credentials: rpc failed"}`, rr.Body.String())
}

func TestList_SortedNames(t *testing.T) {
	rr := do(t, newRouter(map[string]Runner{"stock-sync": &mockRunner{}, "item-sync": &mockRunner{}}), http.MethodGet, "/v1/functions", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"functions":["item-sync","stock-sync"]}`, rr.Body.String())
}

func TestPing(t *testing.T) {
	h := newRouter(nil)

	rr := do(t, h, http.MethodGet, "/v1/health-check/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/v1/health-check/other", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
