package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torn-watcher/internal/domain"
)

func TestExpoSend_OneBatchedPost(t *testing.T) {
	calls := 0
	var got []map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		auth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewExpoGateway(srv.URL, "tok", time.Second)
	err := g.Send(context.Background(), []domain.NotificationMessage{
		{PushToken: "ExponentPushToken[a]", Title: "⚡ Energy Full", Body: "100/100"},
		{PushToken: "ExponentPushToken[b]", Title: "✈️ Landed", Body: "Welcome to Mexico"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Bearer tok", auth)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{
		"to": "ExponentPushToken[a]", "title": "⚡ Energy Full", "body": "100/100",
		"sound": "default", "priority": "high",
	}, got[0])
}

func TestExpoSend_EmptyBatchSkipsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("gateway must not be called")
	}))
	defer srv.Close()
	assert.NoError(t, NewExpoGateway(srv.URL, "", time.Second).Send(context.Background(), nil))
}

func TestExpoSend_Non2xxFailsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"code":"RATE_LIMIT"}]}`))
	}))
	defer srv.Close()

	err := NewExpoGateway(srv.URL, "", time.Second).Send(context.Background(),
		[]domain.NotificationMessage{{PushToken: "t", Title: "x", Body: "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "RATE_LIMIT")
}
