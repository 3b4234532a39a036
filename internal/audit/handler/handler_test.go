package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgate/internal/audit"
)

func newActivityRouter(t *testing.T) (*audit.InMemoryStore, chi.Router) {
	t.Helper()
	store := audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h := New(store, logger)
	r := chi.NewRouter()
	h.Register(r)
	return store, r
}

func seedEvents(t *testing.T, store *audit.InMemoryStore, n int, kind audit.Kind) {
	t.Helper()
	id := uuid.New()
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(context.Background(), audit.NewEvent(&id, kind, "seeded", nil)))
	}
}

func getPage(t *testing.T, r chi.Router, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListActivitiesPaginates(t *testing.T) {
	store, r := newActivityRouter(t)
	seedEvents(t, store, 25, audit.KindLoginSuccess)

	body := getPage(t, r, "/activities?page=2&limit=10")
	assert.Equal(t, float64(2), body["current_page"])
	assert.Equal(t, float64(3), body["total_pages"])
	assert.Equal(t, float64(25), body["total_activities"])
	assert.Len(t, body["activities"], 10)
}

func TestListActivitiesDefaultsPage(t *testing.T) {
	store, r := newActivityRouter(t)
	seedEvents(t, store, 3, audit.KindLoginSuccess)

	body := getPage(t, r, "/activities")
	assert.Equal(t, float64(1), body["current_page"])
	assert.Equal(t, float64(1), body["total_pages"])
	assert.Len(t, body["activities"], 3)
}

func TestListSuspiciousFiltersBenignEvents(t *testing.T) {
	store, r := newActivityRouter(t)
	seedEvents(t, store, 4, audit.KindLoginSuccess)
	seedEvents(t, store, 2, audit.KindLoginFail)

	body := getPage(t, r, "/activities/suspicious")
	assert.Equal(t, float64(2), body["total_activities"])

	activities, ok := body["activities"].([]any)
	require.True(t, ok)
	for _, a := range activities {
		event := a.(map[string]any)
		assert.Equal(t, string(audit.KindLoginFail), event["type"])
		assert.Equal(t, true, event["suspicious"])
	}
}

func TestListActivitiesEmptyStore(t *testing.T) {
	_, r := newActivityRouter(t)

	body := getPage(t, r, "/activities/suspicious")
	assert.Equal(t, float64(0), body["total_activities"])
	assert.Equal(t, float64(0), body["total_pages"])
	assert.Empty(t, body["activities"])
}
