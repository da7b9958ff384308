package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
)

type adminFixture struct {
	replay http.Handler
	admin  http.Handler
	log    *requestlog.MemoryStore
}

func newAdminFixture(t *testing.T) adminFixture {
	t.Helper()
	store, skipped := replay.Build(testRecords(), replay.SequentialClamping)
	require.Empty(t, skipped)

	m := metrics.New()
	m.SetStore(store.Len(), store.ResponseCount())
	log := requestlog.NewMemoryStore(10)

	return adminFixture{
		replay: NewHandler(store, HandlerOptions{Metrics: m, RequestLog: log}),
		admin:  NewAdminHandler(AdminOptions{Store: store, Metrics: m, RequestLog: log}),
		log:    log,
	}
}

func TestAdmin_Healthz(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	rec := do(f.admin, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Keys)
	assert.Equal(t, 4, health.Responses)
}

func TestAdmin_Keys(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	do(f.replay, http.MethodGet, "/api/items?x=1")

	rec := do(f.admin, http.MethodGet, "/keys")
	require.Equal(t, http.StatusOK, rec.Code)

	var keys []replay.KeySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	require.Len(t, keys, 3)
	assert.Equal(t, "http://harplay/api/items?x=1", keys[0].CanonicalURL)
	assert.Equal(t, 2, keys[0].Responses)
	assert.Equal(t, 0, keys[0].Cursor)
	assert.Equal(t, -1, keys[1].Cursor)
	assert.Equal(t, "sequential-clamping", keys[0].Behaviour)
}

func TestAdmin_Requests(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	do(f.replay, http.MethodGet, "/api/items?x=1")
	do(f.replay, http.MethodGet, "/missing")

	rec := do(f.admin, http.MethodGet, "/requests?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []requestlog.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/missing", entries[0].Path)

	rec = do(f.admin, http.MethodGet, "/requests?limit=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_limit", decodeError(t, rec).Error)

	rec = do(f.admin, http.MethodDelete, "/requests")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, f.log.Count())
}

func TestAdmin_Metrics(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	do(f.replay, http.MethodGet, "/api/items?x=1")

	rec := do(f.admin, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `harplay_requests_total{method="GET",outcome="served"} 1`)
	assert.Contains(t, body, "harplay_keys 3")
	assert.Contains(t, body, "harplay_recorded_responses 4")
}

func TestAdmin_OptionalRoutes(t *testing.T) {
	t.Parallel()

	h := NewAdminHandler(AdminOptions{})
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/keys").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/requests").Code)
}

func TestAdmin_DoesNotShadowReplay(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	rec := httptest.NewRecorder()
	f.replay.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(KindRequestNotFound), decodeError(t, rec).Error)
}
