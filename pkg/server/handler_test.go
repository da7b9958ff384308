package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/harplay/pkg/httputil"
	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
)

func testRecords() []replay.Record {
	return []replay.Record{
		{
			Request: replay.Request{Method: "GET", URL: "https://api.example.org/api/items?x=1"},
			Response: replay.RecordedResponse{
				StatusCode: 200,
				Headers: []replay.Header{
					{Name: "Content-Type", Value: "application/json"},
					{Name: "content-length", Value: "999"},
					{Name: "Transfer-Encoding", Value: "chunked"},
					{Name: "Set-Cookie", Value: "a=1"},
					{Name: "Set-Cookie", Value: "b=2"},
				},
				Body: []byte(`{"items":[1]}`),
			},
		},
		{
			Request:  replay.Request{Method: "GET", URL: "http://localhost:3030/api/items?x=1"},
			Response: replay.RecordedResponse{StatusCode: 201, Body: []byte(`{"items":[2]}`)},
		},
		{
			Request:  replay.Request{Method: "DELETE", URL: "https://api.example.org/api/items/7"},
			Response: replay.RecordedResponse{StatusCode: 204},
		},
		{
			Request:  replay.Request{Method: "GET", URL: "https://api.example.org/aborted"},
			Response: replay.RecordedResponse{StatusCode: 0},
		},
	}
}

func newTestHandler(t *testing.T, behaviour replay.Behaviour, opts HandlerOptions) http.Handler {
	t.Helper()
	store, skipped := replay.Build(testRecords(), behaviour)
	require.Empty(t, skipped)
	return NewHandler(store, opts)
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_ServesRecordedResponse(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, replay.SequentialOnce, HandlerOptions{})

	rec := do(h, http.MethodGet, "/api/items?x=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[1]}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, rec.Header().Values("Set-Cookie"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Header().Get("Transfer-Encoding"))

	rec = do(h, http.MethodGet, "/api/items?x=1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"items":[2]}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/items?x=1")
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, string(KindResponseNotFound), decodeError(t, rec).Error)
}

func TestHandler_EmptyBody(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{})
	rec := do(h, http.MethodDelete, "/api/items/7")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_AnyMethodMatches(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{})
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodOptions, "PROPFIND"} {
		rec := do(h, method, "/api/items?x=1")
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestHandler_Failures(t *testing.T) {
	t.Parallel()

	t.Run("request not found", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{})
		rec := do(h, http.MethodGet, "/api/items?x=2")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, string(KindRequestNotFound), body.Error)
		assert.Equal(t, "request not found", body.Message)
	})

	t.Run("invalid live URL", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{})
		req := httptest.NewRequest(http.MethodGet, "/api/items?x=1", nil)
		req.URL.Scheme = "ftp"
		req.URL.Host = "files.example.org"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, string(KindInvalidURL), decodeError(t, rec).Error)
	})

	t.Run("unreplayable recorded status", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{})
		rec := do(h, http.MethodGet, "/aborted")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, string(KindInternal), decodeError(t, rec).Error)
	})

	t.Run("panicking responder", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(panicResponder{}, HandlerOptions{})
		rec := do(h, http.MethodGet, "/anything")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, string(KindInternal), body.Error)
		assert.Contains(t, body.Message, "boom")
	})

	t.Run("collapsed statuses", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t, replay.SequentialOnce, HandlerOptions{Statuses: Collapse(599)})
		assert.Equal(t, 599, do(h, http.MethodGet, "/missing").Code)
		assert.Equal(t, 599, do(h, http.MethodGet, "/aborted").Code)
		assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/items/7").Code)
		assert.Equal(t, 599, do(h, http.MethodDelete, "/api/items/7").Code)
	})
}

type panicResponder struct{}

func (panicResponder) RespondTo(replay.Request) (replay.RecordedResponse, error) {
	panic("boom")
}

func TestHandler_RecordsMetricsAndRequestLog(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	log := requestlog.NewMemoryStore(10)
	h := newTestHandler(t, replay.AlwaysFirst, HandlerOptions{Metrics: m, RequestLog: log})

	do(h, http.MethodGet, "/api/items?x=1")
	do(h, http.MethodGet, "/nope?y=2")

	entries := log.List(0)
	require.Len(t, entries, 2)

	miss := entries[0]
	assert.Equal(t, "/nope", miss.Path)
	assert.Equal(t, "y=2", miss.QueryString)
	assert.Equal(t, http.StatusNotFound, miss.Status)
	assert.Equal(t, string(KindRequestNotFound), miss.Outcome)
	assert.Equal(t, "request not found", miss.Error)
	assert.NotEmpty(t, miss.RequestID)

	hit := entries[1]
	assert.Equal(t, OutcomeServed, hit.Outcome)
	assert.Equal(t, http.StatusOK, hit.Status)
	assert.Empty(t, hit.Error)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "harplay_requests_total" {
			found = true
			assert.Len(t, mf.GetMetric(), 2)
		}
	}
	assert.True(t, found)
	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "harplay_request_duration_seconds"))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	_, nerr := replay.Canonicalize("GET", "ftp://x/", nil)
	tests := []struct {
		err  error
		want Kind
	}{
		{replay.ErrRequestNotFound, KindRequestNotFound},
		{replay.ErrResponseNotFound, KindResponseNotFound},
		{nerr, KindInvalidURL},
		{ErrInternal, KindInternal},
		{assert.AnError, KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), tt.err.Error())
	}
}

func TestStatusMap(t *testing.T) {
	t.Parallel()

	m := StatusMap{KindRequestNotFound: 418, KindInvalidURL: 42}
	assert.Equal(t, 418, m.Status(KindRequestNotFound))
	assert.Equal(t, http.StatusBadRequest, m.Status(KindInvalidURL), "out of range falls back")
	assert.Equal(t, http.StatusGone, m.Status(KindResponseNotFound))
	assert.Equal(t, http.StatusInternalServerError, m.Status(Kind("unknown")))
}
