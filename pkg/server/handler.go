package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/getmockd/harplay/pkg/httputil"
	"github.com/getmockd/harplay/pkg/logging"
	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
)

// framingHeaders are recomputed by net/http and never copied from a
// recording.
var framingHeaders = []string{"content-length", "transfer-encoding"}

// HandlerOptions configures the replay handler.
type HandlerOptions struct {
	// Statuses maps failure kinds to HTTP statuses. Nil uses
	// DefaultStatusMap.
	Statuses StatusMap

	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	RequestLog requestlog.Logger
}

type replayHandler struct {
	responder replay.Responder
	statuses  StatusMap
	logger    *slog.Logger
	metrics   *metrics.Metrics
	requests  requestlog.Logger
}

// NewHandler returns the mock endpoint: every path and method is answered
// from responder.
func NewHandler(responder replay.Responder, opts HandlerOptions) http.Handler {
	h := &replayHandler{
		responder: responder,
		statuses:  opts.Statuses,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		requests:  opts.RequestLog,
	}
	if h.statuses == nil {
		h.statuses = DefaultStatusMap()
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Handle("/*", http.HandlerFunc(h.serveReplay))
	// Non-standard methods never reach a route; replay them too.
	r.MethodNotAllowed(h.serveReplay)
	return r
}

func (h *replayHandler) serveReplay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := middleware.GetReqID(r.Context())

	var (
		status  int
		outcome string
		errMsg  string
	)

	resp, err := h.respond(r)
	if err == nil {
		err = checkReplayable(resp)
	}
	if err != nil {
		kind := Classify(err)
		status = h.statuses.Status(kind)
		outcome = string(kind)
		errMsg = err.Error()
		h.logger.Warn("replay failed",
			"method", r.Method, "url", r.URL.String(), "kind", kind, "status", status,
			"error", err, "request_id", reqID)
		httputil.WriteError(w, status, string(kind), errMsg)
	} else {
		status = resp.StatusCode
		outcome = OutcomeServed
		writeRecorded(w, resp)
		h.logger.Debug("served recorded response",
			"method", r.Method, "url", r.URL.String(), "status", status, "request_id", reqID)
	}

	elapsed := time.Since(start)
	h.metrics.ObserveRequest(r.Method, outcome, elapsed)
	if h.requests != nil {
		h.requests.Log(&requestlog.Entry{
			Timestamp:   start,
			RequestID:   reqID,
			Method:      r.Method,
			Path:        r.URL.Path,
			QueryString: r.URL.RawQuery,
			RemoteAddr:  r.RemoteAddr,
			Status:      status,
			Outcome:     outcome,
			Error:       errMsg,
			DurationMs:  float64(elapsed.Microseconds()) / 1000,
		})
	}
}

// respond calls the responder, turning a panic into ErrInternal so that a
// broken responder fails one request instead of the connection.
func (h *replayHandler) respond(r *http.Request) (resp replay.RecordedResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, p)
		}
	}()
	return h.responder.RespondTo(replay.FromHTTPRequest(r))
}

// checkReplayable rejects recorded statuses net/http cannot write as a final
// response.
func checkReplayable(resp replay.RecordedResponse) error {
	if resp.StatusCode < 200 || resp.StatusCode > 999 {
		return fmt.Errorf("%w: recorded status %d cannot be replayed", ErrInternal, resp.StatusCode)
	}
	return nil
}

// writeRecorded copies the recorded status, headers and body. Length
// framing headers are dropped since net/http computes its own.
func writeRecorded(w http.ResponseWriter, resp replay.RecordedResponse) {
	header := w.Header()
	for _, h := range resp.Headers {
		if isFramingHeader(h.Name) {
			continue
		}
		header.Add(h.Name, h.Value)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

func isFramingHeader(name string) bool {
	for _, f := range framingHeaders {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}
