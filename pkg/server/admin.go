package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/getmockd/harplay/pkg/httputil"
	"github.com/getmockd/harplay/pkg/metrics"
	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
)

// KeyLister is the read-only view of the store the admin API exposes.
type KeyLister interface {
	Keys() []replay.KeySummary
	Len() int
	ResponseCount() int
}

// AdminOptions configures the admin API. Nil fields disable the routes that
// need them.
type AdminOptions struct {
	Store      KeyLister
	Metrics    *metrics.Metrics
	RequestLog requestlog.Store
}

type healthResponse struct {
	Status    string `json:"status"`
	Keys      int    `json:"keys"`
	Responses int    `json:"responses"`
}

// NewAdminHandler returns the admin API, served on its own listener so it
// never shadows recorded paths.
//
//	GET    /healthz    liveness and store size
//	GET    /metrics    Prometheus metrics
//	GET    /keys       recorded keys with cursors
//	GET    /requests   request log, newest first (?limit=N)
//	DELETE /requests   clear the request log
func NewAdminHandler(opts AdminOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		health := healthResponse{Status: "ok"}
		if opts.Store != nil {
			health.Keys = opts.Store.Len()
			health.Responses = opts.Store.ResponseCount()
		}
		httputil.WriteJSON(w, http.StatusOK, health)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	if opts.Store != nil {
		r.Get("/keys", func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, opts.Store.Keys())
		})
	}

	if opts.RequestLog != nil {
		r.Get("/requests", func(w http.ResponseWriter, req *http.Request) {
			limit := 0
			if v := req.URL.Query().Get("limit"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					httputil.WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
					return
				}
				limit = n
			}
			httputil.WriteJSON(w, http.StatusOK, opts.RequestLog.List(limit))
		})
		r.Delete("/requests", func(w http.ResponseWriter, _ *http.Request) {
			opts.RequestLog.Clear()
			httputil.WriteNoContent(w)
		})
	}

	return r
}
