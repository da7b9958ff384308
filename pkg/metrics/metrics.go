package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// durationBuckets covers in-memory lookups up to slow clients.
var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// knownMethods bounds the method label; anything else is reported as "OTHER".
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// Metrics holds the collectors updated by the server. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	keys      prometheus.Gauge
	responses prometheus.Gauge
	skipped   *prometheus.CounterVec
}

// New creates and registers the harplay collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harplay_requests_total",
				Help: "Replayed requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harplay_request_duration_seconds",
				Help:    "Replay handler duration",
				Buckets: durationBuckets,
			},
			[]string{"outcome"},
		),
		keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harplay_keys",
			Help: "Distinct canonical URLs loaded from the recording",
		}),
		responses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harplay_recorded_responses",
			Help: "Recorded responses held in memory",
		}),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harplay_records_skipped_total",
				Help: "Recorded entries not loaded, by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.keys,
		m.responses,
		m.skipped,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one replayed request.
func (m *Metrics) ObserveRequest(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if !knownMethods[method] {
		method = "OTHER"
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetStore records the size of the loaded store.
func (m *Metrics) SetStore(keys, responses int) {
	if m == nil {
		return
	}
	m.keys.Set(float64(keys))
	m.responses.Set(float64(responses))
}

// AddSkipped counts n entries that were not loaded for reason.
func (m *Metrics) AddSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(reason).Add(float64(n))
}
