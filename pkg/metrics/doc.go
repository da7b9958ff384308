// Package metrics exposes Prometheus metrics for the replay server.
//
// Each Metrics value owns a private registry, so tests and multiple servers
// in one process do not collide on the global default registry.
//
//	harplay_requests_total{method,outcome}          replayed requests
//	harplay_request_duration_seconds{outcome}       handler latency
//	harplay_keys                                    distinct recorded URLs
//	harplay_recorded_responses                      responses held in memory
//	harplay_records_skipped_total{reason}           entries not loaded
//
// Outcomes are "served" or one of the failure kinds reported by the server
// package. Go runtime and process collectors are registered as well.
//
//	m := metrics.New()
//	m.ObserveRequest("GET", "served", time.Since(start))
//	admin.Handle("/metrics", m.Handler())
package metrics
