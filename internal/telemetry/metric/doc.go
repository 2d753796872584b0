// Package metric provides Prometheus metrics for minikv.
//
//   - prometheus.go: registry, server counters and the HTTP handler
//   - collector.go: scrape-time gauges for the store and client slots
//
// Metrics are exposed at /metrics in Prometheus text format when the
// metrics listener is enabled.
package metric
