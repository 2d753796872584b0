// Package httpserver serves the operational HTTP endpoints of minikv-server:
//
//	GET /metrics  Prometheus metrics
//	GET /health   liveness, always 200 while the process runs
//	GET /ready    200 while the RESP listener accepts connections, else 503
//
// Requests pass through RequestID, Recover and AccessLog middleware.
package httpserver
