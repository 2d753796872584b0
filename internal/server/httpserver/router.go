package httpserver

import (
	"log/slog"
	"net/http"
)

// RouterConfig holds the dependencies of the HTTP routes.
type RouterConfig struct {
	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// Ready reports whether the RESP listener accepts connections.
	// Nil means always ready.
	Ready func() bool

	Logger *slog.Logger
}

// NewRouter builds the handler for the operational endpoints.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, _ *http.Request) {
		if cfg.Ready != nil && !cfg.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return Chain(mux,
		RequestID(),
		Recover(logger),
		AccessLog(logger),
	)
}

func writeStatus(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(text + "\n"))
}
