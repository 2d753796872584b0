// Package shutdown provides graceful shutdown for minikv.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("redis", srv.Shutdown)
//	if err := h.Wait(ctx); err != nil {
//		log.Error("shutdown", "error", err)
//	}
package shutdown
