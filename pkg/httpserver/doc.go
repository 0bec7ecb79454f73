// Package httpserver runs the small operational HTTP endpoint of the paywall
// CLI: Prometheus metrics and health probes for the storage backend.
//
//	srv := httpserver.New(cfg, log)
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", metrics.Handler(reg))
//	mux.Handle("/healthz", httpserver.HealthCheckHandler(log, probe))
//	err := srv.Run(ctx, mux)
//
// Run returns once ctx is done and the server has shut down.
package httpserver
