package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auditfeed/internal/auditlog/handler"
	"auditfeed/internal/platform/health"
	"auditfeed/pkg/platform/middleware/request"
)

// newRouter mounts the report, health and metrics routes behind the common
// middleware chain.
func newRouter(log *slog.Logger, gatherer prometheus.Gatherer, httpMetrics *request.Metrics, reports *handler.Handler, probes *health.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(httpMetrics))

	probes.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	reports.Register(r)
	return r
}
