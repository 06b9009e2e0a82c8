package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"auditfeed/internal/auditlog/client"
	"auditfeed/internal/auditlog/credential"
	"auditfeed/internal/auditlog/handler"
	"auditfeed/internal/auditlog/metrics"
	"auditfeed/internal/auditlog/service"
	"auditfeed/internal/auditlog/tracer"
	"auditfeed/internal/platform/config"
	"auditfeed/internal/platform/health"
	"auditfeed/internal/platform/logger"
	"auditfeed/pkg/platform/middleware/request"
)

// main wires the report pipeline behind an HTTP router and keeps the server
// lifecycle small.
func main() {
	log := logger.New(os.Stdout, logger.LevelFromFlags(true, os.Getenv("AUDITFEED_DEBUG") == "true"))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tenantID, err := credential.Resolve(cfg.API.TenantID, cfg.API.AccessToken)
	if err != nil {
		log.Error("cannot determine tenant", "error", err)
		os.Exit(1)
	}
	publisherID := cfg.API.PublisherID
	if publisherID == "" {
		publisherID = tenantID
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegisterer(reg)

	api, err := client.New(cfg.API.ServiceURL, tenantID, cfg.API.AccessToken,
		client.WithTimeout(cfg.API.RequestTimeout),
		client.WithObserver(m),
	)
	if err != nil {
		log.Error("failed to create management api client", "error", err)
		os.Exit(1)
	}

	svc := service.New(api, publisherID,
		service.WithLogger(log),
		service.WithTracer(tracer.NewOTel()),
		service.WithMetrics(m),
		service.WithFetchTimeout(cfg.API.RequestTimeout),
	)

	probes := health.New(cfg.Server.Environment, tenantID, cfg.API.AccessToken)

	router := newRouter(log, reg, request.NewMetrics(reg), handler.New(svc, log), probes)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("starting report server",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"tenant_id", tenantID,
		"service_url", api.BaseURL(),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
