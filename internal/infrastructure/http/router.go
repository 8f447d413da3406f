// Package http mounts the operational endpoints (probes, metrics, API docs)
// that live beside the public API and never sit behind the authorization gate.
package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/gkats/catalog-api/internal/infrastructure/http/handlers"
)

// RegisterOpsRoutes adds /health, /health/ready, /metrics and /swagger/* to e.
// gatherer defaults to the Prometheus default registry when nil.
func RegisterOpsRoutes(e *echo.Echo, gatherer prometheus.Gatherer, checks ...handlers.Check) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(checks...)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
