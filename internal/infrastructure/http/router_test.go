package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gkats/catalog-api/internal/infrastructure/http/handlers"
)

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, path, nil))
	return rec
}

func TestRegisterOpsRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "ops_router_probe_total", Help: "test"})
	reg.MustRegister(probe)
	probe.Inc()

	e := echo.New()
	RegisterOpsRoutes(e, reg, handlers.Check{
		Name:  "redis",
		Probe: func(context.Context) error { return errors.New("down") },
	})

	if rec := serve(e, "/health"); rec.Code != nethttp.StatusOK {
		t.Fatalf("/health: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, "/health/ready"); rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("/health/ready: expected 503, got %d", rec.Code)
	}

	rec := serve(e, "/metrics")
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("/metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ops_router_probe_total 1") {
		t.Fatalf("/metrics does not expose the given registry:\n%s", rec.Body.String())
	}
}
