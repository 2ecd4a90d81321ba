package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/reflectd/internal/harness"
)

// Metrics holds the Prometheus instruments for the service.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	reflectionsTotal   prometheus.Counter
	harnessCyclesTotal *prometheus.CounterVec
}

// NewMetrics creates the instruments on a private registry so tests can
// run multiple servers without collisions.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reflectd_http_requests_total",
			Help: "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reflectd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by path.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
		}, []string{"path"}),
		reflectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reflectd_reflections_appended_total",
			Help: "Reflections persisted through the save endpoint.",
		}),
		harnessCyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reflectd_harness_cycles_total",
			Help: "Continuity validation cycles by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the private registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records a harness cycle outcome. Wire it in with
// harness.WithCycleObserver.
func (m *Metrics) ObserveCycle(result harness.CycleResult) {
	outcome := "ok"
	if !result.Ok {
		outcome = "failed_" + string(result.FailedAt)
	}
	m.harnessCyclesTotal.WithLabelValues(outcome).Inc()
}

// middleware instruments every request.
func (m *Metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		m.requestsTotal.WithLabelValues(
			c.Request().Method,
			path,
			strconv.Itoa(c.Response().Status),
		).Inc()
		m.requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

		return err
	}
}
