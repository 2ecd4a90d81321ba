package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/harness"
	"github.com/roach88/reflectd/internal/session"
	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/synth"
)

// Server is the HTTP surface over the reflection engine. All state is
// injected; the server owns only the echo instance.
type Server struct {
	echo       *echo.Echo
	store      *store.Store
	aggregator *session.Aggregator
	orch       *synth.Orchestrator
	harness    *harness.Harness
	thresholds drift.Thresholds
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithHarness enables the POST /harness/run endpoint.
func WithHarness(h *harness.Harness) Option {
	return func(s *Server) { s.harness = h }
}

// WithThresholds overrides the drift thresholds used by the save and
// classify endpoints. Zero fields fall back to the defaults.
func WithThresholds(t drift.Thresholds) Option {
	return func(s *Server) { s.thresholds = t }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMetrics supplies externally built instruments. The caller uses
// this to share one Metrics between the server and the harness observer;
// without it the server builds its own.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer wires the routes and middleware. The returned server is
// ready for Start; tests can drive s.echo through httptest instead.
func NewServer(st *store.Store, agg *session.Aggregator, orch *synth.Orchestrator, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:      st,
		aggregator: agg,
		orch:       orch,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogMiddleware)
	e.Use(s.metrics.middleware)

	e.GET("/health", s.handleHealth)
	e.POST("/memory/save", s.handleSave)
	e.GET("/memory/recall", s.handleRecall)
	e.POST("/memory/scan", s.handleScan)
	e.POST("/memory/context-scan", s.handleContextScan)
	e.POST("/drift/classify", s.handleClassify)
	if s.harness != nil {
		e.POST("/harness/run", s.handleHarnessRun)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		s.metrics.Registry(), promhttp.HandlerOpts{})))

	s.echo = e
	return s
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server starting", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.logger.Info("http request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		return err
	}
}
