package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/reflection"
	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/synth"
)

// respondError maps a domain error onto the envelope and status code.
// Errors that carry no reflection.Error are reported as internal.
func respondError(c echo.Context, err error) error {
	var domainErr *reflection.Error
	if errors.As(err, &domainErr) {
		return c.JSON(statusFor(domainErr.Code),
			errEnvelope(domainErr.Code, domainErr.Message, domainErr.Field))
	}
	return c.JSON(http.StatusInternalServerError,
		errEnvelope("INTERNAL", err.Error(), ""))
}

func (s *Server) handleHealth(c echo.Context) error {
	dbConnected := s.store.Ping(c.Request().Context()) == nil

	resp := healthResponse{
		Ok:          dbConnected,
		DBConnected: dbConnected,
		TS:          s.now().UTC().Format(time.RFC3339Nano),
	}
	status := http.StatusOK
	if !dbConnected {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func (s *Server) handleSave(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			errEnvelope(reflection.CodeValidation, "malformed request body", ""))
	}

	saved, err := s.store.Append(c.Request().Context(), store.AppendRequest{
		UserID:     req.UserID,
		ThreadID:   req.ThreadID,
		SessionID:  req.SessionID,
		SlideID:    req.SlideID,
		Content:    req.Content,
		DriftScore: req.DriftScore,
		Seal:       req.Seal,
	})
	if err != nil {
		return respondError(c, err)
	}
	s.metrics.reflectionsTotal.Inc()

	// The stored value stays raw; classification only annotates the
	// response so callers can see how the score would be governed.
	cls := drift.Classify(req.DriftScore, s.thresholds)

	return c.JSON(http.StatusOK, okEnvelope(saveResponse{
		ID:           saved.ID,
		SlideID:      saved.SlideID,
		CreatedAt:    saved.CreatedAt.UTC().Format(time.RFC3339Nano),
		DriftIn:      cls.DriftIn,
		DriftClamped: cls.DriftClamped,
		DriftStatus:  string(cls.Status),
	}))
}

func (s *Server) handleRecall(c echo.Context) error {
	filter := reflection.Filter{
		UserID:    c.QueryParam("user_id"),
		ThreadID:  c.QueryParam("thread_id"),
		SessionID: c.QueryParam("session_id"),
		SlideID:   c.QueryParam("slide_id"),
		Seal:      c.QueryParam("seal"),
	}

	order := reflection.OrderDesc
	if c.QueryParam("order") == "asc" {
		order = reflection.OrderAsc
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest,
				errEnvelope(reflection.CodeValidation, "limit must be an integer", "limit"))
		}
		limit = n
	}

	reflections, err := s.store.Query(c.Request().Context(), filter, order, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, okEnvelope(map[string]any{
		"count":       len(reflections),
		"reflections": reflections,
	}))
}

func (s *Server) handleScan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			errEnvelope(reflection.CodeValidation, "malformed request body", ""))
	}

	result, err := s.aggregator.Scan(c.Request().Context(), req.UserID, req.IncludeSummary)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, okEnvelope(result))
}

func (s *Server) handleContextScan(c echo.Context) error {
	var req contextScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			errEnvelope(reflection.CodeValidation, "malformed request body", ""))
	}

	// Partial results are still results; the branches report their own
	// failures inside the payload and the response stays 200.
	result := s.orch.ContextScan(c.Request().Context(), synth.ContextScanRequest{
		UserID:         req.UserID,
		ThreadID:       req.ThreadID,
		SessionID:      req.SessionID,
		Limit:          req.Limit,
		IncludeSummary: req.IncludeSummary,
	})
	return c.JSON(http.StatusOK, okEnvelope(result))
}

func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			errEnvelope(reflection.CodeValidation, "malformed request body", ""))
	}

	t := s.thresholds
	if req.Clamp != nil {
		t.Clamp = *req.Clamp
	}
	if req.Warn != nil {
		t.Warn = *req.Warn
	}
	if req.Stop != nil {
		t.Stop = *req.Stop
	}

	return c.JSON(http.StatusOK, okEnvelope(drift.Classify(req.DriftScore, t)))
}

// handleHarnessRun triggers one validation cycle. Cycle metrics come
// from the harness observer wired at construction, so an on-demand run
// and a scheduled one count the same way.
func (s *Server) handleHarnessRun(c echo.Context) error {
	result := s.harness.RunOnce(c.Request().Context())
	return c.JSON(http.StatusOK, okEnvelope(result))
}
