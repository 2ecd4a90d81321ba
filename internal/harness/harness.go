package harness

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/reflection"
	"github.com/roach88/reflectd/internal/session"
	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/synth"
)

// State identifies a step of the validation cycle.
type State string

const (
	StateIdle              State = "IDLE"
	StateHealthCheck       State = "HEALTH_CHECK"
	StateScan              State = "SCAN"
	StateContextValidation State = "CONTEXT_VALIDATION"
	StateArchive           State = "ARCHIVE"
	StateSleep             State = "SLEEP"
)

// Config parameterizes the validation loop. Zero-value fields take the
// stock defaults below.
type Config struct {
	// UserID is the identity whose sessions are validated.
	UserID string

	// ThreadID and SessionID select the continuity window for
	// CONTEXT_VALIDATION.
	ThreadID  string
	SessionID string

	// Limit caps the synthesis window size.
	Limit int

	// ClampBound defines lawfulness: every session's average drift
	// magnitude must stay within it.
	ClampBound float64

	// Interval is the SLEEP duration between cycles.
	Interval time.Duration

	// Repeat keeps the loop running until cancelled. When false, Run
	// performs a single cycle and returns.
	Repeat bool
}

// DefaultConfig returns the stock continuity plan.
func DefaultConfig() Config {
	return Config{
		UserID:     "phil",
		ThreadID:   "continuity_diary",
		SessionID:  "continuity",
		Limit:      20,
		ClampBound: drift.DefaultClampBound,
		Interval:   12 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserID == "" {
		c.UserID = d.UserID
	}
	if c.ThreadID == "" {
		c.ThreadID = d.ThreadID
	}
	if c.SessionID == "" {
		c.SessionID = d.SessionID
	}
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	if c.ClampBound == 0 {
		c.ClampBound = d.ClampBound
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	return c
}

// CycleResult describes one completed (or aborted) validation cycle.
type CycleResult struct {
	// Ok reports whether the cycle reached ARCHIVE and persisted its
	// reflection.
	Ok bool `json:"ok"`

	// FailedAt names the state that aborted the cycle. Empty on success.
	FailedAt State `json:"failed_at,omitempty"`

	// Reason carries the abort cause. Empty on success.
	Reason string `json:"reason,omitempty"`

	// ArchivedID is the id of the archived reflection when Ok.
	ArchivedID int64 `json:"archived_id,omitempty"`

	// Measured statistics from the SCAN step.
	SessionCount int     `json:"session_count"`
	AvgDrift     float64 `json:"avg_drift"`
	Lawful       bool    `json:"lawful"`
}

// Harness drives the validation loop against injected collaborators. It
// never runs two cycles concurrently: Run executes cycles strictly in
// sequence with a SLEEP between them.
type Harness struct {
	store        *store.Store
	aggregator   *session.Aggregator
	orchestrator *synth.Orchestrator
	cfg          Config
	logger       *slog.Logger

	// now stamps archive headers. Overridable for deterministic tests.
	now func() time.Time

	// onCycle observes every finished cycle, successful or not. Used for
	// metrics. May be nil.
	onCycle func(CycleResult)
}

// Option customizes a Harness.
type Option func(*Harness)

// WithClock replaces the wall clock used in archive headers.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.now = now }
}

// WithCycleObserver registers a callback invoked after every cycle.
func WithCycleObserver(fn func(CycleResult)) Option {
	return func(h *Harness) { h.onCycle = fn }
}

// New creates a harness. All collaborators are injected with explicit
// lifecycle; the harness owns none of them.
func New(st *store.Store, agg *session.Aggregator, orch *synth.Orchestrator, cfg Config, logger *slog.Logger, opts ...Option) *Harness {
	h := &Harness{
		store:        st,
		aggregator:   agg,
		orchestrator: orch,
		cfg:          cfg.withDefaults(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes the validation loop. With Repeat unset it performs one
// cycle and returns. With Repeat set it cycles until ctx is cancelled;
// cancellation is only observed at the SLEEP boundary, never mid-cycle.
func (h *Harness) Run(ctx context.Context) {
	for {
		h.RunOnce(ctx)

		if !h.cfg.Repeat {
			return
		}

		h.logger.Info("harness sleeping",
			slog.String("state", string(StateSleep)),
			slog.Duration("interval", h.cfg.Interval))

		select {
		case <-ctx.Done():
			h.logger.Info("harness stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-time.After(h.cfg.Interval):
		}
	}
}

// RunOnce executes a single validation cycle: health check, session scan,
// context validation, archive. No step is retried; the first failure
// aborts the cycle and nothing is archived.
func (h *Harness) RunOnce(ctx context.Context) CycleResult {
	result := h.runCycle(ctx)
	if h.onCycle != nil {
		h.onCycle(result)
	}
	return result
}

func (h *Harness) runCycle(ctx context.Context) CycleResult {
	h.logger.Info("continuity validation starting",
		slog.String("user_id", h.cfg.UserID),
		slog.String("session_id", h.cfg.SessionID))

	// HEALTH_CHECK: the cycle aborts immediately when the store is
	// unreachable. Logged as a warning, no retry within the cycle.
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("service unhealthy, cycle aborted",
			slog.String("state", string(StateHealthCheck)),
			slog.String("error", err.Error()))
		return CycleResult{FailedAt: StateHealthCheck, Reason: err.Error()}
	}

	// SCAN: aggregate the configured user's sessions and evaluate
	// lawfulness across all of them.
	scan, err := h.aggregator.Scan(ctx, h.cfg.UserID, false)
	if err != nil {
		h.logger.Warn("session scan failed, cycle aborted",
			slog.String("state", string(StateScan)),
			slog.String("error", err.Error()))
		return CycleResult{FailedAt: StateScan, Reason: err.Error()}
	}

	avgDrift := scan.AvgDrift()
	lawful := scan.Lawful(h.cfg.ClampBound)
	h.logger.Info("session scan complete",
		slog.Int("sessions", scan.SessionCount),
		slog.Float64("avg_drift", avgDrift),
		slog.Bool("lawful", lawful))

	// CONTEXT_VALIDATION: combined context-scan for the configured
	// continuity window, including the global narrative.
	combined := h.orchestrator.ContextScan(ctx, synth.ContextScanRequest{
		UserID:         h.cfg.UserID,
		ThreadID:       h.cfg.ThreadID,
		SessionID:      h.cfg.SessionID,
		Limit:          h.cfg.Limit,
		IncludeSummary: true,
	})
	if combined.ContextResult == nil {
		h.logger.Warn("context validation failed, cycle aborted",
			slog.String("state", string(StateContextValidation)),
			slog.String("error", combined.ContextError))
		return CycleResult{
			FailedAt:     StateContextValidation,
			Reason:       combined.ContextError,
			SessionCount: scan.SessionCount,
			AvgDrift:     avgDrift,
			Lawful:       lawful,
		}
	}

	globalSummary := ""
	if combined.ScanResult != nil {
		globalSummary = combined.ScanResult.Summary
	}

	h.logger.Info("context validation complete",
		slog.Int("reflections", combined.ContextResult.ReflectionCount),
		slog.Int("sessions", scan.SessionCount))

	// ARCHIVE: the cycle's outcome becomes a new reflection, input data
	// for the next cycle's aggregation.
	content := ComposeArchive(h.now(), ArchiveData{
		SessionCount:   scan.SessionCount,
		AvgDrift:       avgDrift,
		Lawful:         lawful,
		ContextSummary: combined.ContextResult.Summary,
		GlobalSummary:  globalSummary,
	})

	archived, err := h.store.Append(ctx, store.AppendRequest{
		UserID:     h.cfg.UserID,
		ThreadID:   h.cfg.ThreadID,
		SessionID:  h.cfg.SessionID,
		Content:    content,
		DriftScore: avgDrift,
		Seal:       reflection.DefaultSeal,
	})
	if err != nil {
		h.logger.Warn("failed to archive reflection",
			slog.String("state", string(StateArchive)),
			slog.String("error", err.Error()))
		return CycleResult{
			FailedAt:     StateArchive,
			Reason:       err.Error(),
			SessionCount: scan.SessionCount,
			AvgDrift:     avgDrift,
			Lawful:       lawful,
		}
	}

	h.logger.Info("reflection archived",
		slog.Int64("id", archived.ID),
		slog.Bool("lawful", lawful))

	return CycleResult{
		Ok:           true,
		ArchivedID:   archived.ID,
		SessionCount: scan.SessionCount,
		AvgDrift:     avgDrift,
		Lawful:       lawful,
	}
}
