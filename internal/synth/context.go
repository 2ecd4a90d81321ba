package synth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/reflectd/internal/reflection"
	"github.com/roach88/reflectd/internal/session"
	"github.com/roach88/reflectd/internal/store"
)

// contextInstruction is the fixed system instruction for continuity
// synthesis. The reflections arrive in chronological order, so the model
// is asked for a forward-reading narrative rather than a bullet digest.
const contextInstruction = "You are given a chronological sequence of archived " +
	"reflections from one continuity session. Produce a short narrative summary " +
	"that reads forward in time: what the session was about, how it developed, " +
	"and where it stands now. Do not invent events that are not in the text."

// contentDelimiter separates reflection contents in the joined text.
const contentDelimiter = "\n\n---\n\n"

// ContextResult is the outcome of one continuity synthesis.
type ContextResult struct {
	// Summary is the synthesized narrative.
	Summary string `json:"summary"`

	// ReflectionCount is how many reflections fed the narrative.
	ReflectionCount int `json:"reflection_count"`
}

// Orchestrator selects an ordered window of reflections and hands them to
// the summarization collaborator, merging the result with aggregation
// output for the combined context-scan operation.
type Orchestrator struct {
	store      *store.Store
	aggregator *session.Aggregator
	summarizer Summarizer
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator. All dependencies are injected;
// none are ambient globals.
func NewOrchestrator(st *store.Store, agg *session.Aggregator, summarizer Summarizer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{store: st, aggregator: agg, summarizer: summarizer, logger: logger}
}

// Context fetches up to limit reflections for the exact (user, thread,
// session) triple in chronological order and synthesizes a narrative.
//
// Fails with NOT_FOUND when zero reflections match - nothing to
// synthesize is not the same as an empty summary. Fails with
// SYNTHESIS_UNAVAILABLE when the collaborator errors or times out; the
// two are distinguishable via reflection.IsNotFound /
// reflection.IsSynthesisUnavailable.
func (o *Orchestrator) Context(ctx context.Context, userID, threadID, sessionID string, limit int) (ContextResult, error) {
	if strings.TrimSpace(userID) == "" {
		return ContextResult{}, reflection.NewValidationError("user_id", "must not be empty")
	}
	if threadID == "" {
		threadID = reflection.DefaultThreadID
	}
	if sessionID == "" {
		sessionID = reflection.DefaultSessionID
	}

	// Chronological order so the narrative reads as a story.
	window, err := o.store.Query(ctx, reflection.Filter{
		UserID:    userID,
		ThreadID:  threadID,
		SessionID: sessionID,
	}, reflection.OrderAsc, limit)
	if err != nil {
		return ContextResult{}, fmt.Errorf("fetch context window: %w", err)
	}
	if len(window) == 0 {
		return ContextResult{}, reflection.NewNotFoundError(
			fmt.Sprintf("no reflections for user=%s thread=%s session=%s", userID, threadID, sessionID))
	}

	if o.summarizer == nil {
		return ContextResult{}, reflection.NewSynthesisUnavailableError(fmt.Errorf("summarizer not configured"))
	}

	contents := make([]string, len(window))
	for i, r := range window {
		contents[i] = r.Content
	}

	summary, err := o.summarizer.Summarize(ctx, contextInstruction, strings.Join(contents, contentDelimiter))
	if err != nil {
		o.logger.Warn("continuity synthesis unavailable",
			slog.String("user_id", userID),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return ContextResult{}, reflection.NewSynthesisUnavailableError(err)
	}

	return ContextResult{
		Summary:         strings.TrimSpace(summary),
		ReflectionCount: len(window),
	}, nil
}

// ContextScanRequest parameterizes the combined context-scan operation.
type ContextScanRequest struct {
	UserID    string
	ThreadID  string
	SessionID string
	Limit     int

	// IncludeSummary also requests the aggregator's global narrative.
	IncludeSummary bool
}

// ContextScanResult carries both halves of the combined operation. Each
// half succeeds or fails independently; a nil pointer with a non-empty
// error string marks the failed half. One failing branch never hides the
// other's success.
type ContextScanResult struct {
	ContextResult *ContextResult  `json:"context_result,omitempty"`
	ContextError  string          `json:"context_error,omitempty"`
	ScanResult    *session.Result `json:"scan_result,omitempty"`
	ScanError     string          `json:"scan_error,omitempty"`
}

// ContextScan runs the aggregator's scan and this orchestrator's context
// synthesis independently and returns both results even if one fails.
func (o *Orchestrator) ContextScan(ctx context.Context, req ContextScanRequest) ContextScanResult {
	var result ContextScanResult

	if ctxResult, err := o.Context(ctx, req.UserID, req.ThreadID, req.SessionID, req.Limit); err != nil {
		result.ContextError = err.Error()
	} else {
		result.ContextResult = &ctxResult
	}

	if scanResult, err := o.aggregator.Scan(ctx, req.UserID, req.IncludeSummary); err != nil {
		result.ScanError = err.Error()
	} else {
		result.ScanResult = &scanResult
	}

	return result
}
