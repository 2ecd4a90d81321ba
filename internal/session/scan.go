// Package session implements the read-only session aggregation engine.
//
// Aggregation groups a user's reflections by (session_id, thread_id) and
// computes per-group statistics. It never writes; repeated scans with no
// intervening appends return identical results.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/store"
)

// scanInstruction is the fixed instruction handed to the summarizer for
// the global per-session digest.
const scanInstruction = "Summarize the following per-session reflection statistics " +
	"as a short continuity overview. Note any session whose average drift " +
	"looks unusual relative to the others."

// Summarizer produces free-form prose from ordered text. Implemented by
// the synthesis collaborator; may fail or time out, and a failure here
// never fails a scan.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
}

// Stat describes one (session_id, thread_id) group.
type Stat struct {
	SessionID string    `json:"session_id"`
	ThreadID  string    `json:"thread_id"`
	Total     int       `json:"total"`
	AvgDrift  float64   `json:"avg_drift"`
	FirstTS   time.Time `json:"first_ts"`
	LastTS    time.Time `json:"last_ts"`
}

// Result is the outcome of one scan.
type Result struct {
	SessionCount int    `json:"session_count"`
	Sessions     []Stat `json:"sessions"`

	// Summary is the optional narrative digest. Empty when not requested
	// or when the summarizer failed; SummaryError carries the failure
	// marker in the latter case so partial success stays visible.
	Summary      string `json:"summary,omitempty"`
	SummaryError string `json:"summary_error,omitempty"`
}

// Lawful reports whether every session's average raw drift magnitude is
// within the clamp bound. An empty session set is vacuously lawful.
func (r Result) Lawful(clampBound float64) bool {
	for _, s := range r.Sessions {
		if !drift.Lawful(s.AvgDrift, clampBound) {
			return false
		}
	}
	return true
}

// AvgDrift is the mean of the per-session averages, rounded to 4 decimal
// places. Zero when there are no sessions.
func (r Result) AvgDrift() float64 {
	if len(r.Sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.Sessions {
		sum += s.AvgDrift
	}
	return drift.Round4(sum / float64(len(r.Sessions)))
}

// Aggregator computes per-session statistics from the reflection store.
type Aggregator struct {
	store      *store.Store
	summarizer Summarizer
	logger     *slog.Logger
}

// NewAggregator creates an aggregator. summarizer may be nil, in which
// case summary requests are marked unavailable rather than failing.
func NewAggregator(st *store.Store, summarizer Summarizer, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: st, summarizer: summarizer, logger: logger}
}

// Scan groups all reflections for userID by (session_id, thread_id) and
// computes per-group statistics, most recently active group first.
// Average drift is rounded to 4 decimal places.
//
// When includeSummary is set, a compact digest of the statistics is
// forwarded to the summarizer. A summarizer failure never fails the scan:
// the numbers are always returned and SummaryError carries the marker.
func (a *Aggregator) Scan(ctx context.Context, userID string, includeSummary bool) (Result, error) {
	groups, err := a.store.GroupStats(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("scan sessions: %w", err)
	}

	sessions := make([]Stat, 0, len(groups))
	for _, g := range groups {
		sessions = append(sessions, Stat{
			SessionID: g.SessionID,
			ThreadID:  g.ThreadID,
			Total:     g.Total,
			AvgDrift:  drift.Round4(g.AvgDrift),
			FirstTS:   g.FirstAt,
			LastTS:    g.LastAt,
		})
	}

	result := Result{
		SessionCount: len(sessions),
		Sessions:     sessions,
	}

	if includeSummary {
		result.Summary, result.SummaryError = a.summarize(ctx, userID, sessions)
	}

	return result, nil
}

// summarize builds the digest and calls the collaborator. Returns either
// the narrative or an error marker, never both.
func (a *Aggregator) summarize(ctx context.Context, userID string, sessions []Stat) (string, string) {
	if a.summarizer == nil {
		return "", "summarizer not configured"
	}

	summary, err := a.summarizer.Summarize(ctx, scanInstruction, Digest(userID, sessions))
	if err != nil {
		a.logger.Warn("scan summary unavailable",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return "", fmt.Sprintf("summary unavailable: %v", err)
	}
	return strings.TrimSpace(summary), ""
}
