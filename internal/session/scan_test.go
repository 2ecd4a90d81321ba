package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/testutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	clock := testutil.NewDefaultTickClock()
	tokens := testutil.NewSlideTokenSequence()
	st, err := store.Open(":memory:",
		store.WithClock(clock.Now),
		store.WithSlideTokenGenerator(tokens.Next),
	)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(t *testing.T, st *store.Store, reqs ...store.AppendRequest) {
	t.Helper()
	for _, req := range reqs {
		_, err := st.Append(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestScan_SingleSessionStatistics(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	// Scenario: three reflections, drift 0.01, -0.02, 0.03.
	seed(t, st,
		store.AppendRequest{UserID: "phil", SessionID: "continuity", Content: "a", DriftScore: 0.01},
		store.AppendRequest{UserID: "phil", SessionID: "continuity", Content: "b", DriftScore: -0.02},
		store.AppendRequest{UserID: "phil", SessionID: "continuity", Content: "c", DriftScore: 0.03},
	)

	result, err := agg.Scan(context.Background(), "phil", false)
	require.NoError(t, err)

	require.Equal(t, 1, result.SessionCount)
	s := result.Sessions[0]
	assert.Equal(t, "continuity", s.SessionID)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 0.0067, s.AvgDrift, "mean rounded to 4 decimals")
	assert.True(t, s.FirstTS.Before(s.LastTS))
	assert.True(t, result.Lawful(0.05))
}

func TestScan_GroupsOrderedByLatestActivity(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	seed(t, st,
		store.AppendRequest{UserID: "phil", SessionID: "old", Content: "a"},
		store.AppendRequest{UserID: "phil", SessionID: "new", Content: "b"},
		store.AppendRequest{UserID: "phil", SessionID: "newest", Content: "c"},
	)

	result, err := agg.Scan(context.Background(), "phil", false)
	require.NoError(t, err)

	require.Equal(t, 3, result.SessionCount)
	assert.Equal(t, "newest", result.Sessions[0].SessionID)
	assert.Equal(t, "new", result.Sessions[1].SessionID)
	assert.Equal(t, "old", result.Sessions[2].SessionID)
}

func TestScan_EmptyUserIsVacuouslyLawful(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	result, err := agg.Scan(context.Background(), "nobody", false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.SessionCount)
	assert.Empty(t, result.Sessions)
	assert.True(t, result.Lawful(0.05), "empty session set is vacuously lawful")
	assert.Equal(t, 0.0, result.AvgDrift())
}

func TestScan_UnlawfulSession(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	seed(t, st,
		store.AppendRequest{UserID: "phil", SessionID: "calm", Content: "a", DriftScore: 0.01},
		store.AppendRequest{UserID: "phil", SessionID: "drifting", Content: "b", DriftScore: 0.30},
	)

	result, err := agg.Scan(context.Background(), "phil", false)
	require.NoError(t, err)

	assert.False(t, result.Lawful(0.05), "one session over bound makes the scan unlawful")
}

func TestScan_RepeatedScansIdentical(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	seed(t, st,
		store.AppendRequest{UserID: "phil", SessionID: "s1", Content: "a", DriftScore: 0.02},
		store.AppendRequest{UserID: "phil", SessionID: "s2", Content: "b", DriftScore: -0.01},
	)

	first, err := agg.Scan(context.Background(), "phil", false)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := agg.Scan(context.Background(), "phil", false)
		require.NoError(t, err)
		assert.Equal(t, first, again, "reads are idempotent with no intervening writes")
	}
}

func TestScan_IncludeSummary(t *testing.T) {
	st := newTestStore(t)
	fake := testutil.NewFakeSummarizer("all sessions steady")
	agg := NewAggregator(st, fake, discardLogger())

	seed(t, st,
		store.AppendRequest{UserID: "phil", SessionID: "continuity", Content: "a", DriftScore: 0.01},
	)

	result, err := agg.Scan(context.Background(), "phil", true)
	require.NoError(t, err)

	assert.Equal(t, "all sessions steady", result.Summary)
	assert.Empty(t, result.SummaryError)
	require.Equal(t, 1, fake.CallCount())
	call := fake.Calls()[0]
	assert.Contains(t, call.Text, "session=continuity")
	assert.Contains(t, call.Text, "avg_drift=0.0100")
}

func TestScan_SummarizerFailureDoesNotFailScan(t *testing.T) {
	st := newTestStore(t)
	fake := testutil.NewFakeSummarizer("")
	fake.Err = errors.New("upstream timeout")
	agg := NewAggregator(st, fake, discardLogger())

	seed(t, st,
		store.AppendRequest{UserID: "phil", Content: "a", DriftScore: 0.02},
	)

	result, err := agg.Scan(context.Background(), "phil", true)
	require.NoError(t, err, "aggregation numbers are always returned")

	assert.Equal(t, 1, result.SessionCount)
	assert.Empty(t, result.Summary)
	assert.Contains(t, result.SummaryError, "upstream timeout")
}

func TestScan_NoSummarizerConfigured(t *testing.T) {
	st := newTestStore(t)
	agg := NewAggregator(st, nil, discardLogger())

	seed(t, st, store.AppendRequest{UserID: "phil", Content: "a"})

	result, err := agg.Scan(context.Background(), "phil", true)
	require.NoError(t, err)
	assert.Empty(t, result.Summary)
	assert.Equal(t, "summarizer not configured", result.SummaryError)
}

func TestResult_AvgDrift(t *testing.T) {
	r := Result{Sessions: []Stat{
		{AvgDrift: 0.01},
		{AvgDrift: 0.03},
	}}
	assert.Equal(t, 0.02, r.AvgDrift())
}
