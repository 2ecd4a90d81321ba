package synth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reflectd/internal/reflection"
	"github.com/roach88/reflectd/internal/session"
	"github.com/roach88/reflectd/internal/store"
	"github.com/roach88/reflectd/internal/testutil"
)

type fixture struct {
	store        *store.Store
	summarizer   *testutil.FakeSummarizer
	orchestrator *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := testutil.NewDefaultTickClock()
	tokens := testutil.NewSlideTokenSequence()
	st, err := store.Open(":memory:",
		store.WithClock(clock.Now),
		store.WithSlideTokenGenerator(tokens.Next),
	)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := testutil.NewFakeSummarizer("a story of steady continuity")
	agg := session.NewAggregator(st, fake, logger)

	return &fixture{
		store:        st,
		summarizer:   fake,
		orchestrator: NewOrchestrator(st, agg, fake, logger),
	}
}

func (f *fixture) seed(t *testing.T, reqs ...store.AppendRequest) {
	t.Helper()
	for _, req := range reqs {
		_, err := f.store.Append(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestContext_SynthesizesChronologicalNarrative(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "first entry"},
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "second entry"},
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "third entry"},
	)

	result, err := f.orchestrator.Context(context.Background(), "phil", "diary", "continuity", 10)
	require.NoError(t, err)

	assert.Equal(t, "a story of steady continuity", result.Summary)
	assert.Equal(t, 3, result.ReflectionCount)

	require.Equal(t, 1, f.summarizer.CallCount())
	call := f.summarizer.Calls()[0]
	assert.Equal(t, contextInstruction, call.Instruction)
	// Chronological: first entry before third entry in the joined text.
	assert.Equal(t, "first entry"+contentDelimiter+"second entry"+contentDelimiter+"third entry", call.Text)
}

func TestContext_ExactTripleOnly(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "wanted"},
		store.AppendRequest{UserID: "phil", ThreadID: "other", SessionID: "continuity", Content: "wrong thread"},
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "other", Content: "wrong session"},
		store.AppendRequest{UserID: "dave", ThreadID: "diary", SessionID: "continuity", Content: "wrong user"},
	)

	result, err := f.orchestrator.Context(context.Background(), "phil", "diary", "continuity", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReflectionCount)
	assert.Equal(t, "wanted", f.summarizer.Calls()[0].Text)
}

func TestContext_RespectsLimit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		f.seed(t, store.AppendRequest{UserID: "phil", Content: "entry"})
	}

	result, err := f.orchestrator.Context(context.Background(), "phil", "", "", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ReflectionCount)
}

func TestContext_NotFoundWhenEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.Context(context.Background(), "phil", "diary", "empty", 10)
	require.Error(t, err)
	assert.True(t, reflection.IsNotFound(err), "empty window is NOT_FOUND, not an empty summary")
	assert.False(t, reflection.IsSynthesisUnavailable(err))
	assert.Equal(t, 0, f.summarizer.CallCount(), "summarizer never called for an empty window")
}

func TestContext_SynthesisUnavailableDistinctFromNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.AppendRequest{UserID: "phil", Content: "entry"})
	f.summarizer.Err = errors.New("gateway exploded")

	_, err := f.orchestrator.Context(context.Background(), "phil", "", "", 10)
	require.Error(t, err)
	assert.True(t, reflection.IsSynthesisUnavailable(err))
	assert.False(t, reflection.IsNotFound(err))
}

func TestContext_ValidatesUserID(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.Context(context.Background(), "  ", "diary", "continuity", 10)
	require.Error(t, err)
	assert.True(t, reflection.IsValidation(err))
}

func TestContextScan_BothBranchesSucceed(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "entry", DriftScore: 0.01},
	)

	result := f.orchestrator.ContextScan(context.Background(), ContextScanRequest{
		UserID:         "phil",
		ThreadID:       "diary",
		SessionID:      "continuity",
		Limit:          10,
		IncludeSummary: true,
	})

	require.NotNil(t, result.ContextResult)
	require.NotNil(t, result.ScanResult)
	assert.Empty(t, result.ContextError)
	assert.Empty(t, result.ScanError)
	assert.Equal(t, 1, result.ContextResult.ReflectionCount)
	assert.Equal(t, 1, result.ScanResult.SessionCount)
}

func TestContextScan_SynthesisFailureDoesNotSuppressScan(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		store.AppendRequest{UserID: "phil", ThreadID: "diary", SessionID: "continuity", Content: "entry", DriftScore: 0.02},
	)
	f.summarizer.Err = errors.New("summarizer down")

	result := f.orchestrator.ContextScan(context.Background(), ContextScanRequest{
		UserID:    "phil",
		ThreadID:  "diary",
		SessionID: "continuity",
		Limit:     10,
	})

	assert.Nil(t, result.ContextResult)
	assert.Contains(t, result.ContextError, "summarizer down")
	require.NotNil(t, result.ScanResult, "aggregation numbers survive a synthesis failure")
	assert.Equal(t, 1, result.ScanResult.SessionCount)
}

func TestContextScan_NotFoundContextStillReturnsScan(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		store.AppendRequest{UserID: "phil", ThreadID: "elsewhere", SessionID: "other", Content: "entry"},
	)

	result := f.orchestrator.ContextScan(context.Background(), ContextScanRequest{
		UserID:    "phil",
		ThreadID:  "diary",
		SessionID: "continuity",
		Limit:     10,
	})

	assert.Nil(t, result.ContextResult)
	assert.Contains(t, result.ContextError, "NOT_FOUND")
	require.NotNil(t, result.ScanResult)
	assert.Equal(t, 1, result.ScanResult.SessionCount)
}
