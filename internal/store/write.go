package store

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/reflectd/internal/reflection"
)

// lowerCaser folds user_id to lowercase before persistence so grouping is
// case-insensitive across callers. Und = no language-specific casing rules.
var lowerCaser = cases.Lower(language.Und)

// AppendRequest carries one reflection to persist. Required fields are
// UserID and Content; everything else has a documented default applied by
// Append.
type AppendRequest struct {
	// UserID owns the reflection. Required. Lowercased before persistence.
	UserID string

	// ThreadID groups reflections. Optional; defaults to "general".
	ThreadID string

	// SessionID is the continuity grouping key. Optional; defaults to
	// "continuity".
	SessionID string

	// SlideID is an optional correlation token. A fresh token is
	// generated when empty.
	SlideID string

	// Content is the reflection text. Required. NFC-normalized and
	// persisted in full up to MaxContentBytes.
	Content string

	// DriftScore is persisted raw, exactly as supplied. Defaults to 0.0.
	DriftScore float64

	// Seal is an opaque status label. Optional; defaults to "lawful".
	// Membership in any particular set is not validated.
	Seal string
}

// timestampFormat is the persisted created_at layout. The fractional
// seconds are fixed-width so lexicographic order on the TEXT column is
// chronological order; RFC3339Nano drops trailing zeros, which would
// sort "01.5Z" after "01.52Z".
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Append inserts one reflection and returns the persisted record, with
// defaults and the generated slide token applied. The insert is a single
// row, so concurrent appends never interleave partially written records.
//
// Fails with a VALIDATION error when user_id or content is empty after
// trimming, or when content exceeds MaxContentBytes. Fails with
// STORE_UNAVAILABLE when the database cannot be written; that failure is
// surfaced as-is, never retried here.
func (s *Store) Append(ctx context.Context, req AppendRequest) (reflection.Reflection, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return reflection.Reflection{}, reflection.NewValidationError("user_id", "must not be empty")
	}
	userID = lowerCaser.String(userID)

	content := norm.NFC.String(strings.TrimSpace(req.Content))
	if content == "" {
		return reflection.Reflection{}, reflection.NewValidationError("content", "must not be empty")
	}
	if len(content) > MaxContentBytes {
		return reflection.Reflection{}, reflection.NewValidationError("content", "exceeds maximum length")
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = reflection.DefaultThreadID
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = reflection.DefaultSessionID
	}
	slideID := req.SlideID
	if slideID == "" {
		slideID = s.newSlideToken()
	}
	seal := req.Seal
	if seal == "" {
		seal = reflection.DefaultSeal
	}

	createdAt := s.now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections
		(user_id, thread_id, session_id, slide_id, content, drift_score, seal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		userID,
		threadID,
		sessionID,
		slideID,
		content,
		req.DriftScore,
		seal,
		createdAt.Format(timestampFormat),
	)
	if err != nil {
		return reflection.Reflection{}, reflection.NewStoreUnavailableError("append reflection", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return reflection.Reflection{}, reflection.NewStoreUnavailableError("append reflection: last insert id", err)
	}

	return reflection.Reflection{
		ID:         id,
		UserID:     userID,
		ThreadID:   threadID,
		SessionID:  sessionID,
		SlideID:    slideID,
		Content:    content,
		DriftScore: req.DriftScore,
		Seal:       seal,
		CreatedAt:  createdAt,
	}, nil
}
