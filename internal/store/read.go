package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/reflectd/internal/reflection"
)

// Query returns reflections matching the filter, ordered by created_at
// with an id tiebreaker for determinism under equal timestamps. The limit
// is clamped to [MinQueryLimit, MaxQueryLimit]; out-of-range values are
// never rejected.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, f reflection.Filter, order reflection.Order, limit int) ([]reflection.Reflection, error) {
	where, params := compileFilter(f)
	limit = clampLimit(limit)

	// Deterministic ordering: created_at plus id tiebreaker, both in the
	// requested direction.
	query := fmt.Sprintf(`
		SELECT id, user_id, thread_id, session_id, slide_id, content, drift_score, seal, created_at
		FROM reflections%s
		ORDER BY created_at %s, id %s
		LIMIT ?
	`, where, order, order)
	params = append(params, limit)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, reflection.NewStoreUnavailableError("query reflections", err)
	}
	defer rows.Close()

	var reflections []reflection.Reflection
	for rows.Next() {
		r, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		reflections = append(reflections, r)
	}

	if err := rows.Err(); err != nil {
		return nil, reflection.NewStoreUnavailableError("iterate reflections", err)
	}

	// Return empty slice instead of nil
	if reflections == nil {
		reflections = []reflection.Reflection{}
	}

	return reflections, nil
}

// Get returns the reflection with the given id. Fails with NOT_FOUND
// when no such row exists.
func (s *Store) Get(ctx context.Context, id int64) (reflection.Reflection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, thread_id, session_id, slide_id, content, drift_score, seal, created_at
		FROM reflections
		WHERE id = ?
	`, id)

	r, err := scanReflection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reflection.Reflection{}, reflection.NewNotFoundError(
				fmt.Sprintf("no reflection with id %d", id))
		}
		return reflection.Reflection{}, err
	}
	return r, nil
}

// GroupStat is one (session_id, thread_id) grouping row for a user,
// computed entirely in SQL. AvgDrift is the unrounded arithmetic mean of
// the raw drift scores; presentation rounding belongs to the aggregator.
type GroupStat struct {
	SessionID string
	ThreadID  string
	Total     int
	AvgDrift  float64
	FirstAt   time.Time
	LastAt    time.Time
}

// GroupStats returns per-(session, thread) statistics for a user, most
// recently active group first. Returns an empty slice when the user has
// no reflections.
func (s *Store) GroupStats(ctx context.Context, userID string) ([]GroupStat, error) {
	userID = lowerCaser.String(userID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, thread_id, COUNT(*), AVG(drift_score),
		       MIN(created_at), MAX(created_at)
		FROM reflections
		WHERE user_id = ?
		GROUP BY session_id, thread_id
		ORDER BY MAX(created_at) DESC, session_id ASC, thread_id ASC
	`, userID)
	if err != nil {
		return nil, reflection.NewStoreUnavailableError("group stats", err)
	}
	defer rows.Close()

	var stats []GroupStat
	for rows.Next() {
		var g GroupStat
		var firstAt, lastAt string
		if err := rows.Scan(&g.SessionID, &g.ThreadID, &g.Total, &g.AvgDrift, &firstAt, &lastAt); err != nil {
			return nil, reflection.NewStoreUnavailableError("scan group stat", err)
		}
		if g.FirstAt, err = parseTimestamp(firstAt); err != nil {
			return nil, err
		}
		if g.LastAt, err = parseTimestamp(lastAt); err != nil {
			return nil, err
		}
		stats = append(stats, g)
	}

	if err := rows.Err(); err != nil {
		return nil, reflection.NewStoreUnavailableError("iterate group stats", err)
	}

	if stats == nil {
		stats = []GroupStat{}
	}

	return stats, nil
}

// rowScanner abstracts sql.Rows and sql.Row for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReflection(row rowScanner) (reflection.Reflection, error) {
	var r reflection.Reflection
	var createdAt string

	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.ThreadID,
		&r.SessionID,
		&r.SlideID,
		&r.Content,
		&r.DriftScore,
		&r.Seal,
		&createdAt,
	)
	if err != nil {
		return reflection.Reflection{}, reflection.NewStoreUnavailableError("scan reflection", err)
	}

	if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return reflection.Reflection{}, err
	}

	return r, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, reflection.NewStoreUnavailableError(fmt.Sprintf("parse timestamp %q", s), err)
	}
	return t, nil
}
