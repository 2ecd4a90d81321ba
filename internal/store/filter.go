package store

import (
	"sort"
	"strings"

	"github.com/roach88/reflectd/internal/reflection"
)

// compileFilter converts a reflection.Filter into a WHERE clause with
// parameterized values. Empty fields are unconstrained.
//
// Columns are emitted in sorted order so the generated SQL is
// deterministic (testing). All values are parameterized, never
// interpolated.
func compileFilter(f reflection.Filter) (string, []any) {
	conds := map[string]string{}
	if f.UserID != "" {
		// Same fold the write path applies, so filters match what was
		// persisted.
		conds["user_id"] = lowerCaser.String(strings.TrimSpace(f.UserID))
	}
	if f.ThreadID != "" {
		conds["thread_id"] = f.ThreadID
	}
	if f.SessionID != "" {
		conds["session_id"] = f.SessionID
	}
	if f.SlideID != "" {
		conds["slide_id"] = f.SlideID
	}
	if f.Seal != "" {
		conds["seal"] = f.Seal
	}

	if len(conds) == 0 {
		return "", nil
	}

	cols := make([]string, 0, len(conds))
	for col := range conds {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var sb strings.Builder
	params := make([]any, 0, len(cols))
	sb.WriteString(" WHERE ")
	for i, col := range cols {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
		params = append(params, conds[col])
	}

	return sb.String(), params
}

// clampLimit forces a caller-requested limit into the configured range.
// Out-of-range values are silently clamped, never rejected; non-positive
// values fall back to the default.
func clampLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit < MinQueryLimit {
		return MinQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
