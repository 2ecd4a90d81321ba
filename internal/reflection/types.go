package reflection

import "time"

// Default values applied by the store when a caller omits optional fields.
const (
	DefaultThreadID  = "general"
	DefaultSessionID = "continuity"
	DefaultSeal      = "lawful"
)

// Reflection is one immutable archived record: content plus a numeric drift
// score and grouping metadata. Records are append-only - they are never
// mutated or deleted once written.
type Reflection struct {
	// ID is the store-assigned monotonically increasing identifier.
	ID int64 `json:"id"`

	// UserID is the owning identity, lowercased by the store before
	// persistence so grouping is case-insensitive.
	UserID string `json:"user_id"`

	// ThreadID groups reflections within a user's activity.
	// Defaults to "general".
	ThreadID string `json:"thread_id"`

	// SessionID is the grouping key for continuity runs.
	// Defaults to "continuity".
	SessionID string `json:"session_id"`

	// SlideID is an optional correlation token. The store generates a
	// fresh token when the caller omits it.
	SlideID string `json:"slide_id"`

	// Content is the full reflection text, NFC-normalized.
	Content string `json:"content"`

	// DriftScore is the raw, unclamped score exactly as supplied by the
	// caller. Clamping is computed on read by the drift governor; the raw
	// value is what is persisted, for audit.
	DriftScore float64 `json:"drift_score"`

	// Seal is an opaque status label. The store does not validate
	// membership in any set. Defaults to "lawful".
	Seal string `json:"seal"`

	// CreatedAt is assigned by the store at insert time and is the sole
	// ordering key for synthesis and recency queries.
	CreatedAt time.Time `json:"created_at"`
}

// Filter is a conjunction over optional grouping fields. Empty fields are
// unconstrained. Used by store queries, aggregation, and synthesis.
type Filter struct {
	UserID    string
	ThreadID  string
	SessionID string
	SlideID   string
	Seal      string
}

// Order selects created_at ordering for store queries.
type Order int

const (
	// OrderDesc returns the most recent reflections first. Default for
	// recency queries.
	OrderDesc Order = iota

	// OrderAsc returns reflections in chronological order. Required for
	// continuity synthesis so the narrative reads forward in time.
	OrderAsc
)

// String returns the SQL direction keyword for the order.
func (o Order) String() string {
	if o == OrderAsc {
		return "ASC"
	}
	return "DESC"
}
