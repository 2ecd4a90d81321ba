package session

import (
	"fmt"
	"strings"
	"time"
)

// Digest renders per-session statistics as the compact text block handed
// to the summarizer. One line per session, stable field order, so equal
// statistics always produce an identical digest.
func Digest(userID string, sessions []Stat) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session statistics for %s (%d sessions):\n", userID, len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&sb, "- session=%s thread=%s reflections=%d avg_drift=%.4f first=%s last=%s\n",
			s.SessionID,
			s.ThreadID,
			s.Total,
			s.AvgDrift,
			s.FirstTS.UTC().Format(time.RFC3339),
			s.LastTS.UTC().Format(time.RFC3339),
		)
	}
	return sb.String()
}
