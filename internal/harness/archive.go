package harness

import (
	"fmt"
	"strings"
	"time"
)

// ArchiveData carries everything the archived reflection embeds.
type ArchiveData struct {
	SessionCount   int
	AvgDrift       float64
	Lawful         bool
	ContextSummary string
	GlobalSummary  string
}

// ComposeArchive renders the archived reflection's content. The layout is
// stable so archived cycles stay machine-greppable: header with the cycle
// timestamp, the measured statistics, then the two narratives.
func ComposeArchive(ts time.Time, d ArchiveData) string {
	lawful := "No"
	if d.Lawful {
		lawful = "Yes"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[Automated Continuity Validation - %s]\n\n", ts.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Sessions: %d\n", d.SessionCount)
	fmt.Fprintf(&sb, "Avg Drift: %.4f\n", d.AvgDrift)
	fmt.Fprintf(&sb, "Lawful: %s\n\n", lawful)
	fmt.Fprintf(&sb, "Context Summary:\n%s\n\n", strings.TrimSpace(d.ContextSummary))
	fmt.Fprintf(&sb, "Global Overview:\n%s\n\n", strings.TrimSpace(d.GlobalSummary))
	sb.WriteString("Status: continuity verified, sealed under lawful reflection.")
	return sb.String()
}
