// Package synth implements continuity synthesis: turning an ordered
// window of reflections into a narrative summary via an external
// summarization collaborator.
//
// The collaborator is an opaque function that may fail or time out. Its
// failures are always reported as SYNTHESIS_UNAVAILABLE, distinct from
// NOT_FOUND, and never allowed to mask aggregation data.
package synth

import "context"

// Summarizer is the external narrative collaborator: ordered text in,
// free-form prose out. Implementations must honor context cancellation
// and bound their own call time.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
}
