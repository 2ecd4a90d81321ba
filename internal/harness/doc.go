// Package harness implements the continuity validation loop.
//
// A cycle walks a fixed state sequence:
//
//	IDLE → HEALTH_CHECK → SCAN → CONTEXT_VALIDATION → ARCHIVE → SLEEP → IDLE
//
// HEALTH_CHECK probes the store; SCAN aggregates the configured user's
// sessions and computes lawfulness; CONTEXT_VALIDATION runs the combined
// context-scan; ARCHIVE writes the outcome back into the store as a new
// reflection. That last step is the feedback loop: each validation cycle
// becomes a data point for the next cycle's aggregation.
//
// Failure policy: no step is retried within a cycle. A failed step aborts
// the cycle (nothing is archived) and the harness proceeds to SLEEP; the
// next cycle starts fresh. Self-healing comes from repetition, not retry.
//
// Cancellation is cooperative and checked only at the SLEEP boundary,
// never mid-cycle; individual calls are still bounded by their own
// timeouts. The harness runs exactly one cycle at a time.
package harness
