package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// newTestStore opens a fresh in-memory store with a deterministic clock
// (one second per append, starting 2025-01-01T00:00:00Z) and sequential
// slide tokens. Closed automatically when the test ends.
//
// Both generators are mutex-protected so concurrency tests stay race-free.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	slide := 0

	s, err := Open(":memory:",
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithSlideTokenGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			slide++
			return fmt.Sprintf("slide-test-%03d", slide)
		}),
	)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}
