package testutil

import (
	"fmt"
	"sync"
)

// SlideTokenSequence generates sequential slide tokens for deterministic
// tests: slide-test-001, slide-test-002, ...
//
// Production code generates UUIDv7 tokens; tests substitute this sequence
// so persisted rows are byte-stable across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SlideTokenSequence struct {
	mu sync.Mutex
	n  int
}

// NewSlideTokenSequence creates a generator starting at slide-test-001.
func NewSlideTokenSequence() *SlideTokenSequence {
	return &SlideTokenSequence{}
}

// Next returns the next token in the sequence.
func (g *SlideTokenSequence) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("slide-test-%03d", g.n)
}
