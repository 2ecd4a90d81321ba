package testutil

import (
	"context"
	"sync"
)

// FakeSummarizer is a configurable stand-in for the external narrative
// collaborator. It records every call so tests can assert on the exact
// instruction and text handed over.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FakeSummarizer struct {
	mu sync.Mutex

	// Response is returned from Summarize when Err is nil.
	Response string

	// Err, when set, makes every Summarize call fail.
	Err error

	calls []SummarizeCall
}

// SummarizeCall records the arguments of one Summarize invocation.
type SummarizeCall struct {
	Instruction string
	Text        string
}

// NewFakeSummarizer creates a fake returning the given response.
func NewFakeSummarizer(response string) *FakeSummarizer {
	return &FakeSummarizer{Response: response}
}

// Summarize returns the configured response or error, recording the call.
func (f *FakeSummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, SummarizeCall{Instruction: instruction, Text: text})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Calls returns a copy of all recorded calls.
func (f *FakeSummarizer) Calls() []SummarizeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SummarizeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of Summarize invocations.
func (f *FakeSummarizer) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
