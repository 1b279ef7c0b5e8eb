package mock

import (
	"context"
	"sync"
)

// Call records one Generate invocation.
type Call struct {
	System string
	Prompt string
}

// MockGenerator is a test double for ai.Generator.
// It records every prompt and is safe for concurrent use.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Reply is returned.
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)

	// Reply is the default response.
	Reply string

	mu    sync.Mutex
	calls []Call
}

// NewMockGenerator creates a mock generator returning a fixed email.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Reply: "Subject: Quick idea for your team\n\nHi there,\n\nI enjoyed reading about your recent launch.\n\nBest,\nAlex",
	}
}

// Generate records the call and returns the injected or default reply.
func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{System: system, Prompt: prompt})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}
	return m.Reply, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockGenerator) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.GenerateFunc = nil
}
