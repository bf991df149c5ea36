package mock

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns "mock response".
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount atomic.Int64

	mu      sync.Mutex
	prompts []string
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the prompt and delegates to GenerateFunc.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "mock response", nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.prompts = nil
	m.mu.Unlock()
	m.GenerateFunc = nil
}
