package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior.
	CompleteFunc func(ctx context.Context, prompt string, passages []string) (string, error)

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockCompleter creates a mock completer with default canned behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a deterministic fenced LaTeX response derived from the prompt.
func (m *MockCompleter) Complete(ctx context.Context, prompt string, passages []string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, passages)
	}

	return fmt.Sprintf("```latex\n\\section{Generated}\nResponse for %d context passages.\n```", len(passages)), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns the prompts Complete was called with, in call order.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Reset clears the call count and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
}
