package ai

import (
	"context"
	"sync"
)

// Mock implements Client for testing.
// The reply can be customized via the Func field.
type Mock struct {
	// Func is called when Send is invoked.
	// If nil, a canned reply echoing the prompt is returned.
	Func func(ctx context.Context, prompt string, history []Turn) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Send invocation for verification.
type MockCall struct {
	Prompt  string
	History []Turn
}

// NewMock creates a mock client with a canned echo reply.
func NewMock() *Mock {
	return &Mock{
		Func: func(ctx context.Context, prompt string, history []Turn) (string, error) {
			return "You said: " + prompt, nil
		},
	}
}

// MockWithError returns a mock that always fails with err.
func MockWithError(err error) *Mock {
	return &Mock{
		Func: func(ctx context.Context, prompt string, history []Turn) (string, error) {
			return "", err
		},
	}
}

// Send calls Func and records the call.
func (m *Mock) Send(ctx context.Context, prompt string, history []Turn) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Prompt: prompt, History: history})
	m.mu.Unlock()

	if m.Func != nil {
		return m.Func(ctx, prompt, history)
	}
	return "", ErrEmptyReply
}

// Calls returns all recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Send invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Client at compile time.
var _ Client = (*Mock)(nil)
