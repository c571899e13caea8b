package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Respond decides the reply for
// each prompt; every prompt is recorded.
type MockClient struct {
	Respond func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockClient creates a mock with the given responder
func NewMockClient(respond func(ctx context.Context, prompt string) (string, error)) *MockClient {
	return &MockClient{Respond: respond}
}

// StaticClient always replies with text
func StaticClient(text string) *MockClient {
	return NewMockClient(func(context.Context, string) (string, error) { return text, nil })
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Respond == nil {
		return "", ErrEmptyResponse
	}
	return m.Respond(ctx, prompt)
}

// Prompts returns a copy of the prompts received so far
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls is the number of Generate calls
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
