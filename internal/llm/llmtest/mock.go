// Package llmtest provides an in-memory llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/umlgen/internal/llm"
)

// MockProvider records calls and returns a canned response or error.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []llm.CompletionRequest
	Response *llm.CompletionResponse
	Err      error
	ProvName string

	// Hook, when set, runs inside Complete before the canned result is
	// returned. Tests use it to block or to observe intermediate state.
	Hook func(ctx context.Context, req llm.CompletionRequest)
}

// NewMockProvider returns a mock that replies with content.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{
		ProvName: "mock",
		Response: &llm.CompletionResponse{
			Content:      content,
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	hook := m.Hook
	resp, err := m.Response, m.Err
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CallCount returns the number of Complete calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastPrompt returns the content of the last user message sent.
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	msgs := m.Calls[len(m.Calls)-1].Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
