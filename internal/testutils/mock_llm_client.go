// Package testutils provides deterministic in-memory doubles for the
// pipeline's external dependencies: the LLM clients, the precedent cache,
// the keyword store, and the case-law searcher.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/keyublog/gaepan-core/internal/ports"
)

// MockLLMClient implements ports.LLMClient with deterministic responses
// selected by substring matching against the prompt. Responses can also be
// scripted as a sequence to simulate flaky models.
type MockLLMClient struct {
	mu sync.Mutex

	model     string
	responses []MockResponse

	// Script, when non-empty, overrides pattern matching: each call pops
	// the next entry.
	Script []ScriptedCall

	// Err, when set, makes every call fail.
	Err error

	CallCount int
	Prompts   []string
}

// MockResponse maps a prompt substring to a canned response.
type MockResponse struct {
	Pattern  string
	Response string
}

// ScriptedCall is one step of a scripted conversation: either a response or
// an error.
type ScriptedCall struct {
	Response string
	Err      error
}

var _ ports.LLMClient = (*MockLLMClient)(nil)

// NewMockLLMClient creates a mock that echoes a neutral response for any
// prompt until patterns or a script are configured.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{model: model}
}

// AddResponse registers a pattern-matched response. Patterns are checked in
// registration order; the empty pattern matches everything.
func (m *MockLLMClient) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{Pattern: pattern, Response: response})
}

// Complete returns the scripted or pattern-matched response for prompt.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}

	if len(m.Script) > 0 {
		step := m.Script[0]
		m.Script = m.Script[1:]
		return step.Response, step.Err
	}

	for _, r := range m.responses {
		if r.Pattern == "" || strings.Contains(prompt, r.Pattern) {
			return r.Response, nil
		}
	}
	return "", nil
}

// GetModel returns the mock model identifier.
func (m *MockLLMClient) GetModel() string { return m.model }

// LastPrompt returns the most recent prompt, or "" when none were made.
func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
