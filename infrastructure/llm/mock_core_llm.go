package llm

import (
	"context"
	"sync"
	"time"
)

// MockCoreLLM is a configurable CoreLLM for middleware tests. It records
// every call and can be scripted to fail for the first N attempts.
type MockCoreLLM struct {
	mu sync.Mutex

	Response      string
	TokensIn      int
	TokensOut     int
	Error         error
	Model         string
	ResponseDelay time.Duration

	// FailUntilAttempt makes the first N calls fail before succeeding.
	FailUntilAttempt int

	callCount  int
	lastPrompt string
	lastOpts   map[string]any
	callTimes  []time.Time
}

// NewMockCoreLLM returns a mock that succeeds with a fixed response.
func NewMockCoreLLM() *MockCoreLLM {
	return &MockCoreLLM{
		Response:  "test response",
		TokensIn:  10,
		TokensOut: 20,
		Model:     "test-model",
	}
}

func (m *MockCoreLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	m.mu.Lock()
	m.callCount++
	m.lastPrompt = prompt
	m.lastOpts = opts
	m.callTimes = append(m.callTimes, time.Now())
	count := m.callCount
	m.mu.Unlock()

	if m.ResponseDelay > 0 {
		select {
		case <-time.After(m.ResponseDelay):
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		}
	}

	if m.FailUntilAttempt > 0 && count <= m.FailUntilAttempt {
		if m.Error != nil {
			return "", 0, 0, m.Error
		}
		return "", 0, 0, &ProviderError{Type: ErrorTypeServerError, Provider: "mock", Message: "simulated failure"}
	}
	if m.Error != nil && m.FailUntilAttempt == 0 {
		return "", 0, 0, m.Error
	}

	return m.Response, m.TokensIn, m.TokensOut, nil
}

func (m *MockCoreLLM) GetModel() string { return m.Model }

// GetCallCount reports how many times DoRequest was invoked.
func (m *MockCoreLLM) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GetCallTimes returns the timestamps of all invocations.
func (m *MockCoreLLM) GetCallTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.callTimes))
	copy(out, m.callTimes)
	return out
}

// GetLastPrompt returns the prompt of the most recent call.
func (m *MockCoreLLM) GetLastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// GetLastOpts returns the options of the most recent call.
func (m *MockCoreLLM) GetLastOpts() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}
