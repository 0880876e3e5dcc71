package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RejectsEmptyAPIKey(t *testing.T) {
	_, err := NewClient("openai", ClientConfig{Model: "gpt-4o-mini"})
	require.Error(t, err, "client creation should fail")
	assert.ErrorIs(t, err, ErrEmptyAPIKey, "error should identify the missing key")
}

func TestNewClient_RejectsUnknownProvider(t *testing.T) {
	_, err := NewClient("nonexistent", ClientConfig{APIKey: "k"})
	require.Error(t, err, "client creation should fail")
	assert.Contains(t, err.Error(), "unknown provider", "error should name the problem")
}

func TestWrap_AppliesMiddlewareInOrder(t *testing.T) {
	// Given middleware that tags the prompt as it passes through
	var order []string
	tag := func(name string) Middleware {
		return func(next CoreLLM) CoreLLM {
			return coreFunc{
				do: func(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
					order = append(order, name)
					return next.DoRequest(ctx, prompt, opts)
				},
				model: next.GetModel,
			}
		}
	}
	mock := NewMockCoreLLM()
	client := Wrap(mock, tag("outer"), tag("inner"))

	// When completing a prompt
	response, err := client.Complete(context.Background(), "hello", nil)

	// Then the first middleware runs outermost
	require.NoError(t, err, "completion should succeed")
	assert.Equal(t, "test response", response, "response should pass through")
	assert.Equal(t, []string{"outer", "inner"}, order, "middleware should nest first-to-last")
	assert.Equal(t, "test-model", client.GetModel(), "model should come from the core")
}

func TestWrap_TimeoutMiddlewareCancelsSlowRequests(t *testing.T) {
	// Given a core that responds slower than the timeout
	mock := NewMockCoreLLM()
	mock.ResponseDelay = 100 * time.Millisecond
	client := Wrap(mock, TimeoutMiddleware(20*time.Millisecond))

	// When completing a prompt
	_, err := client.Complete(context.Background(), "hello", nil)

	// Then the request should be cut short
	require.Error(t, err, "completion should time out")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "error should be a deadline error")
}

// coreFunc adapts plain functions to CoreLLM for test middleware.
type coreFunc struct {
	do    func(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error)
	model func() string
}

func (c coreFunc) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	return c.do(ctx, prompt, opts)
}

func (c coreFunc) GetModel() string { return c.model() }
