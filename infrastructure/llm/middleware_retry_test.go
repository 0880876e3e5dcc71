package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryMiddleware_SuccessOnFirstAttempt(t *testing.T) {
	// Given a mock that succeeds immediately
	mock := NewMockCoreLLM()
	wrapped := RetryMiddleware(2, 10*time.Millisecond)(mock)

	// When making a request
	response, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "test prompt", nil)

	// Then it should succeed without retries
	require.NoError(t, err, "request should succeed")
	assert.Equal(t, "test response", response, "response should match")
	assert.Equal(t, 10, tokensIn, "input tokens should match")
	assert.Equal(t, 20, tokensOut, "output tokens should match")
	assert.Equal(t, 1, mock.GetCallCount(), "should only call once on success")
}

func TestRetryMiddleware_RetriesOnTransientError(t *testing.T) {
	// Given a mock that fails twice then succeeds
	mock := NewMockCoreLLM()
	mock.FailUntilAttempt = 2
	wrapped := RetryMiddleware(2, 5*time.Millisecond)(mock)

	// When making a request
	response, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)

	// Then it should eventually succeed after retries
	require.NoError(t, err, "request should eventually succeed")
	assert.Equal(t, "test response", response, "response should match")
	assert.Equal(t, 3, mock.GetCallCount(), "should retry until success")
}

func TestRetryMiddleware_FailsAfterMaxRetries(t *testing.T) {
	// Given a mock that always fails
	mock := NewMockCoreLLM()
	mock.Error = errors.New("persistent error")
	wrapped := RetryMiddleware(2, 5*time.Millisecond)(mock)

	// When making a request
	_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)

	// Then it should fail after exhausting the budget
	require.Error(t, err, "request should fail")
	assert.Contains(t, err.Error(), "request failed after 3 attempts", "error should indicate retry exhaustion")
	assert.Contains(t, err.Error(), "persistent error", "error should contain original error")
	assert.Equal(t, 3, mock.GetCallCount(), "should attempt max retries + 1")
}

func TestRetryMiddleware_UsesFixedDelay(t *testing.T) {
	// Given a mock that fails twice then succeeds
	mock := NewMockCoreLLM()
	mock.FailUntilAttempt = 2
	delay := 30 * time.Millisecond
	wrapped := RetryMiddleware(3, delay)(mock)

	// When making a request
	_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)
	require.NoError(t, err, "request should eventually succeed")

	// Then the gap between attempts should stay flat rather than grow
	times := mock.GetCallTimes()
	require.Len(t, times, 3, "should record three attempts")
	first := times[1].Sub(times[0])
	second := times[2].Sub(times[1])
	assert.GreaterOrEqual(t, first, delay, "first gap should honor the delay")
	assert.Less(t, second, 2*delay, "second gap should not back off exponentially")
}

func TestRetryMiddleware_DoesNotRetryNonRetryableErrors(t *testing.T) {
	// Given a mock that fails with an authentication error
	mock := NewMockCoreLLM()
	mock.Error = &ProviderError{Type: ErrorTypeAuthentication, Provider: "mock", Message: "bad key"}
	wrapped := RetryMiddleware(3, 5*time.Millisecond)(mock)

	// When making a request
	_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)

	// Then it should fail immediately
	require.Error(t, err, "request should fail")
	assert.Equal(t, 1, mock.GetCallCount(), "should not retry authentication errors")
}

func TestRetryMiddleware_RespectsContextCancellation(t *testing.T) {
	// Given a mock that fails slowly
	mock := NewMockCoreLLM()
	mock.Error = errors.New("slow error")
	mock.ResponseDelay = 50 * time.Millisecond
	wrapped := RetryMiddleware(5, 10*time.Millisecond)(mock)

	// When making a request with a short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_, _, _, err := wrapped.DoRequest(ctx, "test prompt", nil)

	// Then it should stop before exhausting the budget
	require.Error(t, err, "request should fail")
	assert.Less(t, mock.GetCallCount(), 6, "should stop retrying on context cancellation")
}
