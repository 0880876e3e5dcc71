package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryLLM retries failed requests with a fixed inter-attempt delay.
// The verdict pipeline deliberately avoids exponential backoff: the budget
// is small and the delay exists only to avoid hammering an overloaded model.
type retryLLM struct {
	next       CoreLLM
	maxRetries int
	delay      time.Duration
}

// RetryMiddleware creates middleware that retries failed requests up to
// maxRetries additional times, sleeping delay between attempts.
// Non-retryable provider errors and context cancellation stop the loop
// immediately.
func RetryMiddleware(maxRetries int, delay time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &retryLLM{next: next, maxRetries: maxRetries, delay: delay}
	}
}

func (r *retryLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attempts++
		response, tokensIn, tokensOut, err := r.next.DoRequest(ctx, prompt, opts)
		if err == nil {
			return response, tokensIn, tokensOut, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		case <-time.After(r.delay):
		}
	}

	return "", 0, 0, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func retryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.IsRetryable()
	}
	// Unclassified failures are treated as transient.
	return true
}

func (r *retryLLM) GetModel() string { return r.next.GetModel() }
