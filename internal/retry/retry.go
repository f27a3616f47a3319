package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/ai"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

// RetryProvider is a decorator that retries transient provider failures with
// exponential backoff and jitter before delegating to the wrapped LLMProvider.
type RetryProvider struct {
	inner      ai.LLMProvider
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryProvider wraps an LLMProvider with retry logic.
// maxRetries is the number of additional attempts after the first failure
// (default: 2). baseDelay is the delay before the first retry (default: 5s),
// doubled on each subsequent retry.
func NewRetryProvider(inner ai.LLMProvider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryProvider {
	return &RetryProvider{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Complete attempts the provider call, retrying on transient errors.
func (p *RetryProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reply, err := p.inner.Complete(ctx, systemPrompt, userPrompt)
	if err == nil {
		return reply, nil
	}

	if !isRetryable(err) {
		return "", err
	}

	lastErr := err
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		p.logger.Warn("retrying after transient provider error",
			"attempt", attempt,
			"max_retries", p.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		reply, err = p.inner.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return reply, nil
		}

		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (p *RetryProvider) backoffDelay(attempt int, err error) time.Duration {
	var provErr *model.ProviderError
	if errors.As(err, &provErr) && provErr.RetryAfter > 0 {
		return provErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth
// retrying. Malformed model replies are never retried; re-asking the same
// model the same question is a user decision, not a transport concern.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Never retry after context cancellation.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var malformed *model.MalformedResponseError
	if errors.As(err, &malformed) {
		return false
	}

	var provErr *model.ProviderError
	if errors.As(err, &provErr) {
		// Transport-level failure (no HTTP status): retryable.
		if provErr.StatusCode == 0 {
			return true
		}
		// 429 Too Many Requests: retryable.
		if provErr.StatusCode == 429 {
			return true
		}
		// 5xx: retryable.
		if provErr.StatusCode >= 500 {
			return true
		}
		// 4xx (not 429): not retryable.
		return false
	}

	// Anything else (prompt rendering etc.): not retryable.
	return false
}
