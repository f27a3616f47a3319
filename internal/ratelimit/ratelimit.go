package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/ai"
)

// ModelRateLimiter enforces a minimum delay between consecutive requests to
// the same model. The batch runner issues requests strictly sequentially, so
// this is the only pacing the provider sees.
type ModelRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: model identifier
	minDelay time.Duration
}

// NewModelRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same model.
func NewModelRateLimiter(minDelay time.Duration) *ModelRateLimiter {
	return &ModelRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given model. Returns an error if the context is cancelled while waiting.
func (r *ModelRateLimiter) Wait(ctx context.Context, modelID string) error {
	r.mu.Lock()
	last, ok := r.lastCall[modelID]
	now := time.Now()

	if !ok {
		// First request for this model, no wait needed.
		r.lastCall[modelID] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		// Enough time has passed, proceed immediately.
		r.lastCall[modelID] = now
		r.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", modelID, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[modelID] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedProvider is a decorator that waits on a shared limiter before
// delegating to the wrapped LLMProvider.
type RateLimitedProvider struct {
	inner   ai.LLMProvider
	limiter *ModelRateLimiter
	modelID string
}

// NewRateLimitedProvider wraps an LLMProvider with model-level rate limiting.
// All providers targeting the same model should share the same limiter.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *ModelRateLimiter, modelID string) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
		modelID: modelID,
	}
}

// Complete waits for the rate limiter to allow a request, then delegates to
// the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := p.limiter.Wait(ctx, p.modelID); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, systemPrompt, userPrompt)
}
