package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameModel_EnforcesMinDelay(t *testing.T) {
	limiter := NewModelRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "openai/gpt-4o-mini"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "openai/gpt-4o-mini"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentModels_NoCrossBlocking(t *testing.T) {
	limiter := NewModelRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai/gpt-4o-mini"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// Immediately calling for a different model should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "anthropic/claude-3.5-sonnet"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected second model wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewModelRateLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "openai/gpt-4o-mini"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// Cancel the context before the wait completes.
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	if err := limiter.Wait(ctx, "openai/gpt-4o-mini"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mock for RateLimitedProvider test ---

type recordingProvider struct {
	called bool
}

func (p *recordingProvider) Complete(_ context.Context, _, _ string) (string, error) {
	p.called = true
	return "{}", nil
}

func TestRateLimitedProvider_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewModelRateLimiter(100 * time.Millisecond)
	inner := &recordingProvider{}
	provider := NewRateLimitedProvider(inner, limiter, "openai/gpt-4o-mini")
	ctx := context.Background()

	// First call seeds the limiter, then delegates.
	if _, err := provider.Complete(ctx, "s", "u"); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if !inner.called {
		t.Fatal("inner provider was not called on first complete")
	}

	// Reset.
	inner.called = false

	// Second call should wait for the rate limiter.
	start := time.Now()
	if _, err := provider.Complete(ctx, "s", "u"); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	elapsed := time.Since(start)

	if !inner.called {
		t.Fatal("inner provider was not called on second complete")
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second complete, got %v", elapsed)
	}
}
