package transroute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/transroute/registry"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRateLimiter_TryAcquire(t *testing.T) {
	limiter := newRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	}, newManualClock().Now)

	// Should be able to acquire burst size immediately
	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	if limiter.TryAcquire() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	clock := newManualClock()
	limiter := newRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	}, clock.Now)

	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Error("Expected acquire to fail after drain")
	}

	clock.Advance(50 * time.Millisecond)
	if limiter.TryAcquire() {
		t.Error("Half a token should not be enough")
	}

	clock.Advance(60 * time.Millisecond)
	if !limiter.TryAcquire() {
		t.Error("Expected acquire to succeed after refill")
	}

	clock.Advance(time.Hour)
	if got := limiter.Available(); got != 1 {
		t.Errorf("bucket should cap at burst size, got %f", got)
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})
	limiter.TryAcquire()

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})
	limiter.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Expected error when context cancelled")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := newRateLimiter(RateLimitConfig{
		RequestsPerMinute: 6000,
		BurstSize:         10,
	}, newManualClock().Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAcquire() {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 10 {
		t.Errorf("Expected 10 acquired, got %d", acquired)
	}
}

type echoDispatcher struct {
	mu    sync.Mutex
	calls int
}

func (d *echoDispatcher) Dispatch(ctx context.Context, c Candidate, req Request) (string, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return req.Prompt, nil
}

func TestRateLimitedDispatcher_PerProviderBuckets(t *testing.T) {
	inner := &echoDispatcher{}
	d := NewRateLimitedDispatcher(inner, RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	d.now = newManualClock().Now

	groq := Candidate{Provider: registry.Groq, Model: "llama-3.1-8b-instant"}
	google := Candidate{Provider: registry.Google, Model: "gemini-2.0-flash"}

	if _, err := d.Dispatch(context.Background(), groq, Request{Prompt: "a"}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := d.Dispatch(context.Background(), google, Request{Prompt: "b"}); err != nil {
		t.Fatalf("another provider must not wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Dispatch(ctx, groq, Request{Prompt: "c"})
	if KindOf(err) != KindNetwork {
		t.Errorf("expected a network error for a cut-short wait, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 forwarded calls, got %d", inner.calls)
	}
	if d.Limiter(registry.Groq) != d.Limiter(registry.Groq) {
		t.Error("limiter should be created once per provider")
	}
}
