package transroute

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/transroute/registry"
)

// RateLimiter is a token bucket that paces requests to one provider.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures a rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return newRateLimiter(cfg, time.Now)
}

func newRateLimiter(cfg RateLimitConfig, now func() time.Time) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: now(),
		now:        now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token, or reports how long until one is due.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}
	missing := 1 - r.tokens
	return time.Duration(missing / r.refillRate * float64(time.Second)), false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedDispatcher paces a Dispatcher with one bucket per provider, so a
// busy provider never delays calls to another.
type RateLimitedDispatcher struct {
	next     Dispatcher
	cfg      RateLimitConfig
	now      func() time.Time
	mu       sync.Mutex
	limiters map[registry.ProviderName]*RateLimiter
}

// NewRateLimitedDispatcher wraps next with per-provider rate limiting.
func NewRateLimitedDispatcher(next Dispatcher, cfg RateLimitConfig) *RateLimitedDispatcher {
	return &RateLimitedDispatcher{
		next:     next,
		cfg:      cfg,
		now:      time.Now,
		limiters: make(map[registry.ProviderName]*RateLimiter),
	}
}

// Dispatch waits for the provider's bucket, then forwards the call. A wait cut
// short by the attempt deadline counts as a network timeout.
func (d *RateLimitedDispatcher) Dispatch(ctx context.Context, c Candidate, req Request) (string, error) {
	if err := d.Limiter(c.Provider).Wait(ctx); err != nil {
		return "", &ProviderError{
			Kind:     KindNetwork,
			Provider: c.Provider,
			Model:    c.Model,
			Message:  "rate limit wait cancelled",
			Cause:    err,
		}
	}
	return d.next.Dispatch(ctx, c, req)
}

// Limiter returns the bucket of provider p, creating it on first use.
func (d *RateLimitedDispatcher) Limiter(p registry.ProviderName) *RateLimiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[p]
	if !ok {
		l = newRateLimiter(d.cfg, d.now)
		d.limiters[p] = l
	}
	return l
}

// Verify RateLimitedDispatcher implements Dispatcher
var _ Dispatcher = (*RateLimitedDispatcher)(nil)
