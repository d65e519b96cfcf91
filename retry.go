package transroute

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Attempts per call, the first included; below 1 means a single attempt
	BaseDelay  time.Duration // Delay after the first failed attempt, doubled each time
	MaxDelay   time.Duration // Maximum delay between retries

	// Sleep waits between attempts. Nil means a real timer; tests inject a fake clock.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns sensible defaults for retry behavior: three attempts
// with waits of 1s and 2s between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Delay returns the wait after failed attempt number attempt (0-based).
func (c RetryConfig) Delay(attempt int) time.Duration {
	delay := c.BaseDelay * time.Duration(1<<attempt)
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
// Non-retryable errors are returned as is; once retries run out the last error
// is wrapped in a *RetryError.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	maxAttempts := max(cfg.MaxRetries, 1)
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		attempts++
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < maxAttempts-1 {
			delay := cfg.Delay(attempt)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, delay, err)
			}
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}
	}

	return zero, &RetryError{Attempts: attempts, Last: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up; never retry.
	if errors.Is(err, context.Canceled) {
		return false
	}

	return KindOf(err).Retryable()
}

// Retrier runs provider calls under a retry policy, giving each attempt its own deadline.
type Retrier struct {
	config RetryConfig
	logger log.FieldLogger
}

// NewRetrier creates a Retrier. A nil logger uses the logrus standard logger.
func NewRetrier(cfg RetryConfig, logger log.FieldLogger) *Retrier {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Retrier{config: cfg, logger: logger}
}

// Config returns the retry policy.
func (r *Retrier) Config() RetryConfig {
	return r.config
}

// WithLogger returns a copy of r that logs through l.
func (r *Retrier) WithLogger(l log.FieldLogger) *Retrier {
	cp := *r
	cp.logger = l
	return &cp
}

// Execute calls fn until it succeeds, fails with a non-retryable error, or runs
// out of attempts. Each attempt is bounded by timeout; an attempt that hits it is
// reported as a network error.
func (r *Retrier) Execute(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, error) {
	cfg := r.config
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logRetry(r.logger, attempt, delay, err)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, delay, err)
		}
	}

	return WithRetry(ctx, cfg, func() (string, error) {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		result, err := fn(attemptCtx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && KindOf(err) == KindOther {
			return "", &ProviderError{
				Kind:    KindNetwork,
				Message: fmt.Sprintf("attempt timed out after %s", timeout),
				Cause:   err,
			}
		}
		return "", err
	})
}
