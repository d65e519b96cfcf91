package transroute

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// TrialClient sends prompts through the shared relay while the user has no
// working key, within a daily quota.
type TrialClient struct {
	relay   Relay
	quota   *DailyQuota
	retrier *Retrier
	timeout time.Duration
	logger  log.FieldLogger
}

// TrialOption configures a TrialClient.
type TrialOption func(*TrialClient)

// WithTrialRetry sets the retry policy for relay calls.
func WithTrialRetry(cfg RetryConfig) TrialOption {
	return func(t *TrialClient) {
		t.retrier = NewRetrier(cfg, t.logger)
	}
}

// WithTrialTimeout sets the per-attempt timeout for relay calls.
func WithTrialTimeout(d time.Duration) TrialOption {
	return func(t *TrialClient) {
		t.timeout = d
	}
}

// WithTrialLogger sets the logger.
func WithTrialLogger(l log.FieldLogger) TrialOption {
	return func(t *TrialClient) {
		t.logger = l
		t.retrier = t.retrier.WithLogger(l)
	}
}

// NewTrialClient creates a trial client. A nil relay leaves trial mode disabled.
func NewTrialClient(relay Relay, quota *DailyQuota, opts ...TrialOption) *TrialClient {
	if quota == nil {
		quota = NewDailyQuota(DefaultDailyLimit, "")
	}
	logger := defaultLogger()
	t := &TrialClient{
		relay:   relay,
		quota:   quota,
		retrier: NewRetrier(DefaultRetryConfig(), logger),
		timeout: DefaultAttemptTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Quota returns the client's daily quota.
func (t *TrialClient) Quota() *DailyQuota {
	return t.quota
}

// Translate sends prompt to the relay. It fails with ErrQuotaExhausted before any
// network call once the day's quota is used, and counts the call only on success.
func (t *TrialClient) Translate(ctx context.Context, prompt string) (string, error) {
	if t.relay == nil {
		return "", ErrTrialDisabled
	}

	r, err := t.quota.reserve()
	if err != nil {
		return "", err
	}

	deviceID := t.quota.DeviceID()
	text, err := t.retrier.Execute(ctx, t.timeout, func(ctx context.Context) (string, error) {
		return t.relay.Complete(ctx, prompt, deviceID)
	})
	if err != nil {
		r.release()
		t.logger.WithError(err).Warn("Trial relay call failed")
		return "", err
	}

	r.commit()
	logQuotaConsumed(t.logger, t.quota.Remaining())
	return text, nil
}
