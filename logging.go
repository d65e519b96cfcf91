package transroute

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/transroute/registry"
)

// Structured field keys for routing logs
const (
	FieldProvider  = "provider"
	FieldModel     = "model"
	FieldAttempt   = "attempt"
	FieldDuration  = "duration"
	FieldDelay     = "delay"
	FieldKind      = "kind"
	FieldKeyIndex  = "key_index"
	FieldKeyPrefix = "key_prefix"
	FieldTimeout   = "timeout"
	FieldRemaining = "remaining"
)

func defaultLogger() log.FieldLogger {
	return log.StandardLogger()
}

// ParseLogLevel converts a level name to a logrus level, defaulting to info.
func ParseLogLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// logAttemptSucceeded logs a candidate that returned a translation
func logAttemptSucceeded(l log.FieldLogger, c Candidate, elapsed time.Duration) {
	l.WithFields(log.Fields{
		FieldProvider: string(c.Provider),
		FieldModel:    c.Model,
		FieldKeyIndex: c.Index,
		FieldDuration: elapsed.String(),
	}).Info("Translation succeeded")
}

// logAttemptFailed logs a candidate that failed after its retries
func logAttemptFailed(l log.FieldLogger, c Candidate, err error) {
	l.WithFields(log.Fields{
		FieldProvider: string(c.Provider),
		FieldModel:    c.Model,
		FieldKeyIndex: c.Index,
		FieldKind:     KindOf(err).String(),
	}).WithError(err).Warn("Candidate failed, trying next")
}

// logRetry logs a retryable failure before the backoff sleep
func logRetry(l log.FieldLogger, attempt int, delay time.Duration, err error) {
	l.WithFields(log.Fields{
		FieldAttempt: attempt,
		FieldDelay:   delay.String(),
		FieldKind:    KindOf(err).String(),
	}).WithError(err).Debug("Retrying after backoff")
}

// logModelResolved logs a model found for a key without one
func logModelResolved(l log.FieldLogger, provider registry.ProviderName, apiKey, model string, cached bool) {
	l.WithFields(log.Fields{
		FieldProvider:  string(provider),
		FieldModel:     model,
		FieldKeyPrefix: MaskKey(apiKey),
		"cached":       cached,
	}).Info("Auto model resolved")
}

// logModelEvicted logs a cached model that stopped working
func logModelEvicted(l log.FieldLogger, provider registry.ProviderName, apiKey, model string) {
	l.WithFields(log.Fields{
		FieldProvider:  string(provider),
		FieldModel:     model,
		FieldKeyPrefix: MaskKey(apiKey),
	}).Debug("Cached model failed, evicting")
}

// logCandidateSkipped logs configs dropped before dispatch
func logCandidateSkipped(l log.FieldLogger, index int, reason string) {
	l.WithFields(log.Fields{
		FieldKeyIndex: index,
		"reason":      reason,
	}).Debug("Config skipped")
}

// logQuotaConsumed logs a committed trial call
func logQuotaConsumed(l log.FieldLogger, remaining int) {
	l.WithField(FieldRemaining, remaining).Info("Trial quota consumed")
}
