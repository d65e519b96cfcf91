package transroute

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/transroute/registry"
)

// ErrorKind classifies a single provider failure.
type ErrorKind int

const (
	// KindOther is any failure that did not come from a provider call.
	KindOther ErrorKind = iota
	// KindAuth is a rejected key (HTTP 401/403). Never retried.
	KindAuth
	// KindRateLimited is HTTP 429.
	KindRateLimited
	// KindServer is HTTP 5xx.
	KindServer
	// KindNetwork is a transport failure or an attempt that timed out.
	KindNetwork
	// KindProtocol is a response the dispatcher could not parse, or another 4xx.
	KindProtocol
	// KindUnknownProvider means the candidate names no registered provider.
	KindUnknownProvider
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth error"
	case KindRateLimited:
		return "rate limited"
	case KindServer:
		return "server error"
	case KindNetwork:
		return "network error"
	case KindProtocol:
		return "protocol error"
	case KindUnknownProvider:
		return "unknown provider"
	default:
		return "error"
	}
}

// Retryable reports whether failures of this kind are worth another attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimited || k == KindServer || k == KindNetwork
}

var (
	// ErrNotConfigured is returned when no configuration carries a usable key.
	ErrNotConfigured = errors.New("no API key configured")
	// ErrNoCapableProvider is returned when no configured provider accepts the request's media.
	ErrNoCapableProvider = errors.New("no configured provider supports image input")
	// ErrQuotaExhausted is returned by the trial client once the daily limit is used up.
	ErrQuotaExhausted = errors.New("daily trial quota exhausted")
	// ErrUnknownProvider is returned when a configuration names a provider that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrTrialFeature is returned for image and file requests while trial mode is on.
	ErrTrialFeature = errors.New("feature not available in trial mode")
	// ErrTrialDisabled is returned when trial mode is on but no relay is configured.
	ErrTrialDisabled = errors.New("trial relay not configured")
)

// ProviderError is a failure of one call to one provider.
type ProviderError struct {
	Kind       ErrorKind
	Provider   registry.ProviderName
	Model      string
	StatusCode int // HTTP status, 0 when no response was received
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrUnknownProvider) match an unknown-provider ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrUnknownProvider && e.Kind == KindUnknownProvider
}

// KindOf returns the kind of the first ProviderError in err's chain, or KindOther.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}

// StatusKind maps an HTTP status code to an error kind.
func StatusKind(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindProtocol
	}
}

// RetryError is returned when every attempt failed with a retryable error.
type RetryError struct {
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryError) Unwrap() error {
	return e.Last
}

// AggregateError collects the diagnostics of every failed candidate of one call.
type AggregateError struct {
	Lines  []string
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Lines) == 0 {
		return "all providers failed"
	}
	return strings.Join(e.Lines, "\n")
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// AuthDominated reports whether most of the collected failures were rejected keys.
func (e *AggregateError) AuthDominated() bool {
	if len(e.Errors) == 0 {
		return false
	}
	auth := 0
	for _, err := range e.Errors {
		if KindOf(err) == KindAuth {
			auth++
		}
	}
	return auth*2 > len(e.Errors)
}

func (e *AggregateError) add(line string, err error) {
	e.Lines = append(e.Lines, line)
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

const (
	apiKeyHint     = "Invalid API key. Please check your API key in Settings."
	trialLimitHint = "Trial limit reached for today. Add your own API key in Settings to continue."
)

// UserMessage renders err for display, adding a hint for rejected keys and
// exhausted trial quota.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var agg *AggregateError
	switch {
	case errors.Is(err, ErrQuotaExhausted):
		return trialLimitHint
	case errors.Is(err, ErrNotConfigured):
		return "No API key configured. Please add your AI API key in Settings."
	case errors.Is(err, ErrTrialFeature):
		return "Image and file translation are not available in trial mode. Add your own API key in Settings."
	case errors.As(err, &agg) && agg.AuthDominated():
		return "Error: " + agg.Error() + "\n\n" + apiKeyHint
	case KindOf(err) == KindAuth:
		return "Error: " + apiKeyHint
	}
	return "Error: " + err.Error()
}
