package transroute

import (
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/transroute/registry"
)

const (
	// latencyAlpha weights the newest sample in the latency EWMA.
	latencyAlpha = 0.3
	// timeoutMultiplier scales the EWMA latency into an attempt timeout.
	timeoutMultiplier = 3

	MinAttemptTimeout     = 10 * time.Second
	MaxAttemptTimeout     = 60 * time.Second
	DefaultAttemptTimeout = 30 * time.Second
)

// HealthRecord is the rolling outcome history of one provider.
type HealthRecord struct {
	Successes           int
	Failures            int
	ConsecutiveFailures int
	LatencyEWMA         time.Duration
	LastFailure         time.Time
	LastSuccess         time.Time
}

// FailureRate is failures over all recorded attempts, 0 with no history.
func (r HealthRecord) FailureRate() float64 {
	total := r.Successes + r.Failures
	if total == 0 {
		return 0
	}
	return float64(r.Failures) / float64(total)
}

// tier groups records for ordering: clean successes, then unknown, then any failure.
func (r HealthRecord) tier() int {
	switch {
	case r.Failures > 0:
		return 2
	case r.Successes > 0:
		return 0
	default:
		return 1
	}
}

// HealthTracker keeps per-provider health and derives candidate order and
// attempt timeouts from it. It is safe for concurrent use.
type HealthTracker struct {
	mu      sync.RWMutex
	records map[registry.ProviderName]*HealthRecord
	now     func() time.Time
}

// NewHealthTracker creates an empty tracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		records: make(map[registry.ProviderName]*HealthRecord),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for timestamps.
func (h *HealthTracker) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

func (h *HealthTracker) record(p registry.ProviderName) *HealthRecord {
	r, ok := h.records[p]
	if !ok {
		r = &HealthRecord{}
		h.records[p] = r
	}
	return r
}

// RecordSuccess counts a success and folds latency into the EWMA.
func (h *HealthTracker) RecordSuccess(p registry.ProviderName, latency time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.record(p)
	if r.Successes == 0 {
		r.LatencyEWMA = latency
	} else {
		r.LatencyEWMA = time.Duration(latencyAlpha*float64(latency) + (1-latencyAlpha)*float64(r.LatencyEWMA))
	}
	r.Successes++
	r.ConsecutiveFailures = 0
	r.LastSuccess = h.now()
}

// RecordFailure counts a failure.
func (h *HealthTracker) RecordFailure(p registry.ProviderName) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.record(p)
	r.Failures++
	r.ConsecutiveFailures++
	r.LastFailure = h.now()
}

// Snapshot returns a copy of the provider's record.
func (h *HealthTracker) Snapshot(p registry.ProviderName) (HealthRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.records[p]
	if !ok {
		return HealthRecord{}, false
	}
	return *r, true
}

// Reset forgets all history.
func (h *HealthTracker) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = make(map[registry.ProviderName]*HealthRecord)
}

// PrioritySorted orders providers best first: a clean success record ranks above
// no history, which ranks above any recorded failure. Within a group providers
// are ordered by failure rate, then EWMA latency. Ties keep input order.
func (h *HealthTracker) PrioritySorted(providers []registry.ProviderName) []registry.ProviderName {
	h.mu.RLock()
	snap := make([]HealthRecord, len(providers))
	for i, p := range providers {
		if r, ok := h.records[p]; ok {
			snap[i] = *r
		}
	}
	h.mu.RUnlock()

	idx := make([]int, len(providers))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := snap[idx[a]], snap[idx[b]]
		if ra.tier() != rb.tier() {
			return ra.tier() < rb.tier()
		}
		if fa, fb := ra.FailureRate(), rb.FailureRate(); fa != fb {
			return fa < fb
		}
		return ra.LatencyEWMA < rb.LatencyEWMA
	})

	out := make([]registry.ProviderName, len(providers))
	for i, j := range idx {
		out[i] = providers[j]
	}
	return out
}

// AdaptiveTimeout returns the attempt timeout for a provider: three times its
// EWMA latency within [MinAttemptTimeout, MaxAttemptTimeout], or
// DefaultAttemptTimeout with no latency history.
func (h *HealthTracker) AdaptiveTimeout(p registry.ProviderName) time.Duration {
	h.mu.RLock()
	r, ok := h.records[p]
	var ewma time.Duration
	if ok {
		ewma = r.LatencyEWMA
	}
	h.mu.RUnlock()

	if ewma <= 0 {
		return DefaultAttemptTimeout
	}
	timeout := ewma * timeoutMultiplier
	if timeout < MinAttemptTimeout {
		return MinAttemptTimeout
	}
	if timeout > MaxAttemptTimeout {
		return MaxAttemptTimeout
	}
	return timeout
}
