package transroute

import (
	"sync"
	"time"
)

// DefaultDailyLimit is the number of trial translations allowed per day.
const DefaultDailyLimit = 100

const quotaDateLayout = "2006-01-02"

// QuotaState is the persistable state of the daily trial quota.
type QuotaState struct {
	Date       string `json:"date" yaml:"date"` // Local date, YYYY-MM-DD
	Used       int    `json:"used" yaml:"used"`
	DailyLimit int    `json:"daily_limit" yaml:"daily_limit"`
	DeviceID   string `json:"device_id" yaml:"device_id"`
}

// DailyQuota counts trial calls per local day. A call holds a reservation while
// in flight and is only counted once it succeeds, so Used never exceeds the limit.
type DailyQuota struct {
	mu       sync.Mutex
	state    QuotaState
	pending  int
	now      func() time.Time
	onChange func(QuotaState)
}

// QuotaOption configures a DailyQuota.
type QuotaOption func(*DailyQuota)

// WithQuotaClock sets the time source used for the daily rollover.
func WithQuotaClock(now func() time.Time) QuotaOption {
	return func(q *DailyQuota) {
		q.now = now
	}
}

// WithQuotaHook registers a function called with the new state after every change,
// so the caller can persist it.
func WithQuotaHook(fn func(QuotaState)) QuotaOption {
	return func(q *DailyQuota) {
		q.onChange = fn
	}
}

// NewDailyQuota creates a quota with the given limit. A non-positive limit uses DefaultDailyLimit.
func NewDailyQuota(limit int, deviceID string, opts ...QuotaOption) *DailyQuota {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	q := &DailyQuota{now: time.Now}
	for _, opt := range opts {
		opt(q)
	}
	q.state = QuotaState{
		Date:       q.today(),
		DailyLimit: limit,
		DeviceID:   deviceID,
	}
	return q
}

func (q *DailyQuota) today() string {
	return q.now().Format(quotaDateLayout)
}

// rollover resets the counter on a new day. Must be called with q.mu held.
func (q *DailyQuota) rollover() bool {
	today := q.today()
	if q.state.Date == today {
		return false
	}
	q.state.Date = today
	q.state.Used = 0
	return true
}

func (q *DailyQuota) notify(s QuotaState) {
	if q.onChange != nil {
		q.onChange(s)
	}
}

// Restore seeds the quota from persisted state. State from an earlier day is
// discarded except for the device id.
func (q *DailyQuota) Restore(s QuotaState) {
	q.mu.Lock()
	if s.DeviceID != "" {
		q.state.DeviceID = s.DeviceID
	}
	if s.DailyLimit > 0 {
		q.state.DailyLimit = s.DailyLimit
	}
	q.state.Date = s.Date
	q.state.Used = s.Used
	if q.state.Used > q.state.DailyLimit {
		q.state.Used = q.state.DailyLimit
	}
	if q.state.Used < 0 {
		q.state.Used = 0
	}
	q.rollover()
	q.mu.Unlock()
}

// IsAvailable reports whether another trial call may start.
func (q *DailyQuota) IsAvailable() bool {
	q.mu.Lock()
	changed := q.rollover()
	ok := q.state.Used+q.pending < q.state.DailyLimit
	s := q.state
	q.mu.Unlock()

	if changed {
		q.notify(s)
	}
	return ok
}

// Remaining returns how many calls are left today.
func (q *DailyQuota) Remaining() int {
	q.mu.Lock()
	q.rollover()
	n := q.state.DailyLimit - q.state.Used
	q.mu.Unlock()

	if n < 0 {
		return 0
	}
	return n
}

// DailyLimit returns the configured daily limit.
func (q *DailyQuota) DailyLimit() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.DailyLimit
}

// DeviceID returns the id sent with trial requests.
func (q *DailyQuota) DeviceID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.DeviceID
}

// State returns a copy of the current state.
func (q *DailyQuota) State() QuotaState {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.state
}

// Consume counts one completed call. It returns ErrQuotaExhausted when the
// limit is already reached.
func (q *DailyQuota) Consume() error {
	r, err := q.reserve()
	if err != nil {
		return err
	}
	r.commit()
	return nil
}

// reservation is a slot held by an in-flight call.
type reservation struct {
	q    *DailyQuota
	done bool
}

func (q *DailyQuota) reserve() (*reservation, error) {
	q.mu.Lock()
	changed := q.rollover()
	if q.state.Used+q.pending >= q.state.DailyLimit {
		s := q.state
		q.mu.Unlock()
		if changed {
			q.notify(s)
		}
		return nil, ErrQuotaExhausted
	}
	q.pending++
	s := q.state
	q.mu.Unlock()

	if changed {
		q.notify(s)
	}
	return &reservation{q: q}, nil
}

// commit turns the reservation into a used call.
func (r *reservation) commit() {
	if r.done {
		return
	}
	r.done = true

	q := r.q
	q.mu.Lock()
	q.pending--
	q.rollover()
	if q.state.Used < q.state.DailyLimit {
		q.state.Used++
	}
	s := q.state
	q.mu.Unlock()

	q.notify(s)
}

// release gives the slot back without counting it.
func (r *reservation) release() {
	if r.done {
		return
	}
	r.done = true

	r.q.mu.Lock()
	r.q.pending--
	r.q.mu.Unlock()
}
