package api

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultMinInterval is the minimum time between two submissions.
const DefaultMinInterval = 3 * time.Second

// throttle enforces a minimum interval between request attempts.
type throttle struct {
	clock    clockwork.Clock
	interval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

func newThrottle(clock clockwork.Clock, interval time.Duration) *throttle {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultMinInterval
	}

	return &throttle{clock: clock, interval: interval}
}

// attempt records a request attempt, or fails with ErrRateLimitedLocal when
// the previous attempt was too recent. Rejected attempts are not recorded.
func (t *throttle) attempt() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if !t.lastRequest.IsZero() && now.Sub(t.lastRequest) < t.interval {
		return ErrRateLimitedLocal
	}

	t.lastRequest = now

	return nil
}
