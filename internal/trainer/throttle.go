package trainer

import (
	"sync"
	"time"
)

// throttle limits how often progress is reported. Unlike a sleep-based
// limiter it never blocks the training loop; ready simply reports whether
// the interval has elapsed since the last report.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
	now  func() time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{interval: interval, now: time.Now}
}

func (t *throttle) ready() bool {
	if t == nil || t.interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.interval)
	return true
}
