package ratelimit

import (
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// TierLimiter enforces per-minute and per-day request quotas for one
// backend tier using sliding time windows.
//
// Each window is an ordered slice of grant timestamps. The purge, the
// quota check, and the recording of a new grant happen inside a single
// critical section, so no caller ever observes a partially updated
// window.
type TierLimiter struct {
	mu     sync.Mutex
	rpm    int
	rpd    int
	minute []time.Time
	day    []time.Time

	now func() time.Time
}

// NewTierLimiter creates a limiter allowing rpm requests per minute and
// rpd requests per day.
func NewTierLimiter(rpm, rpd int) *TierLimiter {
	return &TierLimiter{
		rpm: rpm,
		rpd: rpd,
		now: time.Now,
	}
}

// Acquire attempts to consume one request slot. It returns true and
// records the grant if both windows are below their limits; otherwise
// it returns false with no side effects.
func (l *TierLimiter) Acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purge(now)

	if len(l.minute) < l.rpm && len(l.day) < l.rpd {
		l.minute = append(l.minute, now)
		l.day = append(l.day, now)
		return true
	}
	return false
}

// WaitTime estimates how long until the next Acquire could succeed.
// It returns 0 when neither window is saturated; otherwise the larger
// of the times until each saturated window's oldest entry ages out.
func (l *TierLimiter) WaitTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purge(now)

	var wait time.Duration
	if len(l.minute) >= l.rpm && len(l.minute) > 0 {
		if w := minuteWindow - now.Sub(l.minute[0]); w > wait {
			wait = w
		}
	}
	if len(l.day) >= l.rpd && len(l.day) > 0 {
		if w := dayWindow - now.Sub(l.day[0]); w > wait {
			wait = w
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// purge drops timestamps that have aged out of their windows.
// Caller must hold l.mu.
func (l *TierLimiter) purge(now time.Time) {
	for len(l.minute) > 0 && now.Sub(l.minute[0]) >= minuteWindow {
		l.minute = l.minute[1:]
	}
	for len(l.day) > 0 && now.Sub(l.day[0]) >= dayWindow {
		l.day = l.day[1:]
	}
}
