package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sona-ai/sona/pkg/models"
)

// defaultPollInterval is the granularity of the cooperative wait in
// WaitForToken.
const defaultPollInterval = 100 * time.Millisecond

// DualTierLimiter composes two TierLimiters behind a single admission
// API. Admission is tried on the active tier first; when the active
// tier is exhausted and the other tier grants, the other tier becomes
// active. The active tier never changes under any other condition.
type DualTierLimiter struct {
	mu       sync.Mutex
	current  models.Tier
	limiters map[models.Tier]*TierLimiter
	poll     time.Duration
}

// NewDualTierLimiter creates a dual limiter from per-tier quotas.
// The primary tier starts active. A zero poll interval selects the
// default granularity.
func NewDualTierLimiter(quotas map[models.Tier]models.TierQuota, poll time.Duration) *DualTierLimiter {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	limiters := make(map[models.Tier]*TierLimiter, len(quotas))
	for tier, q := range quotas {
		limiters[tier] = NewTierLimiter(q.RPM, q.RPD)
	}
	return &DualTierLimiter{
		current:  models.TierPrimary,
		limiters: limiters,
		poll:     poll,
	}
}

// Current returns the active tier.
func (d *DualTierLimiter) Current() models.Tier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// TryAcquire attempts admission on the active tier, falling back to the
// other tier. On a fallback grant the active tier switches. It returns
// the granting tier, or false when both tiers are exhausted.
func (d *DualTierLimiter) TryAcquire() (models.Tier, bool) {
	d.mu.Lock()
	cur := d.current
	d.mu.Unlock()

	if d.limiters[cur].Acquire() {
		return cur, true
	}

	other := cur.Other()
	if d.limiters[other].Acquire() {
		d.mu.Lock()
		d.current = other
		d.mu.Unlock()
		return other, true
	}
	return "", false
}

// WaitForToken polls TryAcquire until a grant, the timeout elapses, or
// ctx is cancelled. It returns the granting tier on success.
func (d *DualTierLimiter) WaitForToken(ctx context.Context, timeout time.Duration) (models.Tier, bool) {
	deadline := time.Now().Add(timeout)
	for {
		if tier, ok := d.TryAcquire(); ok {
			return tier, true
		}
		if time.Now().After(deadline) {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(d.poll):
		}
	}
}

// WaitTimes reports each tier's estimated wait, for diagnostic display.
// It does not consult or affect the active-tier selection.
func (d *DualTierLimiter) WaitTimes() map[models.Tier]time.Duration {
	waits := make(map[models.Tier]time.Duration, len(d.limiters))
	for tier, l := range d.limiters {
		waits[tier] = l.WaitTime()
	}
	return waits
}
