package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/sona-ai/sona/pkg/models"
)

func newDual(primaryRPM, secondaryRPM int) *DualTierLimiter {
	return NewDualTierLimiter(map[models.Tier]models.TierQuota{
		models.TierPrimary:   {RPM: primaryRPM, RPD: 1000},
		models.TierSecondary: {RPM: secondaryRPM, RPD: 1000},
	}, 0)
}

func TestTryAcquireUsesActiveTier(t *testing.T) {
	d := newDual(2, 2)

	tier, ok := d.TryAcquire()
	if !ok || tier != models.TierPrimary {
		t.Fatalf("expected grant on primary, got %q ok=%v", tier, ok)
	}
	if d.Current() != models.TierPrimary {
		t.Error("active tier should remain primary after a primary grant")
	}
}

func TestFallbackSwitchesTier(t *testing.T) {
	d := newDual(1, 2)

	d.TryAcquire() // exhausts primary

	tier, ok := d.TryAcquire()
	if !ok || tier != models.TierSecondary {
		t.Fatalf("expected fallback grant on secondary, got %q ok=%v", tier, ok)
	}
	if d.Current() != models.TierSecondary {
		t.Error("active tier should switch to secondary after fallback grant")
	}
}

func TestBothTiersExhausted(t *testing.T) {
	d := newDual(1, 1)

	d.TryAcquire()
	d.TryAcquire()

	if _, ok := d.TryAcquire(); ok {
		t.Error("expected denial when both tiers are exhausted")
	}
	// Denial never moves the active tier.
	if d.Current() != models.TierSecondary {
		t.Errorf("active tier moved on denial: %q", d.Current())
	}
}

func TestSwitchBackRequiresReverseCondition(t *testing.T) {
	now := time.Now()
	d := newDual(1, 1)
	for _, l := range d.limiters {
		l.now = func() time.Time { return now }
	}

	d.TryAcquire() // primary
	d.TryAcquire() // falls back, secondary active

	// Primary regains capacity but secondary stays active until it is
	// itself denied.
	now = now.Add(61 * time.Second)
	tier, ok := d.TryAcquire()
	if !ok || tier != models.TierSecondary {
		t.Fatalf("expected grant on still-active secondary, got %q ok=%v", tier, ok)
	}

	tier, ok = d.TryAcquire()
	if !ok || tier != models.TierPrimary {
		t.Fatalf("expected switch back to primary, got %q ok=%v", tier, ok)
	}
	if d.Current() != models.TierPrimary {
		t.Error("active tier should be primary again")
	}
}

func TestWaitForToken(t *testing.T) {
	d := newDual(1, 1)
	d.poll = 5 * time.Millisecond

	ctx := context.Background()
	if _, ok := d.WaitForToken(ctx, 50*time.Millisecond); !ok {
		t.Fatal("expected immediate grant")
	}
	d.WaitForToken(ctx, 50*time.Millisecond) // exhausts secondary

	start := time.Now()
	if _, ok := d.WaitForToken(ctx, 40*time.Millisecond); ok {
		t.Fatal("expected timeout with both tiers exhausted")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("returned before timeout elapsed: %v", elapsed)
	}
}

func TestWaitForTokenCancelled(t *testing.T) {
	d := newDual(1, 1)
	d.poll = 5 * time.Millisecond
	d.TryAcquire()
	d.TryAcquire()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := d.WaitForToken(ctx, time.Minute); ok {
		t.Error("expected failure on cancelled context")
	}
}

func TestWaitTimesPerTier(t *testing.T) {
	d := newDual(1, 5)
	d.TryAcquire()

	waits := d.WaitTimes()
	if len(waits) != 2 {
		t.Fatalf("expected wait entries for both tiers, got %d", len(waits))
	}
	if waits[models.TierPrimary] <= 0 {
		t.Error("saturated primary should report a positive wait")
	}
	if waits[models.TierSecondary] != 0 {
		t.Error("unsaturated secondary should report zero wait")
	}
}
