package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAcquireWithinQuota(t *testing.T) {
	l := NewTierLimiter(3, 30)

	for i := 0; i < 3; i++ {
		if !l.Acquire() {
			t.Fatalf("acquire %d should be granted", i+1)
		}
	}
	if l.Acquire() {
		t.Error("fourth acquire within the same minute should be denied")
	}

	wait := l.WaitTime()
	if wait <= 0 {
		t.Errorf("expected positive wait time, got %v", wait)
	}
	if wait > time.Minute {
		t.Errorf("wait time %v exceeds the minute window", wait)
	}
}

func TestWaitTimeUnsaturated(t *testing.T) {
	l := NewTierLimiter(3, 30)
	if w := l.WaitTime(); w != 0 {
		t.Errorf("expected zero wait on fresh limiter, got %v", w)
	}

	l.Acquire()
	if w := l.WaitTime(); w != 0 {
		t.Errorf("expected zero wait below quota, got %v", w)
	}
}

func TestMinuteWindowSlides(t *testing.T) {
	now := time.Now()
	l := NewTierLimiter(2, 100)
	l.now = func() time.Time { return now }

	if !l.Acquire() || !l.Acquire() {
		t.Fatal("initial acquires should be granted")
	}
	if l.Acquire() {
		t.Fatal("expected denial at rpm")
	}

	// Advance past the minute window; the old grants age out.
	now = now.Add(61 * time.Second)
	if !l.Acquire() {
		t.Error("expected grant after minute window slid")
	}
}

func TestDayWindowSaturation(t *testing.T) {
	now := time.Now()
	l := NewTierLimiter(100, 2)
	l.now = func() time.Time { return now }

	l.Acquire()
	now = now.Add(2 * time.Minute)
	l.Acquire()

	// Minute window has capacity but the day window is full.
	now = now.Add(2 * time.Minute)
	if l.Acquire() {
		t.Fatal("expected denial at rpd")
	}

	wait := l.WaitTime()
	want := dayWindow - 4*time.Minute
	if wait != want {
		t.Errorf("expected wait %v until oldest day entry ages out, got %v", want, wait)
	}

	now = now.Add(dayWindow)
	if !l.Acquire() {
		t.Error("expected grant after day window slid")
	}
}

func TestDenialHasNoSideEffects(t *testing.T) {
	now := time.Now()
	l := NewTierLimiter(1, 10)
	l.now = func() time.Time { return now }

	l.Acquire()
	for i := 0; i < 5; i++ {
		if l.Acquire() {
			t.Fatal("expected denial")
		}
	}

	// Denied calls must not have recorded timestamps.
	now = now.Add(61 * time.Second)
	if !l.Acquire() {
		t.Error("expected grant once the single recorded entry aged out")
	}
}

func TestWindowInvariantUnderSequences(t *testing.T) {
	now := time.Now()
	l := NewTierLimiter(3, 10)
	l.now = func() time.Time { return now }

	granted := 0
	for i := 0; i < 50; i++ {
		if l.Acquire() {
			granted++
		}
		now = now.Add(7 * time.Second)

		l.mu.Lock()
		if len(l.minute) > 3 {
			l.mu.Unlock()
			t.Fatalf("minute window holds %d > rpm entries", len(l.minute))
		}
		if len(l.day) > 10 {
			l.mu.Unlock()
			t.Fatalf("day window holds %d > rpd entries", len(l.day))
		}
		l.mu.Unlock()
	}
	if granted == 0 {
		t.Fatal("expected some grants across the sequence")
	}
}

func TestConcurrentAcquire(t *testing.T) {
	l := NewTierLimiter(5, 100)

	var wg sync.WaitGroup
	grants := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Acquire() {
				grants <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(grants)

	n := 0
	for range grants {
		n++
	}
	if n != 5 {
		t.Errorf("expected exactly 5 grants under contention, got %d", n)
	}
}
