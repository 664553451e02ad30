package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestWindow(limit int, period time.Duration, clock *fakeClock) *Window {
	w := NewWindow(limit, period)
	w.now = clock.Now
	return w
}

func TestWindow_Allow(t *testing.T) {
	w := NewWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !w.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if w.Allow() {
		t.Error("Fourth request should be blocked due to rate limit")
	}
}

func TestWindow_ZeroLimitAlwaysDenies(t *testing.T) {
	w := NewWindow(0, time.Minute)

	if w.Allow() {
		t.Error("Allow() = true for zero limit")
	}
	if d := w.Delay(); d <= 0 {
		t.Errorf("Delay() = %v, want > 0 for zero limit", d)
	}
}

func TestWindow_DelayUntilOldestExpires(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(2, time.Minute, clock)

	w.Allow()
	clock.Advance(10 * time.Second)
	w.Allow()
	clock.Advance(10 * time.Second)

	if w.Allow() {
		t.Fatal("third call inside the window should be denied")
	}

	if d := w.Delay(); d != 40*time.Second {
		t.Fatalf("Delay() = %v, want 40s", d)
	}

	clock.Advance(40 * time.Second)
	if d := w.Delay(); d != 0 {
		t.Errorf("Delay() after wait = %v, want 0", d)
	}
	if !w.Allow() {
		t.Error("Allow() should succeed right after sleeping Delay()")
	}
	if w.Allow() {
		t.Error("second slot is still held by the call made at +10s")
	}
}

func TestWindow_NeverExceedsLimitInTrailingPeriod(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(5, time.Minute, clock)

	var granted []time.Time
	for i := 0; i < 200; i++ {
		if w.Allow() {
			granted = append(granted, clock.Now())
		}
		clock.Advance(7 * time.Second)
	}

	for i, start := range granted {
		cnt := 0
		for _, ts := range granted[i:] {
			if ts.Sub(start) < time.Minute {
				cnt++
			}
		}
		if cnt > 5 {
			t.Fatalf("%d calls within one minute starting at %v, want <= 5", cnt, start)
		}
	}
}

func TestWindow_RemainingRequests(t *testing.T) {
	w := NewWindow(5, time.Minute)

	if remaining := w.RemainingRequests(); remaining != 5 {
		t.Errorf("RemainingRequests() = %d, want 5", remaining)
	}

	w.Allow()
	w.Allow()
	w.Allow()

	if remaining := w.RemainingRequests(); remaining != 2 {
		t.Errorf("RemainingRequests() = %d, want 2", remaining)
	}

	w.Allow()
	w.Allow()

	if remaining := w.RemainingRequests(); remaining != 0 {
		t.Errorf("RemainingRequests() = %d, want 0", remaining)
	}
}

func TestWindow_ResetTime(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(1, time.Minute, clock)

	before := clock.Now()
	w.Allow()

	if got, want := w.ResetTime(), before.Add(time.Minute); !got.Equal(want) {
		t.Errorf("ResetTime() = %v, want %v", got, want)
	}
}

func TestWindow_Concurrent(t *testing.T) {
	w := NewWindow(100, time.Minute)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if w.Allow() {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 100 {
		t.Errorf("allowed = %d, want 100", got)
	}
	if remaining := w.RemainingRequests(); remaining != 0 {
		t.Errorf("RemainingRequests() = %d, want 0 after concurrent access", remaining)
	}
}

func TestWindow_Wait(t *testing.T) {
	w := NewWindow(1, 60*time.Millisecond)
	w.Allow()

	start := time.Now()
	if err := w.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait() returned after %v, want >= 50ms", elapsed)
	}
}

func TestWindow_WaitContextCancellation(t *testing.T) {
	w := NewWindow(1, time.Hour)
	w.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := w.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestWindow_WaitConcurrentCallers(t *testing.T) {
	w := NewWindow(2, 80*time.Millisecond)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var grants []time.Time
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Wait(context.Background()); err != nil {
				t.Errorf("Wait() error = %v", err)
				return
			}
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(grants) != 6 {
		t.Fatalf("got %d grants, want 6", len(grants))
	}
	// 6 вызовов при лимите 2 - минимум два полных окна ожидания
	first, last := grants[0], grants[0]
	for _, g := range grants {
		if g.Before(first) {
			first = g
		}
		if g.After(last) {
			last = g
		}
	}
	if spread := last.Sub(first); spread < 140*time.Millisecond {
		t.Errorf("grants spread over %v, want >= 140ms", spread)
	}
}
