package ratelimit

import (
	"context"
	"sync"
	"time"
)

// defaultPollInterval - пауза, если слот освободился, но его забрал другой вызов
const defaultPollInterval = 50 * time.Millisecond

// Window - sliding window на одну квоту (limit вызовов за period).
//
// Timestamps come from time.Now and carry the monotonic clock reading, so
// wall-clock jumps never free a slot early.
type Window struct {
	mu     sync.Mutex
	calls  []time.Time
	limit  int
	period time.Duration

	now  func() time.Time
	poll time.Duration
}

func NewWindow(limit int, period time.Duration) *Window {
	return &Window{
		limit:  limit,
		period: period,
		now:    time.Now,
		poll:   defaultPollInterval,
	}
}

func (w *Window) Limit() int { return w.limit }

func (w *Window) Period() time.Duration { return w.period }

// Allow records a call and returns true if it fits into the window.
func (w *Window) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if !w.allowLocked(now) {
		return false
	}
	w.recordLocked(now)
	return true
}

// Delay returns how long until Allow could succeed. Zero means now.
func (w *Window) Delay() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.delayLocked(w.now())
}

// Wait blocks until the window grants a slot or ctx is done.
func (w *Window) Wait(ctx context.Context) error {
	for {
		d := w.Delay()
		if d == 0 && w.Allow() {
			return nil
		}
		if d == 0 {
			d = w.poll
		}

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (w *Window) RemainingRequests() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(w.now())
	if rem := w.limit - len(w.calls); rem > 0 {
		return rem
	}
	return 0
}

// ResetTime - когда освободится ближайший слот (приблизительно)
func (w *Window) ResetTime() time.Time {
	now := w.now()
	return now.Add(w.Delay())
}

func (w *Window) allowLocked(now time.Time) bool {
	if w.limit <= 0 {
		return false
	}
	w.pruneLocked(now)
	return len(w.calls) < w.limit
}

func (w *Window) recordLocked(now time.Time) {
	w.calls = append(w.calls, now)
}

func (w *Window) delayLocked(now time.Time) time.Duration {
	if w.limit <= 0 {
		return w.period
	}
	w.pruneLocked(now)
	if len(w.calls) < w.limit {
		return 0
	}

	// calls отсортированы, ждём пока истечёт тот, что держит лишний слот
	oldest := w.calls[len(w.calls)-w.limit]
	if d := oldest.Add(w.period).Sub(now); d > 0 {
		return d
	}
	return 0
}

// pruneLocked drops timestamps that are at least one period old.
func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.period)

	i := 0
	for i < len(w.calls) && !w.calls[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	fresh := w.calls[:0] // reuse underlying array
	fresh = append(fresh, w.calls[i:]...)
	w.calls = fresh
}
