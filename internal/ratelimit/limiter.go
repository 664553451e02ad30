package ratelimit

import (
	"context"
	"time"
)

// Limiter combines several windows (per minute, per day, ...) for one
// endpoint. A call passes only when every window grants it.
type Limiter struct {
	name    string
	windows []*Window
	poll    time.Duration
}

func NewLimiter(name string, quotas ...Quota) *Limiter {
	windows := make([]*Window, 0, len(quotas))
	for _, q := range quotas {
		windows = append(windows, NewWindow(q.Calls, q.Period))
	}
	return NewLimiterFromWindows(name, windows...)
}

// NewLimiterFromWindows wraps existing windows. The windows must not be shared
// with another limiter.
func NewLimiterFromWindows(name string, windows ...*Window) *Limiter {
	return &Limiter{
		name:    name,
		windows: windows,
		poll:    defaultPollInterval,
	}
}

func (l *Limiter) Name() string { return l.name }

func (l *Limiter) Windows() []*Window {
	out := make([]*Window, len(l.windows))
	copy(out, l.windows)
	return out
}

// TryAcquire checks all windows first and records the call only if every
// window has room, so a denied attempt consumes no quota.
func (l *Limiter) TryAcquire() bool {
	ok, _ := l.tryAcquire()
	return ok
}

// Acquire blocks until all windows grant a slot for this call at once.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		ok, wait := l.tryAcquire()
		if ok {
			return nil
		}
		if wait <= 0 {
			wait = l.poll
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Delay is the longest wait among the windows.
func (l *Limiter) Delay() time.Duration {
	var longest time.Duration
	for _, w := range l.windows {
		if d := w.Delay(); d > longest {
			longest = d
		}
	}
	return longest
}

// tryAcquire держит локи всех окон сразу: check-all, потом commit-all.
// Окна лочатся всегда в одном порядке, deadlock'а нет.
func (l *Limiter) tryAcquire() (bool, time.Duration) {
	for _, w := range l.windows {
		w.mu.Lock()
	}
	defer func() {
		for i := len(l.windows) - 1; i >= 0; i-- {
			l.windows[i].mu.Unlock()
		}
	}()

	var wait time.Duration
	allowed := true
	stamps := make([]time.Time, len(l.windows))
	for i, w := range l.windows {
		now := w.now()
		stamps[i] = now
		if !w.allowLocked(now) {
			allowed = false
			if d := w.delayLocked(now); d > wait {
				wait = d
			}
		}
	}
	if !allowed {
		return false, wait
	}

	for i, w := range l.windows {
		w.recordLocked(stamps[i])
	}
	return true, 0
}
