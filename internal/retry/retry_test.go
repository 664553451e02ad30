package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type flakyError struct{ transient bool }

func (e *flakyError) Error() string   { return "flaky" }
func (e *flakyError) Transient() bool { return e.transient }

var errClassified = errors.New("classified failure")

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"no failures", 0, 5, 1, false},
		{"two failures", 2, 5, 3, false},
		{"four failures", 4, 5, 5, false},
		{"exhausted", 5, 5, 5, true},
		{"exhausted early", 10, 3, 3, true},
		{"single attempt", 1, 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(fastPolicy(tt.attempts), WithLogger(zap.NewNop()))
			transient := &flakyError{transient: true}

			calls := 0
			err := r.Do(context.Background(), "test", func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return transient
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr {
				if err != transient {
					t.Errorf("Do() error = %v, want the last transient error unchanged", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Do() unexpected error = %v", err)
			}
		})
	}
}

func TestRetrier_ClassifiedErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errClassified},
		{"non-transient typed error", &flakyError{transient: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(fastPolicy(5))

			calls := 0
			err := r.Do(context.Background(), "test", func(ctx context.Context) error {
				calls++
				return tt.err
			})

			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if err != tt.err {
				t.Errorf("Do() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestRetrier_HookSeesEveryRetry(t *testing.T) {
	var attempts []int
	r := New(fastPolicy(4), WithHook(func(op string, attempt int, delay time.Duration, err error) {
		if op != "search" {
			t.Errorf("op = %q, want search", op)
		}
		attempts = append(attempts, attempt)
	}))

	_ = r.Do(context.Background(), "search", func(ctx context.Context) error {
		return &flakyError{transient: true}
	})

	want := []int{1, 2, 3}
	if len(attempts) != len(want) {
		t.Fatalf("hook called %d times, want %d", len(attempts), len(want))
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Errorf("attempts[%d] = %d, want %d", i, attempts[i], want[i])
		}
	}
}

func TestRetrier_ContextCancelled(t *testing.T) {
	r := New(Policy{MaxAttempts: 5, InitialInterval: time.Hour, MaxInterval: time.Hour, Multiplier: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	err := r.Do(ctx, "test", func(ctx context.Context) error {
		calls++
		return &flakyError{transient: true}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want context.DeadlineExceeded", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetrier_RetryAllClassifier(t *testing.T) {
	r := New(fastPolicy(3), WithClassifier(RetryAll))

	calls := 0
	err := r.Do(context.Background(), "expansions", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errClassified
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"transient", &flakyError{transient: true}, true},
		{"wrapped transient", errors.Join(errors.New("ctx"), &flakyError{transient: true}), true},
		{"non-transient", &flakyError{transient: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy(30 * time.Second)
	if p.MaxAttempts != 5 || p.InitialInterval != time.Second || p.MaxInterval != 10*time.Second || p.MaxElapsed != 30*time.Second {
		t.Errorf("DefaultPolicy() = %+v", p)
	}
}
