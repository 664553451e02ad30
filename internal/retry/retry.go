package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts     = 5
	DefaultInitialInterval = 1 * time.Second
	DefaultMaxInterval     = 10 * time.Second
	DefaultMultiplier      = 2.0
)

// Policy - когда и как часто повторять
type Policy struct {
	MaxAttempts     int
	MaxElapsed      time.Duration // 0 = без ограничения по времени
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultPolicy caps the whole retry sequence at timeout.
func DefaultPolicy(timeout time.Duration) Policy {
	return Policy{
		MaxAttempts:     DefaultMaxAttempts,
		MaxElapsed:      timeout,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
		Multiplier:      DefaultMultiplier,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultInitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	return p
}

// Hook is called before every sleep between attempts.
type Hook func(op string, attempt int, delay time.Duration, err error)

type Retrier struct {
	policy   Policy
	logger   *zap.Logger
	onRetry  Hook
	classify func(error) bool
}

type Option func(*Retrier)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithHook(h Hook) Option {
	return func(r *Retrier) {
		r.onRetry = h
	}
}

// WithClassifier replaces IsTransient as the retry predicate.
func WithClassifier(fn func(error) bool) Option {
	return func(r *Retrier) {
		if fn != nil {
			r.classify = fn
		}
	}
}

// RetryAll retries every error except context cancellation.
func RetryAll(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func New(policy Policy, opts ...Option) *Retrier {
	r := &Retrier{
		policy:   policy.withDefaults(),
		logger:   zap.NewNop(),
		classify: IsTransient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrier) Policy() Policy { return r.policy }

// Do runs fn until it succeeds, fails with a non-retryable error or the
// policy is exhausted. The last error is returned as is.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !r.classify(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		r.logger.Warn("retrying after transient error",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if r.onRetry != nil {
			r.onRetry(op, attempt, delay, err)
		}
	}

	return backoff.RetryNotify(operation, r.newBackOff(ctx), notify)
}

func (r *Retrier) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.Multiplier = r.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = r.policy.MaxElapsed
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxAttempts-1)), ctx)
}

// IsTransient reports whether err (or anything it wraps) says it is worth
// retrying.
func IsTransient(err error) bool {
	var t interface{ Transient() bool }
	if errors.As(err, &t) {
		return t.Transient()
	}
	return false
}
