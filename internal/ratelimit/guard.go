package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// WaitObserver receives how long a call waited for quota.
type WaitObserver func(endpoint Endpoint, waited time.Duration)

// Guard gates operations on the limiters registered for their endpoint.
type Guard struct {
	limiters map[Endpoint][]*Limiter
	logger   *zap.Logger
	observe  WaitObserver
}

type GuardOption func(*Guard)

func WithLogger(logger *zap.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithWaitObserver(fn WaitObserver) GuardOption {
	return func(g *Guard) {
		g.observe = fn
	}
}

func NewGuard(limiters map[Endpoint][]*Limiter, opts ...GuardOption) *Guard {
	g := &Guard{
		limiters: make(map[Endpoint][]*Limiter, len(limiters)),
		logger:   zap.NewNop(),
	}
	for ep, ls := range limiters {
		g.limiters[ep] = append([]*Limiter(nil), ls...)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGuardForPlan builds one limiter per endpoint from the plan quotas.
func NewGuardForPlan(plan Plan, opts ...GuardOption) (*Guard, error) {
	quotas, err := Quotas(plan)
	if err != nil {
		return nil, err
	}

	limiters := make(map[Endpoint][]*Limiter, len(quotas))
	for ep, qs := range quotas {
		limiters[ep] = []*Limiter{NewLimiter(string(plan)+"/"+string(ep), qs...)}
	}
	return NewGuard(limiters, opts...), nil
}

// Limiters returns the limiters registered for endpoint.
func (g *Guard) Limiters(endpoint Endpoint) []*Limiter {
	return append([]*Limiter(nil), g.limiters[endpoint]...)
}

// Acquire waits on every limiter of endpoint in turn.
func (g *Guard) Acquire(ctx context.Context, endpoint Endpoint) error {
	limiters, ok := g.limiters[endpoint]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEndpoint, endpoint)
	}

	start := time.Now()
	for _, l := range limiters {
		if err := l.Acquire(ctx); err != nil {
			return fmt.Errorf("acquire %s: %w", l.Name(), err)
		}
	}

	waited := time.Since(start)
	if waited > time.Millisecond {
		g.logger.Debug("waited for rate limit",
			zap.String("endpoint", string(endpoint)),
			zap.Duration("waited", waited),
		)
	}
	if g.observe != nil {
		g.observe(endpoint, waited)
	}
	return nil
}

// Do runs fn once quota for endpoint is available.
func (g *Guard) Do(ctx context.Context, endpoint Endpoint, fn func(context.Context) error) error {
	if err := g.Acquire(ctx, endpoint); err != nil {
		return err
	}
	return fn(ctx)
}
