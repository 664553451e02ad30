package nosible

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/cache"
	"github.com/kitbuilder587/nosible-go/internal/filter"
	"github.com/kitbuilder587/nosible-go/internal/llm"
	"github.com/kitbuilder587/nosible-go/internal/llm/openrouter"
	"github.com/kitbuilder587/nosible-go/internal/metrics"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
	"github.com/kitbuilder587/nosible-go/internal/retry"
)

// Client is safe for concurrent use. Close it to release connections, the
// cache and the filter validator.
type Client struct {
	cfg  Config
	plan ratelimit.Plan

	api       *api.Client
	guard     *ratelimit.Guard
	retrier   *retry.Retrier
	pool      *semaphore.Weighted
	validator *filter.SQLiteValidator
	filters   *filter.Builder
	llm       llm.Client
	expander  *llm.Expander
	cache     cache.Cache
	metrics   *metrics.Metrics
	logger    *zap.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	plan, err := ratelimit.PlanFromAPIKey(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	m := metrics.New(cfg.Registerer)

	guard, err := ratelimit.NewGuardForPlan(plan,
		ratelimit.WithLogger(logger),
		ratelimit.WithWaitObserver(func(ep ratelimit.Endpoint, waited time.Duration) {
			m.RecordRateLimitWait(string(ep), waited)
		}),
	)
	if err != nil {
		return nil, err
	}

	validator, err := filter.NewSQLiteValidator(context.Background())
	if err != nil {
		return nil, fmt.Errorf("create filter validator: %w", err)
	}

	policy := cfg.retryPolicy()

	var lc llm.Client
	switch {
	case cfg.LLM != nil:
		lc = cfg.LLM
	case cfg.LLMAPIKey != "":
		lc = openrouter.New(openrouter.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		}, logger)
	}

	c := &Client{
		cfg:  cfg,
		plan: plan,
		api: api.New(api.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		}, logger),
		guard: guard,
		retrier: retry.New(policy,
			retry.WithLogger(logger),
			retry.WithHook(func(op string, _ int, _ time.Duration, _ error) {
				m.RecordRetry(op)
			}),
		),
		pool:      semaphore.NewWeighted(int64(cfg.Concurrency)),
		validator: validator,
		filters:   filter.NewBuilder(validator, logger),
		llm:       lc,
		expander:  llm.NewExpander(lc, policy, logger),
		cache:     cfg.Cache,
		metrics:   m,
		logger:    logger,
	}

	logger.Debug("client created",
		zap.String("plan", plan.DisplayName()),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Int("retries", policy.MaxAttempts),
	)
	return c, nil
}

// Plan returns the plan the API key belongs to.
func (c *Client) Plan() Plan { return c.plan }

// RateLimits renders the limits of every plan with the current one marked.
func (c *Client) RateLimits() string {
	return ratelimit.Table(c.plan)
}

// Close is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.api.CloseIdleConnections()

		var errs []error
		if c.cache != nil {
			if err := c.cache.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close cache: %w", err))
			}
		}
		if err := c.validator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close validator: %w", err))
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// call runs fn holding a worker slot. The endpoint quota is taken once, then
// fn runs under the retry policy, so retries do not consume quota and the
// retry clock starts after the quota wait. An empty endpoint is not rate
// limited.
func (c *Client) call(ctx context.Context, endpoint ratelimit.Endpoint, op string, fn func(context.Context) error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.pool.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.pool.Release(1)

	c.metrics.IncRequestsInFlight()
	defer c.metrics.DecRequestsInFlight()

	attempts := func(ctx context.Context) error {
		return c.retrier.Do(ctx, op, fn)
	}

	start := time.Now()
	var err error
	if endpoint == "" {
		err = attempts(ctx)
	} else {
		err = c.guard.Do(ctx, endpoint, attempts)
	}
	c.metrics.RecordRequest(op, statusLabel(err), time.Since(start))
	return err
}

func statusLabel(err error) string {
	var se *api.StatusError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &se):
		return fmt.Sprintf("%d", se.StatusCode)
	case retry.IsTransient(err):
		return "transport_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
