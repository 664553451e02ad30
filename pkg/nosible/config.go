package nosible

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/retry"
)

const (
	DefaultTimeout      = api.DefaultTimeout
	DefaultRetries      = retry.DefaultMaxAttempts
	DefaultConcurrency  = 10
	DefaultCacheTTL     = time.Hour
	DefaultPollAttempts = 100
	DefaultPollInterval = 10 * time.Second
)

type Config struct {
	// APIKey has the form "<plan>|<token>"; the plan selects the rate limits.
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// Retries is the maximum number of attempts per request.
	// RetryPolicy, when set, replaces it.
	Retries     int
	RetryPolicy *RetryPolicy

	// Concurrency bounds requests in flight.
	Concurrency int

	// Filters are applied to every search that leaves them unset.
	Filters Params

	// LLM is used for expansions and sentiment. When nil and LLMAPIKey is set
	// an OpenRouter client is created.
	LLM        LLMClient
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Cache stores fast search responses. Nil disables caching.
	Cache    Cache
	CacheTTL time.Duration

	// Registerer receives the client metrics. Nil keeps them private.
	Registerer prometheus.Registerer

	HTTPClient *http.Client

	// bulk search download polling
	PollAttempts int
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = api.DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = DefaultPollAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

func (c Config) retryPolicy() retry.Policy {
	if c.RetryPolicy != nil {
		return *c.RetryPolicy
	}
	p := retry.DefaultPolicy(c.Timeout)
	p.MaxAttempts = c.Retries
	return p
}
