package nosible

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/cache"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
	"github.com/kitbuilder587/nosible-go/internal/search"
)

const (
	MaxResults = 100
	// the fast endpoint answers at least this many
	minRequested = 10
)

type searchPayload struct {
	Question    string   `json:"question"`
	Expansions  []string `json:"expansions"`
	SQLFilter   string   `json:"sql_filter"`
	NResults    int      `json:"n_results"`
	NProbes     int      `json:"n_probes"`
	NContextify int      `json:"n_contextify"`
	Algorithm   string   `json:"algorithm"`
}

type resultsEnvelope struct {
	Response search.ResultSet `json:"response"`
}

// Search runs one fast search. It returns at most s.NResults results (100 by
// default, 100 at most).
func (c *Client) Search(ctx context.Context, s Search) (ResultSet, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.WithDefaults()
	if s.NResults < 0 {
		return nil, ErrInvalidNResults
	}
	if s.NResults > MaxResults {
		return nil, ErrTooManyResults
	}
	limit := s.NResults

	payload, err := c.buildPayload(ctx, s)
	if err != nil {
		return nil, err
	}
	payload.NResults = max(limit, minRequested)

	key, err := cache.Key("fast-search", payload)
	if err != nil {
		return nil, err
	}
	if rs, ok := c.cached(ctx, key); ok {
		return rs.Top(limit), nil
	}

	var body []byte
	err = c.call(ctx, ratelimit.EndpointFast, "fast_search", func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, "fast-search", payload)
		if err != nil {
			return err
		}
		if err := api.Check(resp); err != nil {
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs, err := decodeResults(body)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, body)

	c.logger.Debug("search finished",
		zap.String("question", s.Question),
		zap.Int("results", len(rs)),
	)
	return rs.Top(limit), nil
}

// Searches runs every search concurrently. A failed search does not affect
// the others; its error is reported in the matching outcome.
func (c *Client) Searches(ctx context.Context, searches []Search) []SearchOutcome {
	out := make([]SearchOutcome, len(searches))

	var g errgroup.Group
	for i, s := range searches {
		i, s := i, s
		g.Go(func() error {
			rs, err := c.Search(ctx, s)
			if err != nil {
				c.logger.Warn("search failed",
					zap.String("question", s.Question),
					zap.Error(err),
				)
			}
			out[i] = SearchOutcome{Search: s, Results: rs, Err: err}
			return nil
		})
	}
	g.Wait()

	return out
}

// Similar finds documents like r, excluding r itself. base supplies search
// options and filters.
func (c *Client) Similar(ctx context.Context, r Result, base Search) (ResultSet, error) {
	return search.Similar(ctx, c, r, base)
}

// Filter builds the SQL filter Search would send for p merged with the client
// defaults.
func (c *Client) Filter(ctx context.Context, p Params) (string, error) {
	return c.filters.Build(ctx, p.Merge(c.cfg.Filters))
}

// buildPayload merges default filters, builds the SQL filter when missing and
// generates expansions if asked. NResults is copied as is.
func (c *Client) buildPayload(ctx context.Context, s Search) (searchPayload, error) {
	s.Params = s.Params.Merge(c.cfg.Filters)

	sqlFilter := s.SQLFilter
	if sqlFilter == "" {
		var err error
		sqlFilter, err = c.filters.Build(ctx, s.Params)
		if err != nil {
			return searchPayload{}, err
		}
	}

	expansions := s.Expansions
	if s.AutogenerateExpansions {
		var err error
		expansions, err = c.expand(ctx, s.Question)
		if err != nil {
			return searchPayload{}, fmt.Errorf("generate expansions: %w", err)
		}
	}
	if expansions == nil {
		expansions = []string{}
	}

	return searchPayload{
		Question:    s.Question,
		Expansions:  expansions,
		SQLFilter:   sqlFilter,
		NResults:    s.NResults,
		NProbes:     s.NProbes,
		NContextify: s.NContextify,
		Algorithm:   s.Algorithm,
	}, nil
}

func (c *Client) expand(ctx context.Context, question string) ([]string, error) {
	start := time.Now()
	expansions, err := c.expander.Expand(ctx, question)
	c.metrics.RecordLLMRequest("expansions", llmStatus(err), time.Since(start))
	return expansions, err
}

func (c *Client) cached(ctx context.Context, key string) (ResultSet, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("cache get failed", zap.Error(err))
		}
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	rs, err := decodeResults(body)
	if err != nil {
		c.logger.Warn("dropping bad cache entry", zap.String("key", key), zap.Error(err))
		c.cache.Delete(ctx, key)
		c.metrics.RecordCacheMiss()
		return nil, false
	}
	c.metrics.RecordCacheHit()
	return rs, true
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.cfg.CacheTTL); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
}

func decodeResults(body []byte) (ResultSet, error) {
	var env resultsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if env.Response == nil {
		return ResultSet{}, nil
	}
	return env.Response, nil
}

func llmStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
