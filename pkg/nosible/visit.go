package nosible

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/llm"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
)

const (
	msgNotFetched   = "Sorry, the URL could not be fetched."
	msgIndexed      = "The URL is in the system."
	msgNotIndexed   = "The URL is nowhere to be found."
	msgNotRetrieved = "The URL could not be retrieved."
)

// Visit fetches and parses a page.
func (c *Client) Visit(ctx context.Context, req VisitRequest) (*WebPageData, error) {
	if req.URL == "" {
		return nil, ErrMissingURL
	}

	var body []byte
	err := c.call(ctx, ratelimit.EndpointVisit, "visit", func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, "visit", req)
		if err != nil {
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error("failed to parse visit response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(data) == 1 && messageOf(data) == msgNotFetched {
		return nil, fmt.Errorf("%w: %s", ErrURLNotFound, req.URL)
	}

	raw, ok := data["response"]
	if !ok {
		c.logger.Error("no response key in visit response", zap.ByteString("body", body))
		return nil, ErrNoResponse
	}

	var page WebPageData
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &page, nil
}

// Version returns the API version document as indented JSON with sorted keys.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.document(ctx, "version", struct{}{})
}

// Preflight returns how the service would crawl url, as indented JSON.
func (c *Client) Preflight(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrMissingURL
	}
	return c.document(ctx, "preflight", map[string]string{"url": url})
}

// Indexed reports whether url is in the index. Any failure counts as not
// indexed.
func (c *Client) Indexed(ctx context.Context, url string) bool {
	var msg string
	err := c.call(ctx, "", "indexed", func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, "indexed", map[string]string{"url": url})
		if err != nil {
			return err
		}
		if err := api.Check(resp); err != nil {
			return err
		}
		var data map[string]json.RawMessage
		if err := resp.JSON(&data); err != nil {
			return err
		}
		msg = messageOf(data)
		return nil
	})
	if err != nil {
		c.logger.Debug("indexed check failed", zap.String("url", url), zap.Error(err))
		return false
	}

	switch msg {
	case msgIndexed:
		return true
	case msgNotIndexed, msgNotRetrieved:
		return false
	}
	c.logger.Warn("unexpected indexed message", zap.String("message", msg))
	return false
}

// Sentiment scores the result content in [-1, 1] using the LLM.
func (c *Client) Sentiment(ctx context.Context, r Result) (float64, error) {
	if r.Content == "" {
		return 0, ErrEmptyContent
	}
	start := time.Now()
	score, err := llm.Sentiment(ctx, c.llm, r.Content)
	c.metrics.RecordLLMRequest("sentiment", llmStatus(err), time.Since(start))
	return score, err
}

func (c *Client) document(ctx context.Context, endpoint string, payload any) (string, error) {
	var body []byte
	err := c.call(ctx, "", endpoint, func(ctx context.Context) error {
		resp, err := c.api.Post(ctx, endpoint, payload)
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
		return "", err
	}

	// map keys come out sorted
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", endpoint, err)
	}
	return string(out), nil
}

func messageOf(data map[string]json.RawMessage) string {
	var msg string
	if raw, ok := data["message"]; ok {
		json.Unmarshal(raw, &msg)
	}
	return msg
}
