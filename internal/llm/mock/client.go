package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kitbuilder587/nosible-go/internal/llm"
)

type Client struct {
	Response  string
	Responses []string // отдаются по очереди, потом Response
	Error     error
	Delay     time.Duration

	CallCount  int
	LastPrompt string
	AllPrompts []string

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		Response: "0.0",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

// WithResponses scripts consecutive replies.
func (c *Client) WithResponses(responses ...string) *Client {
	c.Responses = responses
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastPrompt = prompt
	c.AllPrompts = append(c.AllPrompts, prompt)
	response := c.Response
	if len(c.Responses) > 0 {
		response = c.Responses[0]
		c.Responses = c.Responses[1:]
	}
	err := c.Error
	delay := c.Delay
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return "", err
	}

	return response, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastPrompt = ""
	c.AllPrompts = nil
}

// HasSentimentCall reports whether a sentiment prompt was sent.
func (c *Client) HasSentimentCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.AllPrompts {
		if strings.Contains(p, "rate the sentiment") {
			return true
		}
	}
	return false
}

var _ llm.Client = (*Client)(nil)
