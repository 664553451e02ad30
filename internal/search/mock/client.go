package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/nosible-go/internal/search"
)

// Client is a scripted search.Searcher.
type Client struct {
	Results search.ResultSet
	Error   error
	Delay   time.Duration

	CallCount    int
	LastSearch   search.Search
	AllSearches  []search.Search
	ByQuestion   map[string]search.ResultSet
	ErrQuestions map[string]error

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		ByQuestion:   make(map[string]search.ResultSet),
		ErrQuestions: make(map[string]error),
	}
}

func (c *Client) WithResults(results search.ResultSet) *Client {
	c.Results = results
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

// WithQuestion answers question with results instead of the default ones.
func (c *Client) WithQuestion(question string, results search.ResultSet) *Client {
	c.ByQuestion[question] = results
	return c
}

// WithQuestionError fails only searches for question.
func (c *Client) WithQuestionError(question string, err error) *Client {
	c.ErrQuestions[question] = err
	return c
}

func (c *Client) Search(ctx context.Context, s search.Search) (search.ResultSet, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastSearch = s
	c.AllSearches = append(c.AllSearches, s)
	delay := c.Delay
	err := c.Error
	if qerr, ok := c.ErrQuestions[s.Question]; ok {
		err = qerr
	}
	results, ok := c.ByQuestion[s.Question]
	if !ok {
		results = c.Results
	}
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	if s.NResults > 0 {
		results = results.Top(s.NResults)
	}
	return append(search.ResultSet(nil), results...), nil
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
	c.LastSearch = search.Search{}
	c.AllSearches = nil
}

var _ search.Searcher = (*Client)(nil)
