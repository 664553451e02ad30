package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed        = errors.New("authentication failed")
	ErrRequestFailed     = errors.New("request failed")
	ErrEmptyResponse     = errors.New("empty response")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrMissingAPIKey     = errors.New("LLM API key is required")
	ErrInvalidExpansions = errors.New("invalid expansions response")
	ErrInvalidSentiment  = errors.New("invalid sentiment response")
)

// Client sends a single user prompt and returns the model's reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
