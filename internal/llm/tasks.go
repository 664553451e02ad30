package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/retry"
)

// Expander generates query expansions. Every failure, including a malformed
// reply, is retried.
type Expander struct {
	client  Client
	retrier *retry.Retrier
	logger  *zap.Logger
}

func NewExpander(client Client, policy retry.Policy, logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{
		client:  client,
		retrier: retry.New(policy, retry.WithLogger(logger), retry.WithClassifier(retry.RetryAll)),
		logger:  logger,
	}
}

func (e *Expander) Expand(ctx context.Context, question string) ([]string, error) {
	if e.client == nil {
		return nil, ErrMissingAPIKey
	}

	var expansions []string
	err := e.retrier.Do(ctx, "generate_expansions", func(ctx context.Context) error {
		raw, err := e.client.Complete(ctx, ExpansionPrompt(question))
		if err != nil {
			return err
		}
		expansions, err = ParseExpansions(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generated expansions", zap.Strings("expansions", expansions))
	return expansions, nil
}

// Sentiment scores content in [-1, 1].
func Sentiment(ctx context.Context, client Client, content string) (float64, error) {
	if client == nil {
		return 0, ErrMissingAPIKey
	}
	raw, err := client.Complete(ctx, SentimentPrompt(content))
	if err != nil {
		return 0, err
	}
	return ParseSentiment(raw)
}
