package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Builder formats Params and validates the result.
type Builder struct {
	validator Validator
	logger    *zap.Logger
}

func NewBuilder(validator Validator, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{validator: validator, logger: logger}
}

func (b *Builder) Build(ctx context.Context, p Params) (string, error) {
	query, err := Format(p)
	if err != nil {
		return "", err
	}

	if b.validator != nil && !b.validator.Validate(ctx, query) {
		return "", fmt.Errorf("%w: %q, please check your filters and try again", ErrInvalidFilter, query)
	}

	b.logger.Debug("generated SQL filter", zap.String("filter", query))
	return query, nil
}
