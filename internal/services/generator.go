package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
)

// TextGenerator is a language-model backend that answers a single prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
	Provider() string
	Model() string
}

type generateOptions struct {
	jsonResponse bool
	temperature  *float32
}

type GenerateOption func(*generateOptions)

// WithJSONResponse asks the backend to constrain the reply to a JSON object.
func WithJSONResponse() GenerateOption {
	return func(o *generateOptions) { o.jsonResponse = true }
}

func WithTemperature(t float32) GenerateOption {
	return func(o *generateOptions) { o.temperature = &t }
}

func applyOptions(opts []GenerateOption) generateOptions {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// generateWithRetry calls g up to maxAttempts times, stopping early when ctx is done.
// retryBackoff is multiplied by the attempt number between attempts.
var retryBackoff = 500 * time.Millisecond

func generateWithRetry(ctx context.Context, g TextGenerator, log *zap.Logger, prompt string, maxAttempts int, opts ...GenerateOption) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.Generate(ctx, prompt, opts...)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxAttempts {
			logger.OrNop(log).Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt), zap.Error(err))

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}

	if maxAttempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
