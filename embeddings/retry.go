package embeddings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Samhitha-07/F1GPT/config"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 5 * time.Second
)

// retryingEmbedder retries quota-classified failures with exponential
// backoff. MaxAttempts counts every call including the first, so the default
// of 3 attempts sleeps at most twice (5s then 10s) before the exhaustion
// error carries the last quota failure. Any other error fails immediately.
// The backoff sleep blocks only the calling request.
type retryingEmbedder struct {
	inner       Embedder
	maxAttempts int
	baseDelay   time.Duration
	logger      *log.Logger
}

func WithRetry(inner Embedder, cfg config.RetryConfig, logger *log.Logger) Embedder {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}

	return &retryingEmbedder{
		inner:       inner,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		logger:      logger,
	}
}

func (r *retryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		vector, err := r.inner.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if !errors.Is(err, ErrQuotaExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
		}

		if attempt == r.maxAttempts-1 {
			break
		}

		delay := backoffDelay(r.baseDelay, attempt)
		r.logger.Printf("embedding quota exceeded, retrying in %s (attempt %d/%d)", delay, attempt+1, r.maxAttempts)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: canceled during backoff: %w", ErrEmbedding, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%w: %d attempts exhausted: %w", ErrEmbedding, r.maxAttempts, lastErr)
}

// backoffDelay doubles the base delay per completed attempt: base, 2*base,
// 4*base, ...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}
