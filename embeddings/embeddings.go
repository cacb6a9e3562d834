package embeddings

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Samhitha-07/F1GPT/config"
)

var (
	// ErrEmbedding marks a terminal embedding failure: a non-quota provider
	// error, or quota retries exhausted.
	ErrEmbedding = errors.New("embedding failure")

	// ErrQuotaExceeded classifies a provider quota/rate condition. Provider
	// adapters attach it so the retry policy never inspects provider error
	// shapes directly.
	ErrQuotaExceeded = errors.New("embedding quota exceeded")
)

// Embedder converts text into a fixed-length vector. Implementations are
// stateless between calls and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// NewEmbedder builds the configured provider adapter wrapped with the
// quota retry policy.
func NewEmbedder(cfg config.Config, logger *log.Logger) (Embedder, error) {
	opts := Options{
		Provider:      cfg.Embeddings.Provider,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	var base Embedder
	switch opts.Provider {
	case config.ProviderOllama:
		base = NewOllamaEmbedder(opts)
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		base = NewOpenAIEmbedder(opts)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}

	return WithRetry(base, cfg.Retry, logger), nil
}
