package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Dimension of the vectors produced by text-embedding-3-small.
const Dimension = 1536

const maxRetries = 3

// Embedder converts text into a fixed-dimension vector. Satisfied by
// langchaingo's EmbedderImpl and by test fakes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewOpenAIEmbedder creates an embedder backed by an OpenAI-compatible
// embeddings endpoint.
func NewOpenAIEmbedder(baseURL, apiKey, model string) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(strings.TrimPrefix(apiKey, "Bearer ")),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedText embeds a single text, retrying transient failures with capped
// exponential backoff. Embedding is an idempotent read, so retrying is safe.
func EmbedText(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		vector, err := embedder.EmbedQuery(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("embedding request failed")
		if attempt < maxRetries-1 {
			select {
			case <-time.After(RetryDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// RetryDelay returns the backoff before retry number attempt+1, capped at 5s.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
