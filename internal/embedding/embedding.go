package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"search-rag/internal/config"
	"search-rag/internal/models"
)

// Embedder is the provider call boundary. langchaingo's EmbedderImpl
// satisfies it; tests inject fakes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds a langchaingo embedder for the configured provider.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize llm: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	default:
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize llm: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	}
}

// Gateway pins the provider to a fixed output dimension. A provider error or
// a wrong-width vector surfaces as models.ErrEmbeddingProvider so callers can
// skip the affected record without aborting the batch.
type Gateway struct {
	embedder Embedder
	dim      int
}

func NewGateway(embedder Embedder, dim int) *Gateway {
	return &Gateway{embedder: embedder, dim: dim}
}

func (g *Gateway) Dimension() int { return g.dim }

// Embed returns the fixed-dimension vector for one text.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingProvider, err)
	}
	if len(vec) != g.dim {
		return nil, fmt.Errorf("%w: got dimension %d, want %d", models.ErrEmbeddingProvider, len(vec), g.dim)
	}
	return vec, nil
}

// EmbedBatch embeds several texts in one provider call. Batching is an
// optimization; callers may equally loop over Embed.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := g.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingProvider, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", models.ErrEmbeddingProvider, len(vecs), len(texts))
	}
	for _, vec := range vecs {
		if len(vec) != g.dim {
			return nil, fmt.Errorf("%w: got dimension %d, want %d", models.ErrEmbeddingProvider, len(vec), g.dim)
		}
	}
	return vecs, nil
}
