package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type EmbedderConfig struct {
	APIKey string
	Model  string
}

// Embedder produces query embeddings for the pgvector semantic adapter. The
// model must match whatever embedded the product catalog.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewEmbedder(cfg EmbedderConfig) *Embedder {
	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.SmallEmbedding3
	}

	return &Embedder{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}

	return resp.Data[0].Embedding, nil
}
