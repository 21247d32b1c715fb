package vectorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"agrikoSearch/business/search"
	"agrikoSearch/domain"
)

type VectorAPIConfig struct {
	BaseURL string
	APIKey  string
}

// VectorAPIRepository is the semantic retrieval adapter for an external
// vector search service. The service is expected to return scores already
// normalized to [0, 1] (cosine-similarity derived).
type VectorAPIRepository struct {
	cfg    VectorAPIConfig
	client *http.Client
}

func NewVectorAPIRepository(cfg VectorAPIConfig) *VectorAPIRepository {
	return &VectorAPIRepository{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type queryRequest struct {
	Query  string            `json:"query"`
	TopK   int               `json:"top_k"`
	Filter map[string]any    `json:"filter,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       uint64         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (r *VectorAPIRepository) Search(ctx context.Context, query string, opts search.RetrievalOptions) ([]domain.RankedCandidate, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}

	payload := queryRequest{
		Query: query,
		TopK:  limit,
	}
	if opts.Category != "" || opts.InStockOnly {
		payload.Filter = map[string]any{}
		if opts.Category != "" {
			payload.Filter["category"] = opts.Category
		}
		if opts.InStockOnly {
			payload.Filter["in_stock"] = true
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.RetrievalError{Source: domain.SourceSemantic, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.RetrievalError{Source: domain.SourceSemantic, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("vector api request failed: %w", err),
		}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("failed to read vector api response: %w", err),
		}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("vector api returned status %d: %s", res.StatusCode, raw),
		}
	}

	var parsed queryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("failed to decode vector api response: %w", err),
		}
	}

	candidates := make([]domain.RankedCandidate, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		if m.Score < opts.MinScore {
			continue
		}
		candidates = append(candidates, domain.RankedCandidate{
			ProductID: m.ID,
			Score:     m.Score,
			Source:    domain.SourceSemantic,
		})
	}

	return candidates, nil
}
