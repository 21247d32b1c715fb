package postgres

import (
	"context"
	"fmt"

	"agrikoSearch/business/search"
	"agrikoSearch/domain"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Embedder turns query text into the embedding the product index was built
// with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SemanticRepository is the vector retrieval adapter backed by the catalog's
// pgvector column. Cosine distance converts to a [0, 1] similarity, so scores
// need no further normalization.
type SemanticRepository struct {
	DB       *gorm.DB
	Embedder Embedder
}

func NewSemanticRepository(db *gorm.DB, embedder Embedder) *SemanticRepository {
	return &SemanticRepository{
		DB:       db,
		Embedder: embedder,
	}
}

type semanticRow struct {
	ID    uint64  `gorm:"column:id"`
	Score float64 `gorm:"column:score"`
}

func (r *SemanticRepository) Search(ctx context.Context, query string, opts search.RetrievalOptions) ([]domain.RankedCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RetrievalError{Source: domain.SourceSemantic, Err: err}
	}

	embedding, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("query embedding failed: %w", err),
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}

	sql := `
		SELECT id, greatest(0, 1 - (embedding <=> ?)) AS score
		FROM products
		WHERE embedding IS NOT NULL`

	vec := pgvector.NewVector(embedding)
	args := []any{vec}

	if opts.Category != "" {
		sql += " AND product_category = ?"
		args = append(args, opts.Category)
	}
	if opts.InStockOnly {
		sql += " AND in_stock = true"
	}

	sql += " ORDER BY embedding <=> ? LIMIT ?"
	args = append(args, vec, limit)

	var rows []semanticRow
	if err := r.DB.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceSemantic,
			Err:    fmt.Errorf("vector query failed: %w", err),
		}
	}

	candidates := make([]domain.RankedCandidate, 0, len(rows))
	for _, row := range rows {
		if row.Score < opts.MinScore {
			continue
		}
		candidates = append(candidates, domain.RankedCandidate{
			ProductID: row.ID,
			Score:     row.Score,
			Source:    domain.SourceSemantic,
		})
	}

	return candidates, nil
}
