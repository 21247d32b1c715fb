package postgres

import (
	"context"
	"fmt"
	"strings"

	"agrikoSearch/business/search"
	"agrikoSearch/domain"

	"gorm.io/gorm"
)

// KeywordRepository is the lexical retrieval adapter, backed by Postgres
// full-text search over product name, category, and description. Raw ts_rank
// scores are unbounded, so the configured normalizer scales them to [0, 1]
// before candidates leave the adapter.
type KeywordRepository struct {
	DB        *gorm.DB
	Normalize search.ScoreNormalizer
}

func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{
		DB:        db,
		Normalize: search.MinMaxNormalize,
	}
}

type keywordRow struct {
	ID            uint64  `gorm:"column:id"`
	Rank          float64 `gorm:"column:rank"`
	NameMatch     bool    `gorm:"column:name_match"`
	CategoryMatch bool    `gorm:"column:category_match"`
	DescMatch     bool    `gorm:"column:desc_match"`
}

func (r *KeywordRepository) Search(ctx context.Context, query string, opts search.RetrievalOptions) ([]domain.RankedCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RetrievalError{Source: domain.SourceKeyword, Err: err}
	}

	tsquery := buildTsQuery(query)
	if tsquery == "" {
		return []domain.RankedCandidate{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}

	sql := `
		SELECT id,
		       ts_rank(document, q) AS rank,
		       to_tsvector('english', coalesce(product_name, ''))     @@ q AS name_match,
		       to_tsvector('english', coalesce(product_category, '')) @@ q AS category_match,
		       to_tsvector('english', coalesce(description, ''))      @@ q AS desc_match
		FROM (
		    SELECT *,
		           to_tsvector('english',
		               coalesce(product_name, '') || ' ' ||
		               coalesce(product_category, '') || ' ' ||
		               coalesce(description, '')) AS document
		    FROM products
		) p, to_tsquery('english', ?) q
		WHERE document @@ q`

	args := []any{tsquery}

	if opts.Category != "" {
		sql += " AND product_category = ?"
		args = append(args, opts.Category)
	}
	if opts.InStockOnly {
		sql += " AND in_stock = true"
	}

	sql += " ORDER BY rank DESC, id ASC LIMIT ?"
	args = append(args, limit)

	var rows []keywordRow
	if err := r.DB.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, &domain.RetrievalError{
			Source: domain.SourceKeyword,
			Err:    fmt.Errorf("full-text query failed: %w", err),
		}
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = row.Rank
	}
	if r.Normalize != nil {
		scores = r.Normalize(scores)
	}

	candidates := make([]domain.RankedCandidate, 0, len(rows))
	for i, row := range rows {
		if scores[i] < opts.MinScore {
			continue
		}
		candidates = append(candidates, domain.RankedCandidate{
			ProductID:     row.ID,
			Score:         scores[i],
			Source:        domain.SourceKeyword,
			MatchedFields: matchedFields(row),
		})
	}

	return candidates, nil
}

// buildTsQuery ORs the query terms so expansion-widened queries broaden
// recall instead of requiring every term. Terms are stripped to alphanumeric
// runes to keep tsquery syntax valid.
func buildTsQuery(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	seen := map[string]bool{}

	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		t := b.String()
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}

	return strings.Join(terms, " | ")
}

func matchedFields(row keywordRow) []string {
	var fields []string
	if row.NameMatch {
		fields = append(fields, "name")
	}
	if row.CategoryMatch {
		fields = append(fields, "category")
	}
	if row.DescMatch {
		fields = append(fields, "description")
	}
	return fields
}
