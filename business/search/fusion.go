package search

import (
	"sort"

	"agrikoSearch/domain"
)

// Fuse merges semantic and keyword candidate lists into one ranked list.
//
// Candidates present in only one source get their weights renormalized over
// the present sources, so a keyword-only hit is not penalized for lacking a
// semantic score. Dual-source hits are tagged hybrid and keep both component
// scores for observability.
//
// Ordering is deterministic: hybrid score descending, dual-source hits before
// single-source on ties, then higher raw semantic score, then lower product id.
func Fuse(semantic, keyword []domain.RankedCandidate, w Weights) []domain.FusedResult {
	merged := make(map[uint64]*domain.FusedResult, len(semantic)+len(keyword))
	order := make([]uint64, 0, len(semantic)+len(keyword))

	for _, c := range semantic {
		score := c.Score
		merged[c.ProductID] = &domain.FusedResult{
			ProductID:            c.ProductID,
			SemanticScore:        &score,
			Source:               domain.SourceSemantic,
			SeasonalBoost:        1.0,
			PersonalizationBoost: 1.0,
			RegionalBoost:        1.0,
			ContextualBoost:      1.0,
		}
		order = append(order, c.ProductID)
	}

	for _, c := range keyword {
		score := c.Score
		if r, ok := merged[c.ProductID]; ok {
			r.KeywordScore = &score
			r.Source = domain.SourceHybrid
			r.MatchedFields = c.MatchedFields
			continue
		}
		merged[c.ProductID] = &domain.FusedResult{
			ProductID:            c.ProductID,
			KeywordScore:         &score,
			Source:               domain.SourceKeyword,
			MatchedFields:        c.MatchedFields,
			SeasonalBoost:        1.0,
			PersonalizationBoost: 1.0,
			RegionalBoost:        1.0,
			ContextualBoost:      1.0,
		}
		order = append(order, c.ProductID)
	}

	results := make([]domain.FusedResult, 0, len(order))
	for _, pid := range order {
		r := merged[pid]
		r.HybridScore = hybridScore(r, w)
		r.FinalScore = r.HybridScore
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.HybridScore != b.HybridScore {
			return a.HybridScore > b.HybridScore
		}
		aDual := a.Source == domain.SourceHybrid
		bDual := b.Source == domain.SourceHybrid
		if aDual != bDual {
			return aDual
		}
		if as, bs := rawSemantic(a), rawSemantic(b); as != bs {
			return as > bs
		}
		return a.ProductID < b.ProductID
	})

	return results
}

// hybridScore applies the configured weights, renormalized over whichever
// sources actually scored this product.
func hybridScore(r *domain.FusedResult, w Weights) float64 {
	switch {
	case r.SemanticScore != nil && r.KeywordScore != nil:
		total := w.Semantic + w.Keyword
		if total <= 0 {
			return 0
		}
		return (w.Semantic**r.SemanticScore + w.Keyword**r.KeywordScore) / total
	case r.SemanticScore != nil:
		return *r.SemanticScore
	case r.KeywordScore != nil:
		return *r.KeywordScore
	default:
		return 0
	}
}

func rawSemantic(r domain.FusedResult) float64 {
	if r.SemanticScore == nil {
		return 0
	}
	return *r.SemanticScore
}
