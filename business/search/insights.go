package search

import (
	"sort"

	"agrikoSearch/business/expansion"
	"agrikoSearch/domain"
)

// intent labels derived from the dominant matched-keyword category
var categoryIntent = map[string]string{
	expansion.CategoryNutrient:  "nutritional",
	expansion.CategoryBenefit:   "wellness",
	expansion.CategoryCondition: "therapeutic",
	expansion.CategoryProperty:  "quality",
}

func buildInsights(results []domain.FusedResult, matched []expansion.MatchedKeyword, outcome BoostOutcome, applied []string) *domain.ContextualInsights {
	insights := &domain.ContextualInsights{
		AppliedContext:     applied,
		SearchIntent:       detectIntent(matched),
		SemanticClusters:   clusterByCategory(results),
		PersonalizedBoosts: outcome.PersonalizedBoosts,
		RegionalBoosts:     outcome.RegionalBoosts,
		SeasonalBoost:      outcome.SeasonalBoost,
	}
	if insights.AppliedContext == nil {
		insights.AppliedContext = []string{}
	}
	return insights
}

func emptyInsights(applied []string) *domain.ContextualInsights {
	if applied == nil {
		applied = []string{}
	}
	return &domain.ContextualInsights{
		AppliedContext:     applied,
		SemanticClusters:   []domain.SemanticCluster{},
		PersonalizedBoosts: map[uint64]float64{},
		RegionalBoosts:     map[string]float64{},
		SeasonalBoost:      1.0,
	}
}

// detectIntent picks the category with the most matched keywords. Ties go to
// the category that matched first, which follows dictionary order.
func detectIntent(matched []expansion.MatchedKeyword) string {
	if len(matched) == 0 {
		return ""
	}

	counts := map[string]int{}
	first := map[string]int{}
	for i, m := range matched {
		counts[m.Category]++
		if _, ok := first[m.Category]; !ok {
			first[m.Category] = i
		}
	}

	best := ""
	for cat := range counts {
		if best == "" {
			best = cat
			continue
		}
		if counts[cat] > counts[best] || (counts[cat] == counts[best] && first[cat] < first[best]) {
			best = cat
		}
	}

	return categoryIntent[best]
}

// clusterByCategory groups enriched results by product category, largest
// cluster first.
func clusterByCategory(results []domain.FusedResult) []domain.SemanticCluster {
	groups := map[string][]uint64{}
	for _, r := range results {
		if r.Product == nil || r.Product.ProductCategory == "" {
			continue
		}
		groups[r.Product.ProductCategory] = append(groups[r.Product.ProductCategory], r.ProductID)
	}

	clusters := make([]domain.SemanticCluster, 0, len(groups))
	for label, ids := range groups {
		clusters = append(clusters, domain.SemanticCluster{Label: label, ProductIDs: ids})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].ProductIDs) != len(clusters[j].ProductIDs) {
			return len(clusters[i].ProductIDs) > len(clusters[j].ProductIDs)
		}
		return clusters[i].Label < clusters[j].Label
	})

	return clusters
}

func qualityMetrics(results []domain.FusedResult) map[string]float64 {
	metrics := map[string]float64{
		"result_count":      float64(len(results)),
		"avg_final_score":   0,
		"dual_source_ratio": 0,
	}

	if len(results) == 0 {
		return metrics
	}

	sum := 0.0
	dual := 0
	for _, r := range results {
		sum += r.FinalScore
		if r.Source == domain.SourceHybrid {
			dual++
		}
	}

	metrics["avg_final_score"] = sum / float64(len(results))
	metrics["dual_source_ratio"] = float64(dual) / float64(len(results))

	return metrics
}
