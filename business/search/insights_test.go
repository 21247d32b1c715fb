package search

import (
	"math"
	"testing"

	"agrikoSearch/business/expansion"
	"agrikoSearch/domain"
)

func TestDetectIntentDominantCategory(t *testing.T) {
	matched := []expansion.MatchedKeyword{
		{Keyword: "arthritis", Category: expansion.CategoryCondition},
		{Keyword: "inflammation", Category: expansion.CategoryCondition},
		{Keyword: "organic", Category: expansion.CategoryProperty},
	}

	if got := detectIntent(matched); got != "therapeutic" {
		t.Errorf("intent = %q, want therapeutic", got)
	}
}

func TestDetectIntentTieGoesToFirstMatch(t *testing.T) {
	matched := []expansion.MatchedKeyword{
		{Keyword: "immunity", Category: expansion.CategoryBenefit},
		{Keyword: "cold", Category: expansion.CategoryCondition},
	}

	if got := detectIntent(matched); got != "wellness" {
		t.Errorf("intent = %q, want wellness (first matched category)", got)
	}
}

func TestDetectIntentEmpty(t *testing.T) {
	if got := detectIntent(nil); got != "" {
		t.Errorf("intent = %q, want empty", got)
	}
}

func TestClusterByCategoryOrdering(t *testing.T) {
	results := []domain.FusedResult{
		fusedResult(1, 0.9, "teas"),
		fusedResult(2, 0.8, "rice"),
		fusedResult(3, 0.7, "teas"),
		{ProductID: 4, HybridScore: 0.6}, // unenriched, skipped
	}

	clusters := clusterByCategory(results)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[0].Label != "teas" || len(clusters[0].ProductIDs) != 2 {
		t.Errorf("largest cluster = %+v", clusters[0])
	}
	if clusters[1].Label != "rice" {
		t.Errorf("second cluster = %+v", clusters[1])
	}
}

func TestQualityMetrics(t *testing.T) {
	hybrid := fusedResult(1, 0.8, "teas")
	hybrid.FinalScore = 0.8
	keywordOnly := fusedResult(2, 0.4, "rice")
	keywordOnly.Source = domain.SourceKeyword
	keywordOnly.FinalScore = 0.4

	m := qualityMetrics([]domain.FusedResult{hybrid, keywordOnly})

	if m["result_count"] != 2 {
		t.Errorf("result_count = %f", m["result_count"])
	}
	if math.Abs(m["avg_final_score"]-0.6) > 1e-9 {
		t.Errorf("avg_final_score = %f, want 0.6", m["avg_final_score"])
	}
	if m["dual_source_ratio"] != 0.5 {
		t.Errorf("dual_source_ratio = %f, want 0.5", m["dual_source_ratio"])
	}
}

func TestQualityMetricsEmpty(t *testing.T) {
	m := qualityMetrics(nil)
	if m["result_count"] != 0 || m["avg_final_score"] != 0 || m["dual_source_ratio"] != 0 {
		t.Errorf("empty metrics = %v", m)
	}
}
