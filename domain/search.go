package domain

// CandidateSource tells which retrieval signal produced a candidate.
type CandidateSource string

const (
	SourceSemantic CandidateSource = "semantic"
	SourceKeyword  CandidateSource = "keyword"
	SourceHybrid   CandidateSource = "hybrid"
)

// RankedCandidate is the normalized shape both retriever adapters hand to
// fusion. Scores are already in [0, 1] by the time a candidate exists.
type RankedCandidate struct {
	ProductID     uint64          `json:"product_id"`
	Score         float64         `json:"score"`
	Source        CandidateSource `json:"source"`
	MatchedFields []string        `json:"matched_fields,omitempty"`
}

// FusedResult is one ranked entry after fusion and contextual boosting.
// Invariants:
//
//	hybrid_score  = semanticWeight*semantic + keywordWeight*keyword,
//	               weights renormalized over present sources
//	final_score   = hybrid_score * contextual_boost
//	contextual_boost = seasonal * personalization * regional, each in [0.5, 2.0]
type FusedResult struct {
	ProductID            uint64          `json:"product_id"`
	HybridScore          float64         `json:"hybrid_score"`
	SemanticScore        *float64        `json:"semantic_score"`
	KeywordScore         *float64        `json:"keyword_score"`
	Source               CandidateSource `json:"source"`
	MatchedFields        []string        `json:"matched_fields,omitempty"`
	ContextualBoost      float64         `json:"contextual_boost"`
	SeasonalBoost        float64         `json:"seasonal_boost"`
	PersonalizationBoost float64         `json:"personalization_boost"`
	RegionalBoost        float64         `json:"regional_boost"`
	FinalScore           float64         `json:"final_score"`
	RecommendationReason []string        `json:"recommendation_reason,omitempty"`
	Product              *Product        `json:"product,omitempty"`
}

// SemanticCluster groups result products sharing a category, used for the
// contextual insights payload.
type SemanticCluster struct {
	Label      string   `json:"label"`
	ProductIDs []uint64 `json:"product_ids"`
}

// ContextualInsights is per-request observability for the contextual search
// path. Never persisted.
type ContextualInsights struct {
	AppliedContext     []string           `json:"applied_context"`
	SearchIntent       string             `json:"search_intent,omitempty"`
	SemanticClusters   []SemanticCluster  `json:"semantic_clusters"`
	PersonalizedBoosts map[uint64]float64 `json:"personalized_boosts"`
	RegionalBoosts     map[string]float64 `json:"regional_boosts"`
	SeasonalBoost      float64            `json:"seasonal_boost"`
}

// SearchStats reports per-source outcome of one request.
type SearchStats struct {
	ExecutionTimeMs int64 `json:"execution_time_ms"`
	SemanticResults int   `json:"semantic_results"`
	KeywordResults  int   `json:"keyword_results"`
}
