package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"agrikoSearch/business/behavior"
	"agrikoSearch/business/expansion"
	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"
	"agrikoSearch/pkg/metrics"
)

// RetrievalOptions is the per-call contract both retriever adapters accept.
type RetrievalOptions struct {
	Limit       int
	Category    string
	InStockOnly bool
	MinScore    float64
}

// SemanticSearcher queries the vector backend. Returned scores must already
// be in [0, 1].
type SemanticSearcher interface {
	Search(ctx context.Context, query string, opts RetrievalOptions) ([]domain.RankedCandidate, error)
}

// KeywordSearcher queries the lexical index. The adapter normalizes raw
// scores to [0, 1] before returning.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, opts RetrievalOptions) ([]domain.RankedCandidate, error)
}

// CatalogRepository resolves ranked ids to product records in one batched
// call so result enrichment never does N+1 lookups.
type CatalogRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

// SearchTracker is the fire-and-forget reporting hook. Implementations must
// not block.
type SearchTracker interface {
	TrackSearch(sessionID, query, searchType string, resultIDs []uint64)
}

// Response is what every search entry point returns. Degraded responses are
// still successful responses: Results may be empty, never absent.
type Response struct {
	Results        []domain.FusedResult      `json:"results"`
	Count          int                       `json:"count"`
	TotalMatches   int                       `json:"total_matches"`
	AppliedContext []string                  `json:"applied_context,omitempty"`
	Insights       *domain.ContextualInsights `json:"contextual_insights,omitempty"`
	QualityMetrics map[string]float64        `json:"quality_metrics,omitempty"`
	Stats          domain.SearchStats        `json:"stats"`
	Weights        Weights                   `json:"weights"`
	Degraded       bool                      `json:"-"`
}

type Service struct {
	semantic SemanticSearcher
	keyword  KeywordSearcher
	catalog  CatalogRepository
	expander *expansion.Expander
	booster  *Booster
	tracker  SearchTracker
	cfg      Config
	clock    behavior.Clock
}

func NewService(
	semantic SemanticSearcher,
	keyword KeywordSearcher,
	catalog CatalogRepository,
	expander *expansion.Expander,
	booster *Booster,
	tracker SearchTracker,
	cfg Config,
	clock behavior.Clock,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		semantic: semantic,
		keyword:  keyword,
		catalog:  catalog,
		expander: expander,
		booster:  booster,
		tracker:  tracker,
		cfg:      cfg,
		clock:    clock,
	}
}

// SemanticSearch serves the semantic-only endpoint. A backend failure yields
// an empty degraded response, not an error.
func (s *Service) SemanticSearch(ctx context.Context, req Request) Response {
	started := s.clock()
	defer s.observe("semantic", started)
	limit := s.cfg.resolveLimit(req.Limit)

	opts := RetrievalOptions{
		Limit:       limit * 3,
		Category:    req.Category,
		InStockOnly: req.InStock != nil && *req.InStock,
		MinScore:    req.MinScore,
	}

	retrCtx, cancel := context.WithTimeout(ctx, s.cfg.SemanticTimeout)
	defer cancel()

	candidates, err := s.semantic.Search(retrCtx, req.Query, opts)
	if err != nil {
		metrics.RetrievalFailures.WithLabelValues(string(domain.SourceSemantic), "error").Inc()
		metrics.DegradedResponses.Inc()
		logger.Warn("semantic retrieval failed",
			"trace_id", TraceIDFromContext(ctx),
			"query", req.Query,
			"error", err,
		)
		return Response{
			Results:        []domain.FusedResult{},
			AppliedContext: []string{"degraded:semantic-unavailable"},
			Degraded:       true,
			Stats:          domain.SearchStats{ExecutionTimeMs: s.sinceMs(started)},
		}
	}

	results := Fuse(candidates, nil, Weights{Semantic: 1})
	totalMatches := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	s.enrich(ctx, results)
	s.report(req, "semantic", results)

	return Response{
		Results:      results,
		Count:        len(results),
		TotalMatches: totalMatches,
		Stats: domain.SearchStats{
			ExecutionTimeMs: s.sinceMs(started),
			SemanticResults: len(candidates),
		},
		Weights: Weights{Semantic: 1},
	}
}

// HybridSearch runs expansion, concurrent retrieval, fusion, and enrichment.
func (s *Service) HybridSearch(ctx context.Context, req Request) Response {
	resp, _ := s.run(ctx, req, "hybrid")
	return resp
}

// ContextualSearch is HybridSearch plus contextual boosting and insights.
func (s *Service) ContextualSearch(ctx context.Context, req Request) Response {
	resp, matched := s.run(ctx, req, "contextual")
	if resp.Degraded && len(resp.Results) == 0 {
		resp.Insights = emptyInsights(resp.AppliedContext)
		return resp
	}

	outcome := s.booster.Apply(resp.Results, req, matched)
	resp.AppliedContext = append(resp.AppliedContext, outcome.AppliedContext...)

	// boosting changes final scores, so re-rank before responding
	sortByFinalScore(resp.Results)

	resp.Insights = buildInsights(resp.Results, matched, outcome, resp.AppliedContext)
	resp.QualityMetrics = qualityMetrics(resp.Results)

	return resp
}

// run is the shared EXPANDING -> RETRIEVING -> FUSING pipeline.
func (s *Service) run(ctx context.Context, req Request, searchType string) (Response, []expansion.MatchedKeyword) {
	started := s.clock()
	defer s.observe(searchType, started)
	limit := s.cfg.resolveLimit(req.Limit)
	weights := s.cfg.resolveWeights(req)

	var applied []string

	// EXPANDING: keyword retrieval widens over expansion variants; the
	// semantic backend sees the original query, its embedding already
	// captures related meaning.
	matched := s.expander.MatchedKeywords(req.Query)
	keywordQuery := req.Query
	if req.Expansion {
		variants := s.expander.Expand(req.Query)
		keywordQuery = unionQuery(variants)
		if len(variants) > 1 {
			applied = append(applied, "expansion:applied")
		}
	}

	// RETRIEVING: concurrent fan-out, joined before fusion.
	semantic, keyword, notes, stats := s.retrieve(ctx, req.Query, keywordQuery, limit, req)
	applied = append(applied, notes...)

	if semantic == nil && keyword == nil {
		metrics.DegradedResponses.Inc()
		logger.Warn("all retrieval sources failed",
			"trace_id", TraceIDFromContext(ctx),
			"query", req.Query,
			"error", domain.ErrBothSourcesFailed,
		)
		stats.ExecutionTimeMs = s.sinceMs(started)
		return Response{
			Results:        []domain.FusedResult{},
			AppliedContext: append(applied, "degraded:no-sources"),
			Stats:          stats,
			Weights:        weights,
			Degraded:       true,
		}, matched
	}

	// FUSING
	results := Fuse(semantic, keyword, weights)
	totalMatches := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	s.enrich(ctx, results)
	s.report(req, searchType, results)

	stats.ExecutionTimeMs = s.sinceMs(started)

	return Response{
		Results:        results,
		Count:          len(results),
		TotalMatches:   totalMatches,
		AppliedContext: applied,
		Stats:          stats,
		Weights:        weights,
		Degraded:       len(notes) > 0,
	}, matched
}

type retrievalOutcome struct {
	source     domain.CandidateSource
	candidates []domain.RankedCandidate
	err        error
}

// retrieve fans out to both sources with per-source timeouts and joins. A
// nil candidate slice means that source failed; an empty one means it
// legitimately found nothing.
func (s *Service) retrieve(ctx context.Context, semanticQuery, keywordQuery string, limit int, req Request) (semantic, keyword []domain.RankedCandidate, notes []string, stats domain.SearchStats) {
	opts := RetrievalOptions{
		Limit:       limit * 3,
		Category:    req.Category,
		InStockOnly: req.InStock != nil && *req.InStock,
		MinScore:    req.MinScore,
	}

	outcomes := make(chan retrievalOutcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		retrCtx, cancel := context.WithTimeout(ctx, s.cfg.SemanticTimeout)
		defer cancel()
		cands, err := s.semantic.Search(retrCtx, semanticQuery, opts)
		outcomes <- retrievalOutcome{source: domain.SourceSemantic, candidates: cands, err: err}
	}()

	go func() {
		defer wg.Done()
		retrCtx, cancel := context.WithTimeout(ctx, s.cfg.KeywordTimeout)
		defer cancel()
		cands, err := s.keyword.Search(retrCtx, keywordQuery, opts)
		outcomes <- retrievalOutcome{source: domain.SourceKeyword, candidates: cands, err: err}
	}()

	wg.Wait()
	close(outcomes)

	for out := range outcomes {
		if out.err != nil {
			reason := "error"
			if errors.Is(out.err, context.DeadlineExceeded) || errIsTimeout(out.err) {
				reason = "timeout"
			}
			metrics.RetrievalFailures.WithLabelValues(string(out.source), reason).Inc()
			notes = append(notes, "degraded:"+string(out.source)+"-unavailable")
			logger.Warn("retrieval source failed",
				"trace_id", TraceIDFromContext(ctx),
				"source", out.source,
				"error", out.err,
			)
			continue
		}

		switch out.source {
		case domain.SourceSemantic:
			semantic = out.candidates
			if semantic == nil {
				semantic = []domain.RankedCandidate{}
			}
			stats.SemanticResults = len(out.candidates)
		case domain.SourceKeyword:
			keyword = out.candidates
			if keyword == nil {
				keyword = []domain.RankedCandidate{}
			}
			stats.KeywordResults = len(out.candidates)
		}
	}

	return semantic, keyword, notes, stats
}

// enrich resolves all result products in one batched catalog call. Failure
// leaves results unenriched rather than failing the search.
func (s *Service) enrich(ctx context.Context, results []domain.FusedResult) {
	if s.catalog == nil || len(results) == 0 {
		return
	}

	ids := make([]uint64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		logger.Warn("catalog enrichment failed",
			"trace_id", TraceIDFromContext(ctx),
			"error", err,
		)
		return
	}

	byID := make(map[uint64]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for i := range results {
		results[i].Product = byID[results[i].ProductID]
	}
}

// report dispatches fire-and-forget tracking. TRACKING failures or slowness
// never touch the response path.
func (s *Service) report(req Request, searchType string, results []domain.FusedResult) {
	if s.tracker == nil || req.SessionID == "" {
		return
	}

	ids := make([]uint64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ProductID)
	}

	s.tracker.TrackSearch(req.SessionID, req.Query, searchType, ids)
}

func (s *Service) sinceMs(started time.Time) int64 {
	return s.clock().Sub(started).Milliseconds()
}

func (s *Service) observe(searchType string, started time.Time) {
	metrics.SearchRequests.WithLabelValues(searchType).Inc()
	metrics.SearchLatency.WithLabelValues(searchType).Observe(s.clock().Sub(started).Seconds())
}

func unionQuery(variants []expansion.Variant) string {
	if len(variants) == 0 {
		return ""
	}

	seen := map[string]bool{}
	var terms []string

	addTerms := func(q string) {
		for _, t := range strings.Fields(q) {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}

	for _, v := range variants {
		addTerms(v.Query)
	}

	return strings.Join(terms, " ")
}

func sortByFinalScore(results []domain.FusedResult) {
	// insertion sort keeps the fusion tie-break order for equal final scores
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].FinalScore > results[j-1].FinalScore; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

func errIsTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return strings.Contains(err.Error(), "deadline exceeded")
}
