package rest

import (
	"context"
	"math"
	"net/http"
	"time"

	"agrikoSearch/business/search"
	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SearchService interface {
	SemanticSearch(ctx context.Context, req search.Request) search.Response
	HybridSearch(ctx context.Context, req search.Request) search.Response
	ContextualSearch(ctx context.Context, req search.Request) search.Response
}

type SuggestionService interface {
	Suggest(ctx context.Context, partial string, limit int) []string
}

type SearchHandler struct {
	searchService SearchService
	suggestions   SuggestionService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewSearchHandler(searchService SearchService, suggestions SuggestionService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		suggestions:   suggestions,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type HybridSearchRequest struct {
	Query          string   `json:"query" validate:"required"`
	Mode           string   `json:"mode" validate:"omitempty,oneof=semantic keyword hybrid"`
	SemanticWeight *float64 `json:"semanticWeight" validate:"omitempty,gte=0,lte=1"`
	KeywordWeight  *float64 `json:"keywordWeight" validate:"omitempty,gte=0,lte=1"`
	MaxResults     int      `json:"maxResults" validate:"omitempty,gte=1,lte=50"`
	SessionID      string   `json:"sessionId"`
}

type SemanticSearchResponse struct {
	Success      bool                 `json:"success"`
	Query        string               `json:"query"`
	Results      []domain.FusedResult `json:"results"`
	Count        int                  `json:"count"`
	TotalMatches int                  `json:"totalMatches"`
	SearchType   string               `json:"searchType"`
}

type HybridSearchResponse struct {
	Success        bool                 `json:"success"`
	Query          string               `json:"query"`
	Results        []domain.FusedResult `json:"results"`
	Count          int                  `json:"count"`
	TotalMatches   int                  `json:"totalMatches"`
	AppliedContext []string             `json:"appliedContext,omitempty"`
	Stats          domain.SearchStats   `json:"stats"`
	Weights        search.Weights       `json:"weights"`
}

type ContextualSearchResponse struct {
	Success            bool                       `json:"success"`
	Query              string                     `json:"query"`
	Results            []domain.FusedResult       `json:"results"`
	Count              int                        `json:"count"`
	AppliedContext     []string                   `json:"appliedContext"`
	ContextualInsights *domain.ContextualInsights `json:"contextualInsights,omitempty"`
	QualityMetrics     map[string]float64         `json:"qualityMetrics,omitempty"`
	Stats              domain.SearchStats         `json:"stats"`
}

type SuggestionsResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

func (h *SearchHandler) SemanticSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'q' is required"})
	}

	req := search.Request{
		Query:     query,
		SessionID: c.QueryParam("sessionId"),
		Limit:     parseIntDefault(c.QueryParam("limit"), 0),
		Category:  c.QueryParam("category"),
		MinScore:  parseFloatDefault(c.QueryParam("minScore"), 0),
	}
	if raw := c.QueryParam("inStock"); raw != "" {
		inStock := parseBoolDefault(raw, false)
		req.InStock = &inStock
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := h.searchService.SemanticSearch(ctx, req)

	return c.JSON(http.StatusOK, SemanticSearchResponse{
		Success:      true,
		Query:        query,
		Results:      resp.Results,
		Count:        resp.Count,
		TotalMatches: resp.TotalMatches,
		SearchType:   "semantic",
	})
}

func (h *SearchHandler) HybridSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'q' is required"})
	}

	req := search.Request{
		Query:     query,
		SessionID: c.QueryParam("sessionId"),
		Limit:     parseIntDefault(c.QueryParam("limit"), 0),
		Category:  c.QueryParam("category"),
		MinScore:  parseFloatDefault(c.QueryParam("minScore"), 0),
		Expansion: parseBoolDefault(c.QueryParam("expand"), true),
	}
	if raw := c.QueryParam("inStock"); raw != "" {
		inStock := parseBoolDefault(raw, false)
		req.InStock = &inStock
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := h.searchService.HybridSearch(ctx, req)

	return c.JSON(http.StatusOK, HybridSearchResponse{
		Success:        true,
		Query:          query,
		Results:        resp.Results,
		Count:          resp.Count,
		TotalMatches:   resp.TotalMatches,
		AppliedContext: resp.AppliedContext,
		Stats:          resp.Stats,
		Weights:        resp.Weights,
	})
}

// HybridSearchPost accepts explicit fusion weights. Weights are an all or
// nothing pair and must sum to 1 within a small epsilon.
func (h *SearchHandler) HybridSearchPost(c echo.Context) error {
	var body HybridSearchRequest
	if err := c.Bind(&body); err != nil {
		logger.Error("Invalid hybrid search body", "error", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	if err := h.validator.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if (body.SemanticWeight == nil) != (body.KeywordWeight == nil) {
		return c.JSON(http.StatusBadRequest, ResponseError{
			Message: "semanticWeight and keywordWeight must be provided together",
		})
	}
	if body.SemanticWeight != nil {
		if sum := *body.SemanticWeight + *body.KeywordWeight; math.Abs(sum-1.0) > 0.001 {
			return c.JSON(http.StatusBadRequest, ResponseError{
				Message: "semanticWeight and keywordWeight must sum to 1.0",
			})
		}
	}

	req := search.Request{
		Query:          body.Query,
		SessionID:      body.SessionID,
		Limit:          body.MaxResults,
		SemanticWeight: body.SemanticWeight,
		KeywordWeight:  body.KeywordWeight,
		Expansion:      true,
	}

	// mode pins the fusion to one source without a separate code path
	switch body.Mode {
	case "semantic":
		one, zero := 1.0, 0.0
		req.SemanticWeight, req.KeywordWeight = &one, &zero
	case "keyword":
		one, zero := 1.0, 0.0
		req.SemanticWeight, req.KeywordWeight = &zero, &one
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := h.searchService.HybridSearch(ctx, req)

	return c.JSON(http.StatusOK, HybridSearchResponse{
		Success:        true,
		Query:          body.Query,
		Results:        resp.Results,
		Count:          resp.Count,
		TotalMatches:   resp.TotalMatches,
		AppliedContext: resp.AppliedContext,
		Stats:          resp.Stats,
		Weights:        resp.Weights,
	})
}

// ContextualSearch serves the personalized endpoint. action=suggestions
// turns the same route into the autocomplete source.
func (h *SearchHandler) ContextualSearch(c echo.Context) error {
	if c.QueryParam("action") == "suggestions" {
		return h.suggest(c)
	}

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'q' is required"})
	}

	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'sessionId' is required"})
	}

	req := search.Request{
		Query:           query,
		SessionID:       sessionID,
		Limit:           parseIntDefault(c.QueryParam("limit"), 0),
		Category:        c.QueryParam("category"),
		MinScore:        parseFloatDefault(c.QueryParam("minScore"), 0),
		Country:         c.QueryParam("country"),
		Region:          c.QueryParam("region"),
		Expansion:       parseBoolDefault(c.QueryParam("expand"), true),
		Seasonal:        parseBoolDefault(c.QueryParam("seasonal"), true),
		Regional:        parseBoolDefault(c.QueryParam("regional"), true),
		Personalization: parseBoolDefault(c.QueryParam("personalization"), true),
	}
	if raw := c.QueryParam("inStock"); raw != "" {
		inStock := parseBoolDefault(raw, false)
		req.InStock = &inStock
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := h.searchService.ContextualSearch(ctx, req)

	return c.JSON(http.StatusOK, ContextualSearchResponse{
		Success:            true,
		Query:              query,
		Results:            resp.Results,
		Count:              resp.Count,
		AppliedContext:     resp.AppliedContext,
		ContextualInsights: resp.Insights,
		QualityMetrics:     resp.QualityMetrics,
		Stats:              resp.Stats,
	})
}

func (h *SearchHandler) suggest(c echo.Context) error {
	partial := c.QueryParam("q")
	if partial == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "query parameter 'q' is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	suggestions := h.suggestions.Suggest(ctx, partial, parseIntDefault(c.QueryParam("limit"), 0))
	if suggestions == nil {
		suggestions = []string{}
	}

	return c.JSON(http.StatusOK, SuggestionsResponse{
		Success:     true,
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}
