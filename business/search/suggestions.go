package search

import (
	"context"
	"fmt"
	"strings"

	"agrikoSearch/business/behavior"
	"agrikoSearch/business/expansion"
	"agrikoSearch/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const defaultSuggestionLimit = 8

// Suggester serves partial-query autocomplete from the expansion dictionary
// and the popular-query aggregates. Identical concurrent lookups are
// coalesced so a burst of keystrokes from many sessions hits the aggregate
// store once.
type Suggester struct {
	agg   behavior.AggregateStore
	group singleflight.Group
}

func NewSuggester(agg behavior.AggregateStore) *Suggester {
	return &Suggester{agg: agg}
}

func (s *Suggester) Suggest(ctx context.Context, partial string, limit int) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	key := fmt.Sprintf("%s|%d", partial, limit)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.lookup(ctx, partial, limit), nil
	})

	return v.([]string)
}

func (s *Suggester) lookup(ctx context.Context, partial string, limit int) []string {
	suggestions := make([]string, 0, limit)
	seen := map[string]bool{}

	add := func(term string) bool {
		term = strings.ToLower(term)
		if seen[term] || !strings.Contains(term, partial) {
			return len(suggestions) < limit
		}
		seen[term] = true
		suggestions = append(suggestions, term)
		return len(suggestions) < limit
	}

	// popular real queries first, dictionary terms as fallback
	if s.agg != nil {
		top, err := s.agg.TopQueries(ctx, limit*4)
		if err != nil {
			logger.Debug("popular query lookup failed", "error", err)
		}
		for _, q := range top {
			if !add(q.Query) {
				return suggestions
			}
		}
	}

	for _, kw := range expansion.AllKeywords() {
		if !add(kw) {
			break
		}
	}

	return suggestions
}
