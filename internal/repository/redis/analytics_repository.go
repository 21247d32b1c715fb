package redis

import (
	"context"
	"fmt"

	"agrikoSearch/domain"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "analytics:events:"
	topQueriesKey  = "analytics:top_queries"
)

// AnalyticsRepository keeps the cheap aggregate counters behind the
// analytics summary and popular-query suggestions.
type AnalyticsRepository struct {
	client *redis.Client
}

func NewAnalyticsRepository(client *redis.Client) *AnalyticsRepository {
	return &AnalyticsRepository{
		client: client,
	}
}

func (r *AnalyticsRepository) IncrEvent(ctx context.Context, eventType string) error {
	if err := r.client.Incr(ctx, eventKeyPrefix+eventType).Err(); err != nil {
		return fmt.Errorf("failed to increment event counter: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) RecordQuery(ctx context.Context, query string) error {
	if err := r.client.ZIncrBy(ctx, topQueriesKey, 1, query).Err(); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) EventTotals(ctx context.Context) (map[string]int64, error) {
	types := []string{domain.EventTypeSearch, domain.EventTypeClick, domain.EventTypePurchase}

	keys := make([]string, len(types))
	for i, t := range types {
		keys[i] = eventKeyPrefix + t
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event counters: %w", err)
	}

	totals := make(map[string]int64, len(types))
	for i, t := range types {
		totals[t] = 0
		if s, ok := vals[i].(string); ok {
			var n int64
			if _, err := fmt.Sscan(s, &n); err == nil {
				totals[t] = n
			}
		}
	}

	return totals, nil
}

func (r *AnalyticsRepository) TopQueries(ctx context.Context, limit int) ([]domain.QueryCount, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := r.client.ZRevRangeWithScores(ctx, topQueriesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read top queries: %w", err)
	}

	out := make([]domain.QueryCount, 0, len(entries))
	for _, e := range entries {
		query, ok := e.Member.(string)
		if !ok {
			continue
		}
		out = append(out, domain.QueryCount{
			Query: query,
			Count: int64(e.Score),
		})
	}

	return out, nil
}
