package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SearchEvent is the append-only analytics event log row.
type SearchEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	SessionID string            `gorm:"column:session_id;not null;index" json:"session_id"`
	EventType string            `gorm:"column:event_type;not null" json:"event_type"`
	Query     string            `gorm:"column:query" json:"query"`
	ProductID uint64            `gorm:"column:product_id" json:"product_id"`
	Value     float64           `gorm:"column:value" json:"value"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SearchEvent) TableName() string {
	return "search_events"
}

const (
	EventTypeSearch   = "search"
	EventTypeClick    = "click"
	EventTypePurchase = "purchase"
)

// AnalyticsSummary aggregates event totals for the admin surface.
type AnalyticsSummary struct {
	ActiveProfiles int              `json:"active_profiles"`
	EventTotals    map[string]int64 `json:"event_totals"`
	TopQueries     []QueryCount     `json:"top_queries"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
