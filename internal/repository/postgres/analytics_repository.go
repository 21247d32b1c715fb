package postgres

import (
	"context"
	"fmt"

	"agrikoSearch/domain"

	"gorm.io/gorm"
)

// AnalyticsRepository is the append-only event log sink.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) SaveEvent(ctx context.Context, event domain.SearchEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save search event: %w", err)
	}

	return nil
}
