package postgres

import (
	"context"
	"fmt"

	"agrikoSearch/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

// FindByIDs resolves ranked product ids in one batched query. Missing ids
// are simply absent from the result; callers tolerate partial enrichment.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	return products, nil
}
