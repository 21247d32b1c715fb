package domain

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     product_slug     TEXT,
//     product_name     TEXT,
//     product_category TEXT,
//     health_benefits  JSONB,
//     description      TEXT,
//     normal_price     NUMERIC,
//     sale_price       NUMERIC,
//     in_stock         BOOLEAN,
//     embedding        VECTOR(1536),
//     created_at       TIMESTAMPTZ DEFAULT NOW(),
//     updated_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID              uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductSlug     string                      `gorm:"column:product_slug;type:text" json:"product_slug"`
	ProductName     string                      `gorm:"column:product_name;type:text" json:"product_name"`
	ProductCategory string                      `gorm:"column:product_category;type:text" json:"product_category"`
	HealthBenefits  datatypes.JSONSlice[string] `gorm:"column:health_benefits;type:jsonb" json:"health_benefits"`
	Description     string                      `gorm:"column:description;type:text" json:"description"`
	NormalPrice     float64                     `gorm:"column:normal_price;type:numeric" json:"normal_price"`
	SalePrice       float64                     `gorm:"column:sale_price;type:numeric" json:"sale_price"`
	InStock         bool                        `gorm:"column:in_stock;default:true" json:"in_stock"`
	Embedding       pgvector.Vector             `gorm:"column:embedding;type:vector(1536)" json:"-"`
	CreatedAt       time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
