package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog row. Prices are decimal currency units in the store's
// source currency (CAD); conversion happens only at checkout.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	Category    string          `gorm:"column:category;not null;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Image       string          `gorm:"column:image"`
	Colors      []string        `gorm:"column:colors;type:jsonb;serializer:json"`
	Sizes       []string        `gorm:"column:sizes;type:jsonb;serializer:json"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
