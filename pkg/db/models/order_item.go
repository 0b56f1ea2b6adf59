package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the denormalized line snapshot captured at payment time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID string          `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;not null"`
	Qty       int             `gorm:"column:qty;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric;not null"`
	Image     string          `gorm:"column:image"`
	Color     string          `gorm:"column:color"`
	Size      string          `gorm:"column:size"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
