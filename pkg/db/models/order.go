package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus values. This pipeline only records the success path.
const OrderStatusPaid = "paid"

// Order is the durable record written once per confirmed payment event.
// StripeSessionID carries a unique index so webhook redelivery is a no-op.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StripeSessionID string          `gorm:"column:stripe_session_id;uniqueIndex;not null"`
	OrderNumber     string          `gorm:"column:order_number;not null"`
	UserID          string          `gorm:"column:user_id;not null;index"`
	Email           string          `gorm:"column:email"`
	FullName        string          `gorm:"column:full_name"`
	Phone           string          `gorm:"column:phone"`
	Address         string          `gorm:"column:address"`
	City            string          `gorm:"column:city"`
	Province        string          `gorm:"column:province"`
	Country         string          `gorm:"column:country"`
	PostalCode      string          `gorm:"column:postal_code"`
	Currency        string          `gorm:"column:currency;not null"`
	ExchangeRate    decimal.Decimal `gorm:"column:exchange_rate;type:numeric;not null"`
	AmountTotal     decimal.Decimal `gorm:"column:amount_total;type:numeric;not null"`
	ItemCount       int             `gorm:"column:item_count;not null"`
	Status          string          `gorm:"column:status;not null;default:'paid'"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
