package models

import "time"

// User mirrors the auth provider's account by its uid. Only order-gating
// state lives here; credentials stay with the provider.
type User struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Email        string     `gorm:"column:email"`
	HasMadeOrder bool       `gorm:"column:has_made_order;not null;default:false"`
	LastOrderAt  *time.Time `gorm:"column:last_order_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
