package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookFailure is the dead-letter row written when a verified payment event
// fails after signature verification. Operators replay from here instead of
// relying solely on processor retries.
type WebhookFailure struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID   string    `gorm:"column:event_id;not null;index"`
	SessionID string    `gorm:"column:session_id"`
	Step      string    `gorm:"column:step;not null"`
	Error     string    `gorm:"column:error;not null"`
	Payload   string    `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
