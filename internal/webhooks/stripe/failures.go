package stripe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhavasar/storefront-backend/pkg/db/models"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

// Processing steps recorded with dead-lettered events.
const (
	StepDecodeSession  = "decode_session"
	StepDecodeMetadata = "decode_metadata"
	StepPersistOrder   = "persist_order"
)

// FailureRecorder writes dead-letter rows for verified events that failed
// downstream, so operators can replay them.
type FailureRecorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

func NewFailureRecorder(db *gorm.DB, logg *logger.Logger) *FailureRecorder {
	return &FailureRecorder{db: db, logg: logg}
}

// Record stores one failure. Its own errors are only logged; dead-lettering
// must never turn an ack into a retry storm.
func (r *FailureRecorder) Record(ctx context.Context, eventID, sessionID, step string, cause error, payload []byte) {
	if r == nil || r.db == nil {
		return
	}
	failure := models.WebhookFailure{
		ID:        uuid.New(),
		EventID:   eventID,
		SessionID: sessionID,
		Step:      step,
		Error:     cause.Error(),
		Payload:   string(payload),
	}
	if err := r.db.WithContext(ctx).Create(&failure).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, fmt.Sprintf("writing webhook dead letter for event %s", eventID), err)
	}
}
