package users

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shubhavasar/storefront-backend/pkg/db/models"
)

// Repository maintains the minimal profile rows mirrored from the auth
// provider. Only order-gating state lives here.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HasMadeOrder reports whether the user completed an order before. Unknown
// users have not.
func (r *Repository) HasMadeOrder(ctx context.Context, userID string) (bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.HasMadeOrder, nil
}

// MarkOrderMade upserts the profile row with the order flag set. Called from
// the payment webhook; failures there are logged, never fatal.
func (r *Repository) MarkOrderMade(ctx context.Context, userID, email string, at time.Time) error {
	user := models.User{
		ID:           userID,
		Email:        email,
		HasMadeOrder: true,
		LastOrderAt:  &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"has_made_order": true,
			"last_order_at":  at,
			"updated_at":     time.Now().UTC(),
		}),
	}).Create(&user).Error
}
