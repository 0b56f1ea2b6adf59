package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shubhavasar/storefront-backend/pkg/db"
	"github.com/shubhavasar/storefront-backend/pkg/db/models"
)

// Repository stores per-user saved products with toggle semantics: adding an
// existing entry is a no-op, never an error.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add saves a product for the user. Duplicates are ignored.
func (r *Repository) Add(ctx context.Context, userID string, productID uuid.UUID) error {
	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil && db.IsUniqueViolation(err, "idx_wishlist_user_product") {
		return nil
	}
	return err
}

// Remove drops the product from the user's wishlist. Removing an absent entry
// is a no-op.
func (r *Repository) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

// List returns the user's saved product ids, newest first.
func (r *Repository) List(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids, nil
}
