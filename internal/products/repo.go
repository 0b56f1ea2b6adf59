package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shubhavasar/storefront-backend/pkg/db/models"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
)

// Sort orders for catalog listings.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

const (
	defaultLimit = 24
	maxLimit     = 100
)

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	Category string
	Search   string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Sort     string
	Limit    int
	Offset   int
}

// Page is one listing result with the unfiltered-by-pagination total.
type Page struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// Repository serves the read-only catalog.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List applies the filter and returns one page plus the matching total.
func (r *Repository) List(ctx context.Context, filter Filter) (*Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", filter.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Product
	err := query.Order(orderClause(filter.Sort)).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return &Page{Products: rows, Total: total, Limit: limit, Offset: offset}, nil
}

// GetByID loads one catalog row.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC"
	case SortPriceDesc:
		return "price DESC"
	default:
		return "created_at DESC"
	}
}
