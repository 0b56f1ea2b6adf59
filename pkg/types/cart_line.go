package types

import "github.com/shopspring/decimal"

// CartLine is one cart entry. Line identity is (product id, color, size);
// the same product in another color or size is a separate line.
type CartLine struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	Qty       int             `json:"qty" validate:"required,min=1"`
}

// SameVariant reports whether two lines refer to the same product variant.
func (l CartLine) SameVariant(other CartLine) bool {
	return l.ProductID == other.ProductID && l.Color == other.Color && l.Size == other.Size
}
