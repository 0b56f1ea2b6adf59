package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shubhavasar/storefront-backend/pkg/types"
)

// Breakdown is the priced view of a cart. All figures are decimal currency
// units in the source currency; conversion and minor-unit rounding happen at
// the processor boundary, never here.
type Breakdown struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Surcharge  decimal.Decimal `json:"surcharge"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Options carries per-purchaser pricing inputs.
type Options struct {
	// FirstOrder enables the first-order discount rule when the policy has
	// it switched on. Callers derive it from the purchaser's profile.
	FirstOrder bool
}

// Price computes the full breakdown for a cart delivered to the given postal
// code. An empty cart prices to all zeros; callers block checkout upstream.
func (p Policy) Price(lines []types.CartLine, postalCode string, opts Options) Breakdown {
	subtotal := decimal.Zero
	surcharge := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Qty))
		subtotal = subtotal.Add(line.UnitPrice.Mul(qty))
		if IsCustomSize(line.Size) {
			surcharge = surcharge.Add(p.CustomSizeFee.Mul(qty))
		}
	}

	discount := decimal.Zero
	if p.FirstOrderDiscountEnabled && opts.FirstOrder && subtotal.IsPositive() {
		discount = subtotal.Mul(p.FirstOrderDiscountPercent)
	}

	shipping := decimal.Zero
	if len(lines) > 0 && !p.FreeShipping(postalCode) {
		shipping = p.ShippingFlatFee
	}

	taxable := subtotal.Sub(discount).Add(surcharge).Add(shipping)
	tax := taxable.Mul(p.TaxRate)

	return Breakdown{
		Subtotal:   subtotal,
		Discount:   discount,
		Surcharge:  surcharge,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: taxable.Add(tax),
	}
}

// FreeShipping reports zone membership: the normalized 3-character prefix is
// in the allowlist, or the code starts with the free-zone letter. The two
// checks are a union, not an override.
func (p Policy) FreeShipping(postalCode string) bool {
	normalized := NormalizePostal(postalCode)
	if normalized == "" {
		return false
	}
	if p.FreeZoneLetter != "" && strings.HasPrefix(normalized, p.FreeZoneLetter) {
		return true
	}
	if len(normalized) >= 3 {
		prefix := normalized[:3]
		for _, zone := range p.FreeZonePrefixes {
			if zone == prefix {
				return true
			}
		}
	}
	return false
}

// IsCustomSize matches the reserved surcharge-triggering size token.
func IsCustomSize(size string) bool {
	return strings.EqualFold(strings.TrimSpace(size), CustomSizeToken)
}
