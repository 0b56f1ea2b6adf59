package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shubhavasar/storefront-backend/pkg/config"
)

// CustomSizeToken is the reserved size variant that triggers the per-unit
// customization surcharge. Matching is case-insensitive.
const CustomSizeToken = "custom size"

// Policy is the externalized pricing rule table: tax rate, surcharge fee,
// shipping zones and the optional first-order discount all come from
// configuration, not inline constants.
type Policy struct {
	TaxRate         decimal.Decimal
	CustomSizeFee   decimal.Decimal
	ShippingFlatFee decimal.Decimal

	// FreeZonePrefixes holds normalized 3-character postal prefixes with
	// free shipping. FreeZoneLetter marks an entire leading-letter zone.
	// Membership is the union of both.
	FreeZonePrefixes []string
	FreeZoneLetter   string

	FirstOrderDiscountEnabled bool
	FirstOrderDiscountPercent decimal.Decimal
}

// PolicyFromConfig parses the decimal fields out of the environment config.
func PolicyFromConfig(cfg config.PricingConfig) (Policy, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing tax rate %q: %w", cfg.TaxRate, err)
	}
	customFee, err := decimal.NewFromString(cfg.CustomSizeFee)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing custom size fee %q: %w", cfg.CustomSizeFee, err)
	}
	shippingFee, err := decimal.NewFromString(cfg.ShippingFlatFee)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing shipping flat fee %q: %w", cfg.ShippingFlatFee, err)
	}
	discountPercent, err := decimal.NewFromString(cfg.FirstOrderDiscountPercent)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing first order discount %q: %w", cfg.FirstOrderDiscountPercent, err)
	}

	var prefixes []string
	for _, raw := range strings.Split(cfg.FreeZonePrefixes, ",") {
		prefix := NormalizePostal(raw)
		if prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}

	return Policy{
		TaxRate:                   taxRate,
		CustomSizeFee:             customFee,
		ShippingFlatFee:           shippingFee,
		FreeZonePrefixes:          prefixes,
		FreeZoneLetter:            strings.ToUpper(strings.TrimSpace(cfg.FreeZoneLetter)),
		FirstOrderDiscountEnabled: cfg.FirstOrderDiscountEnabled,
		FirstOrderDiscountPercent: discountPercent,
	}, nil
}

// NormalizePostal strips whitespace and uppercases a postal code for zone
// matching.
func NormalizePostal(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}
