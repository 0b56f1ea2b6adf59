package checkout

import (
	"strings"

	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
)

// DeliveryInfo is the validated shipping destination for one checkout.
type DeliveryInfo struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Province   string `json:"province" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// Normalize validates the semantic rules the struct tags cannot express and
// canonicalizes the country code. It must pass before a session is built.
func (d *DeliveryInfo) Normalize() error {
	details := map[string]string{}

	country, ok := NormalizeCountry(d.Country)
	if !ok {
		details["country"] = "must be CA or US"
	} else {
		d.Country = country
		if !validProvince(country, d.Province) {
			details["province"] = "must be a subdivision of the selected country"
		}
		if !validPostalCode(country, d.PostalCode) {
			details["postal_code"] = "is not a valid postal or ZIP code"
		}
	}

	if !phonePattern.MatchString(strings.TrimSpace(d.Phone)) {
		details["phone"] = "is not a valid phone number"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery info").WithDetails(details)
	}
	return nil
}
