package checkout

import (
	"regexp"
	"strings"

	"github.com/shubhavasar/storefront-backend/internal/fx"
)

// Supported delivery countries.
const (
	CountryCanada = "CA"
	CountryUS     = "US"
)

// provincesByCountry is the subdivision list a delivery province must belong
// to. Mirrors the storefront's shipping footprint.
var provincesByCountry = map[string][]string{
	CountryCanada: {
		"Alberta",
		"British Columbia",
		"Manitoba",
		"New Brunswick",
		"Newfoundland and Labrador",
		"Nova Scotia",
		"Ontario",
		"Prince Edward Island",
		"Quebec",
		"Saskatchewan",
	},
	CountryUS: {
		"California",
		"Texas",
		"New York",
		"Florida",
		"Illinois",
		"Ohio",
		"Georgia",
		"Pennsylvania",
		"North Carolina",
		"Michigan",
	},
}

var (
	canadaPostalPattern = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d$`)
	usZipPattern        = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern        = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)
)

// NormalizeCountry maps the accepted spellings onto the two-letter codes.
func NormalizeCountry(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CA", "CAN", "CANADA":
		return CountryCanada, true
	case "US", "USA", "UNITED STATES":
		return CountryUS, true
	default:
		return "", false
	}
}

// CurrencyForCountry returns the processor currency for a delivery country.
// Canada is the store's default; the US checks out in USD.
func CurrencyForCountry(country string) string {
	if country == CountryUS {
		return "usd"
	}
	return fx.BaseCurrency
}

func validProvince(country, province string) bool {
	province = strings.TrimSpace(province)
	for _, candidate := range provincesByCountry[country] {
		if strings.EqualFold(candidate, province) {
			return true
		}
	}
	return false
}

func validPostalCode(country, postal string) bool {
	postal = strings.TrimSpace(postal)
	switch country {
	case CountryCanada:
		return canadaPostalPattern.MatchString(postal)
	case CountryUS:
		return usZipPattern.MatchString(postal)
	default:
		return false
	}
}
