package checkout

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

// MetadataVersion is bumped whenever the key set below changes shape. The
// webhook handler refuses versions it does not understand instead of guessing.
const MetadataVersion = 1

const guestUserID = "guest"

// SessionMetadata is everything the webhook needs to reconstruct an order
// from a completed processor session, round-tripped through the processor's
// string-map metadata.
type SessionMetadata struct {
	Version      int
	UserID       string
	FullName     string
	Phone        string
	Address      string
	City         string
	Province     string
	Country      string
	PostalCode   string
	Currency     string
	ExchangeRate decimal.Decimal
	ItemCount    int
	Items        []types.CartLine
}

// IsGuest reports whether the session was created without an authenticated
// user.
func (m SessionMetadata) IsGuest() bool {
	return m.UserID == "" || m.UserID == guestUserID
}

// Encode flattens the metadata into the processor's string map.
func (m SessionMetadata) Encode() (map[string]string, error) {
	items, err := json.Marshal(m.Items)
	if err != nil {
		return nil, fmt.Errorf("encoding cart items: %w", err)
	}

	userID := m.UserID
	if userID == "" {
		userID = guestUserID
	}

	return map[string]string{
		"version":       strconv.Itoa(MetadataVersion),
		"user_id":       userID,
		"full_name":     m.FullName,
		"phone":         m.Phone,
		"address":       m.Address,
		"city":          m.City,
		"province":      m.Province,
		"country":       m.Country,
		"postal_code":   m.PostalCode,
		"currency":      m.Currency,
		"exchange_rate": m.ExchangeRate.String(),
		"item_count":    strconv.Itoa(m.ItemCount),
		"items":         string(items),
	}, nil
}

// DecodeSessionMetadata parses the string map back into a SessionMetadata.
// Unknown versions and malformed payloads are validation errors; the caller
// dead-letters them rather than persisting a half-understood order.
func DecodeSessionMetadata(raw map[string]string) (SessionMetadata, error) {
	version, err := strconv.Atoi(raw["version"])
	if err != nil || version != MetadataVersion {
		return SessionMetadata{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported session metadata version %q", raw["version"]))
	}

	meta := SessionMetadata{
		Version:    version,
		UserID:     raw["user_id"],
		FullName:   raw["full_name"],
		Phone:      raw["phone"],
		Address:    raw["address"],
		City:       raw["city"],
		Province:   raw["province"],
		Country:    raw["country"],
		PostalCode: raw["postal_code"],
		Currency:   raw["currency"],
	}

	meta.ExchangeRate = decimal.NewFromInt(1)
	if rate := raw["exchange_rate"]; rate != "" {
		parsed, err := decimal.NewFromString(rate)
		if err != nil || !parsed.IsPositive() {
			return SessionMetadata{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid exchange rate %q in session metadata", rate))
		}
		meta.ExchangeRate = parsed
	}

	if count := raw["item_count"]; count != "" {
		parsed, err := strconv.Atoi(count)
		if err != nil || parsed < 0 {
			return SessionMetadata{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid item count %q in session metadata", count))
		}
		meta.ItemCount = parsed
	}

	if items := raw["items"]; items != "" {
		if err := json.Unmarshal([]byte(items), &meta.Items); err != nil {
			return SessionMetadata{}, pkgerrors.New(pkgerrors.CodeValidation,
				"malformed cart items in session metadata")
		}
	}
	if len(meta.Items) == 0 {
		return SessionMetadata{}, pkgerrors.New(pkgerrors.CodeValidation,
			"session metadata carries no cart items")
	}

	return meta, nil
}
