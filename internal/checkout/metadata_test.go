package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhavasar/storefront-backend/pkg/types"
)

func sampleMetadata() SessionMetadata {
	return SessionMetadata{
		Version:      MetadataVersion,
		UserID:       "user-42",
		FullName:     "Priya Sharma",
		Phone:        "+1 416 555 0199",
		Address:      "12 Queen St W",
		City:         "Toronto",
		Province:     "Ontario",
		Country:      CountryCanada,
		PostalCode:   "M5V 2T6",
		Currency:     "cad",
		ExchangeRate: decimal.NewFromInt(1),
		ItemCount:    2,
		Items: []types.CartLine{
			{ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("120.00"), Color: "Red", Size: "M", Qty: 2},
		},
	}
}

func TestSessionMetadataRoundTrip(t *testing.T) {
	original := sampleMetadata()

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeSessionMetadata(encoded)
	require.NoError(t, err)

	assert.Equal(t, original.UserID, decoded.UserID)
	assert.Equal(t, original.FullName, decoded.FullName)
	assert.Equal(t, original.Country, decoded.Country)
	assert.Equal(t, original.PostalCode, decoded.PostalCode)
	assert.Equal(t, original.Currency, decoded.Currency)
	assert.Equal(t, original.ItemCount, decoded.ItemCount)
	assert.True(t, decoded.ExchangeRate.Equal(original.ExchangeRate))
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, "p1", decoded.Items[0].ProductID)
	assert.True(t, decoded.Items[0].UnitPrice.Equal(decimal.RequireFromString("120.00")))
	assert.False(t, decoded.IsGuest())
}

func TestSessionMetadataEncodesGuestPlaceholder(t *testing.T) {
	meta := sampleMetadata()
	meta.UserID = ""

	encoded, err := meta.Encode()
	require.NoError(t, err)
	assert.Equal(t, "guest", encoded["user_id"])

	decoded, err := DecodeSessionMetadata(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.IsGuest())
}

func TestDecodeSessionMetadataRejectsUnknownVersion(t *testing.T) {
	encoded, err := sampleMetadata().Encode()
	require.NoError(t, err)
	encoded["version"] = "99"

	_, err = DecodeSessionMetadata(encoded)
	assert.Error(t, err)
}

func TestDecodeSessionMetadataRejectsMalformedFields(t *testing.T) {
	cases := map[string]map[string]string{
		"missing version": {},
		"bad rate":        mutate(t, "exchange_rate", "zero-ish"),
		"negative count":  mutate(t, "item_count", "-1"),
		"bad items":       mutate(t, "items", "{not json"),
		"empty items":     mutate(t, "items", "[]"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSessionMetadata(raw)
			assert.Error(t, err)
		})
	}
}

func mutate(t *testing.T, key, value string) map[string]string {
	t.Helper()
	encoded, err := sampleMetadata().Encode()
	require.NoError(t, err)
	encoded[key] = value
	return encoded
}
