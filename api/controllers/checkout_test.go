package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v84"

	"github.com/shubhavasar/storefront-backend/internal/checkout"
	"github.com/shubhavasar/storefront-backend/internal/pricing"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

type fakeSessionCreator struct {
	lastParams *stripego.CheckoutSessionCreateParams
	err        error
}

func (f *fakeSessionCreator) CreateCheckoutSession(_ context.Context, params *stripego.CheckoutSessionCreateParams) (*stripego.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripego.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil
}

type parRate struct{}

func (parRate) Rate(context.Context, string) decimal.Decimal { return decimal.NewFromInt(1) }

func newCheckoutHandler(t *testing.T, creator *fakeSessionCreator) http.HandlerFunc {
	t.Helper()
	policy, err := pricing.PolicyFromConfig(config.PricingConfig{
		TaxRate:                   "0.13",
		CustomSizeFee:             "15",
		ShippingFlatFee:           "5",
		FreeZoneLetter:            "M",
		FirstOrderDiscountPercent: "0.10",
	})
	require.NoError(t, err)

	svc := checkout.NewService(
		creator,
		policy,
		parRate{},
		nil,
		config.JWTConfig{Secret: "secret", Issuer: "test"},
		config.StripeConfig{SuccessURL: "https://shop.example/success", CancelURL: "https://shop.example/cart"},
		nil,
		nil,
	)
	return CreateCheckoutSession(svc, nil)
}

func checkoutBody(t *testing.T, items []types.CartLine) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"items": items,
		"delivery": map[string]string{
			"full_name":   "Priya Sharma",
			"email":       "priya@example.com",
			"phone":       "+1 416 555 0199",
			"address":     "12 Queen St W",
			"city":        "Toronto",
			"country":     "CA",
			"province":    "Ontario",
			"postal_code": "M5V 2T6",
		},
	})
	require.NoError(t, err)
	return body
}

func TestCreateCheckoutSessionCreated(t *testing.T) {
	creator := &fakeSessionCreator{}
	handler := newCheckoutHandler(t, creator)

	items := []types.CartLine{
		{ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("100.00"), Size: "M", Qty: 1},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", bytes.NewReader(checkoutBody(t, items)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			ID       string `json:"id"`
			URL      string `json:"url"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "cs_test_123", envelope.Data.ID)
	assert.Equal(t, "cad", envelope.Data.Currency)
	require.NotNil(t, creator.lastParams)
}

func TestCreateCheckoutSessionEmptyCartRejected(t *testing.T) {
	creator := &fakeSessionCreator{}
	handler := newCheckoutHandler(t, creator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", bytes.NewReader(checkoutBody(t, nil)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, creator.lastParams)
}

func TestCheckoutEstimateFreeZone(t *testing.T) {
	policy, err := pricing.PolicyFromConfig(config.PricingConfig{
		TaxRate:                   "0.13",
		CustomSizeFee:             "15",
		ShippingFlatFee:           "5",
		FreeZoneLetter:            "M",
		FirstOrderDiscountPercent: "0.10",
	})
	require.NoError(t, err)

	svc := checkout.NewService(nil, policy, parRate{}, nil, config.JWTConfig{}, config.StripeConfig{}, nil, nil)
	handler := CheckoutEstimate(svc, nil)

	body, err := json.Marshal(map[string]any{
		"items": []types.CartLine{
			{ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("100.00"), Size: "M", Qty: 1},
		},
		"postal_code": "M5V 2T6",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/estimate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			Subtotal   decimal.Decimal `json:"subtotal"`
			Shipping   decimal.Decimal `json:"shipping"`
			Tax        decimal.Decimal `json:"tax"`
			GrandTotal decimal.Decimal `json:"grand_total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Shipping.IsZero(), "free delivery zone postal code must waive shipping")
	assert.True(t, envelope.Data.GrandTotal.Equal(decimal.RequireFromString("113")), "got total %s", envelope.Data.GrandTotal)
}

func TestCreateCheckoutSessionMalformedBody(t *testing.T) {
	handler := newCheckoutHandler(t, &fakeSessionCreator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
