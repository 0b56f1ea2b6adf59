package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/shubhavasar/storefront-backend/internal/fx"
	"github.com/shubhavasar/storefront-backend/internal/pricing"
	"github.com/shubhavasar/storefront-backend/pkg/auth"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/metrics"
	"github.com/shubhavasar/storefront-backend/pkg/money"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

// SessionCreator is the slice of the payment client the service needs
// (pkg/stripe.Client satisfies it).
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

// RateSource yields the conversion factor from the store currency
// (internal/fx.Converter satisfies it).
type RateSource interface {
	Rate(ctx context.Context, target string) decimal.Decimal
}

// OrderHistory answers whether a user has completed an order before
// (internal/users.Repository satisfies it).
type OrderHistory interface {
	HasMadeOrder(ctx context.Context, userID string) (bool, error)
}

// Service builds hosted checkout sessions. Nothing is persisted here; the
// order only exists once the payment webhook confirms the session.
type Service struct {
	sessions SessionCreator
	policy   pricing.Policy
	rates    RateSource
	history  OrderHistory
	jwt      config.JWTConfig
	urls     config.StripeConfig
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService wires the checkout session builder. history may be nil when the
// first-order discount rule is off.
func NewService(
	sessions SessionCreator,
	policy pricing.Policy,
	rates RateSource,
	history OrderHistory,
	jwtCfg config.JWTConfig,
	stripeCfg config.StripeConfig,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		policy:   policy,
		rates:    rates,
		history:  history,
		jwt:      jwtCfg,
		urls:     stripeCfg,
		metrics:  checkoutMetrics,
		logg:     logg,
	}
}

// Input is one checkout attempt: the cart, where it ships, and an optional
// bearer token from the storefront.
type Input struct {
	Lines       []types.CartLine
	Delivery    DeliveryInfo
	BearerToken string
}

// Result is the created session reference the storefront redirects to.
type Result struct {
	SessionID string            `json:"id"`
	URL       string            `json:"url,omitempty"`
	Currency  string            `json:"currency"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// CreateSession validates the cart and destination, prices everything in the
// delivery currency and opens a hosted session with the processor.
func (s *Service) CreateSession(ctx context.Context, in Input) (*Result, error) {
	if len(in.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := in.Delivery.Normalize(); err != nil {
		return nil, err
	}

	userID := s.resolveIdentity(ctx, in.BearerToken, &in.Delivery)
	currency := CurrencyForCountry(in.Delivery.Country)

	rate := decimal.NewFromInt(1)
	if currency != fx.BaseCurrency && s.rates != nil {
		rate = s.rates.Rate(ctx, currency)
	}

	breakdown := s.policy.Price(in.Lines, in.Delivery.PostalCode, pricing.Options{
		FirstOrder: s.isFirstOrder(ctx, userID),
	})

	meta := SessionMetadata{
		Version:      MetadataVersion,
		UserID:       userID,
		FullName:     in.Delivery.FullName,
		Phone:        in.Delivery.Phone,
		Address:      in.Delivery.Address,
		City:         in.Delivery.City,
		Province:     in.Delivery.Province,
		Country:      in.Delivery.Country,
		PostalCode:   in.Delivery.PostalCode,
		Currency:     currency,
		ExchangeRate: rate,
		// Distinct cart lines, not summed quantities.
		ItemCount:    len(in.Lines),
		Items:        in.Lines,
	}
	encoded, err := meta.Encode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding session metadata")
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.urls.SuccessURL),
		CancelURL:          stripe.String(s.urls.CancelURL),
		CustomerEmail:      stripe.String(in.Delivery.Email),
		LineItems:          s.lineItems(in.Lines, breakdown, currency, rate),
		Metadata:           encoded,
	}

	session, err := s.sessions.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.metrics.IncSessionFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating checkout session")
	}

	s.metrics.IncSessionCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"session_id": session.ID,
			"currency":   currency,
			"item_count": meta.ItemCount,
		}), "checkout session created")
	}

	return &Result{
		SessionID: session.ID,
		URL:       session.URL,
		Currency:  currency,
		Breakdown: breakdown,
	}, nil
}

// Estimate prices a cart without touching the processor. Guests get the
// returning-customer price.
func (s *Service) Estimate(ctx context.Context, lines []types.CartLine, postalCode, bearerToken string) pricing.Breakdown {
	userID := ""
	if bearerToken != "" {
		if identity, err := auth.ParseIdentityToken(s.jwt, bearerToken); err == nil {
			userID = identity.UserID
		}
	}
	return s.policy.Price(lines, postalCode, pricing.Options{
		FirstOrder: s.isFirstOrder(ctx, userID),
	})
}

// resolveIdentity verifies the optional bearer token. Any verification error
// downgrades to guest; a verified token's email overrides the delivery email.
func (s *Service) resolveIdentity(ctx context.Context, token string, delivery *DeliveryInfo) string {
	if token == "" {
		return ""
	}
	identity, err := auth.ParseIdentityToken(s.jwt, token)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("bearer token rejected, continuing as guest: %v", err))
		}
		return ""
	}
	if identity.Email != "" {
		delivery.Email = identity.Email
	}
	return identity.UserID
}

func (s *Service) isFirstOrder(ctx context.Context, userID string) bool {
	if !s.policy.FirstOrderDiscountEnabled || userID == "" || s.history == nil {
		return false
	}
	made, err := s.history.HasMadeOrder(ctx, userID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("order history lookup failed, pricing as returning customer: %v", err))
		}
		return false
	}
	return !made
}

// lineItems renders the priced cart as processor line items. The discount is
// folded into the item unit amounts (the processor rejects negative lines);
// surcharge, shipping and tax ride as their own labelled lines so the hosted
// page itemizes them.
func (s *Service) lineItems(lines []types.CartLine, breakdown pricing.Breakdown, currency string, rate decimal.Decimal) []*stripe.CheckoutSessionCreateLineItemParams {
	itemScale := decimal.NewFromInt(1)
	if breakdown.Discount.IsPositive() && breakdown.Subtotal.IsPositive() {
		itemScale = itemScale.Sub(breakdown.Discount.Div(breakdown.Subtotal))
	}

	items := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(lines)+3)
	for _, line := range lines {
		productData := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
			Name: stripe.String(variantName(line)),
			Metadata: map[string]string{
				"product_id": line.ProductID,
				"color":      line.Color,
				"size":       line.Size,
			},
		}
		if line.Image != "" {
			productData.Images = stripe.StringSlice([]string{line.Image})
		}
		items = append(items, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(money.ToMinorUnits(line.UnitPrice.Mul(itemScale).Mul(rate))),
			},
			Quantity: stripe.Int64(int64(line.Qty)),
		})
	}

	items = appendFeeLine(items, "Customization Fee", breakdown.Surcharge, currency, rate)
	items = appendFeeLine(items, "Shipping Fee", breakdown.Shipping, currency, rate)
	taxLabel := fmt.Sprintf("Tax (%s%%)", s.policy.TaxRate.Mul(decimal.NewFromInt(100)))
	items = appendFeeLine(items, taxLabel, breakdown.Tax, currency, rate)

	return items
}

func appendFeeLine(items []*stripe.CheckoutSessionCreateLineItemParams, name string, amount decimal.Decimal, currency string, rate decimal.Decimal) []*stripe.CheckoutSessionCreateLineItemParams {
	if !amount.IsPositive() {
		return items
	}
	return append(items, &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency: stripe.String(currency),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(money.ToMinorUnits(amount.Mul(rate))),
		},
		Quantity: stripe.Int64(1),
	})
}

func variantName(line types.CartLine) string {
	name := line.Name
	switch {
	case line.Color != "" && line.Size != "":
		name = fmt.Sprintf("%s (%s, %s)", line.Name, line.Color, line.Size)
	case line.Color != "":
		name = fmt.Sprintf("%s (%s)", line.Name, line.Color)
	case line.Size != "":
		name = fmt.Sprintf("%s (%s)", line.Name, line.Size)
	}
	return name
}
