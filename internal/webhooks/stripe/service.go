package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v84"

	"github.com/shubhavasar/storefront-backend/internal/checkout"
	"github.com/shubhavasar/storefront-backend/pkg/db/models"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/metrics"
	"github.com/shubhavasar/storefront-backend/pkg/money"
)

// Delivery outcomes reported to metrics.
const (
	OutcomeProcessed  = "processed"
	OutcomeIgnored    = "ignored"
	OutcomeDuplicate  = "duplicate"
	OutcomeDeadLetter = "dead_letter"
)

const orderNumberLayout = "20060102150405"

// OrderWriter persists confirmed orders (internal/orders.Repository).
type OrderWriter interface {
	CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error)
}

// ProfileMarker flags the purchaser's profile (internal/users.Repository).
type ProfileMarker interface {
	MarkOrderMade(ctx context.Context, userID, email string, at time.Time) error
}

// Notifier sends the confirmation email (internal/notify.Service).
type Notifier interface {
	OrderConfirmation(ctx context.Context, order *models.Order) error
}

// Service turns verified payment events into orders. Every path after
// signature verification acks the delivery; failures go to the dead-letter
// table instead of bouncing back to the processor.
type Service struct {
	orders   OrderWriter
	profiles ProfileMarker
	notifier Notifier
	failures *FailureRecorder
	guard    *EventGuard
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(
	orders OrderWriter,
	profiles ProfileMarker,
	notifier Notifier,
	failures *FailureRecorder,
	guard *EventGuard,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) *Service {
	return &Service{
		orders:   orders,
		profiles: profiles,
		notifier: notifier,
		failures: failures,
		guard:    guard,
		metrics:  checkoutMetrics,
		logg:     logg,
		now:      time.Now,
	}
}

// HandleEvent processes one verified event. The returned error is always nil
// for business failures; only a nil receiver misuse would surface here. The
// controller translates nil into a 200 ack.
func (s *Service) HandleEvent(ctx context.Context, event stripego.Event) error {
	ctx = s.withEventContext(ctx, event.ID)

	if event.Type != stripego.EventTypeCheckoutSessionCompleted {
		s.metrics.IncWebhook(OutcomeIgnored)
		s.logg.Info(ctx, fmt.Sprintf("ignoring event type %s", event.Type))
		return nil
	}

	if !s.guard.FirstDelivery(ctx, event.ID) {
		s.metrics.IncWebhook(OutcomeDuplicate)
		s.logg.Info(ctx, "duplicate event delivery filtered")
		return nil
	}

	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.deadLetter(ctx, event.ID, "", StepDecodeSession, err, event.Data.Raw)
		return nil
	}
	ctx = s.logg.WithField(ctx, "session_id", session.ID)

	meta, err := checkout.DecodeSessionMetadata(session.Metadata)
	if err != nil {
		s.deadLetter(ctx, event.ID, session.ID, StepDecodeMetadata, err, event.Data.Raw)
		return nil
	}

	if meta.IsGuest() {
		// No account to attach the order to; the payment still succeeded and
		// the hosted page showed the receipt.
		s.metrics.IncWebhook(OutcomeIgnored)
		s.logg.Warn(ctx, "completed session has no user id, skipping order record")
		return nil
	}

	order := s.buildOrder(session, meta)
	created, err := s.orders.CreateIfAbsent(ctx, order)
	if err != nil {
		s.deadLetter(ctx, event.ID, session.ID, StepPersistOrder, err, event.Data.Raw)
		s.guard.Release(ctx, event.ID)
		return nil
	}
	if !created {
		s.metrics.IncWebhook(OutcomeDuplicate)
		s.logg.Info(ctx, "order already recorded for session")
		return nil
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if err := s.profiles.MarkOrderMade(ctx, order.UserID, order.Email, order.CreatedAt); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("marking purchaser profile failed: %v", err))
	}

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmation(ctx, order); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("order confirmation email failed: %v", err))
		}
	}

	s.metrics.IncWebhook(OutcomeProcessed)
	s.logg.Info(ctx, fmt.Sprintf("order %s recorded", order.OrderNumber))
	return nil
}

// buildOrder assembles the durable record. The amount and currency come from
// the confirmed session, never recomputed from the cart.
func (s *Service) buildOrder(session stripego.CheckoutSession, meta checkout.SessionMetadata) *models.Order {
	now := s.now().UTC()

	currency := strings.ToLower(string(session.Currency))
	if currency == "" {
		currency = meta.Currency
	}

	purchaserEmail := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		purchaserEmail = session.CustomerDetails.Email
	}

	items := make([]models.OrderItem, 0, len(meta.Items))
	for _, line := range meta.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Image:     line.Image,
			Color:     line.Color,
			Size:      line.Size,
		})
	}

	return &models.Order{
		StripeSessionID: session.ID,
		OrderNumber:     "ORD-" + now.Format(orderNumberLayout),
		UserID:          meta.UserID,
		Email:           purchaserEmail,
		FullName:        meta.FullName,
		Phone:           meta.Phone,
		Address:         meta.Address,
		City:            meta.City,
		Province:        meta.Province,
		Country:         meta.Country,
		PostalCode:      meta.PostalCode,
		Currency:        currency,
		ExchangeRate:    meta.ExchangeRate,
		AmountTotal:     money.FromMinorUnits(session.AmountTotal),
		ItemCount:       meta.ItemCount,
		Status:          models.OrderStatusPaid,
		Items:           items,
		CreatedAt:       now,
	}
}

func (s *Service) deadLetter(ctx context.Context, eventID, sessionID, step string, cause error, payload []byte) {
	s.metrics.IncWebhook(OutcomeDeadLetter)
	s.logg.Error(ctx, fmt.Sprintf("webhook processing failed at %s", step), cause)
	s.failures.Record(ctx, eventID, sessionID, step, cause, payload)
}

func (s *Service) withEventContext(ctx context.Context, eventID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithEventID(ctx, eventID)
}
