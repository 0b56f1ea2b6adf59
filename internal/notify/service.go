package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/db/models"
	"github.com/shubhavasar/storefront-backend/pkg/email"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

// Service sends the storefront's transactional mail: order confirmations,
// contact enquiries and home-visit bookings.
type Service struct {
	sender email.Sender
	cfg    config.EmailConfig
	logg   *logger.Logger
}

func NewService(sender email.Sender, cfg config.EmailConfig, logg *logger.Logger) *Service {
	return &Service{sender: sender, cfg: cfg, logg: logg}
}

// OrderConfirmation mails the purchaser an itemized receipt, BCC to the
// operations address. Callers log failures; a lost email never rolls back a
// recorded order.
func (s *Service) OrderConfirmation(ctx context.Context, order *models.Order) error {
	if s == nil || s.sender == nil {
		return nil
	}
	if order.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no purchaser email")
	}

	var plain strings.Builder
	var rows strings.Builder
	for _, item := range order.Items {
		variant := variantLabel(item.Color, item.Size)
		fmt.Fprintf(&plain, "- %s%s x%d @ %s %s\n",
			item.Name, variant, item.Qty, item.UnitPrice.StringFixed(2), strings.ToUpper(order.Currency))
		fmt.Fprintf(&rows, "<tr><td>%s%s</td><td>%d</td><td>%s %s</td></tr>",
			html.EscapeString(item.Name), html.EscapeString(variant), item.Qty,
			item.UnitPrice.StringFixed(2), strings.ToUpper(order.Currency))
	}

	total := fmt.Sprintf("%s %s", order.AmountTotal.StringFixed(2), strings.ToUpper(order.Currency))
	subject := fmt.Sprintf("Order confirmed — %s", order.OrderNumber)

	msg := email.Message{
		ToName:  order.FullName,
		ToEmail: order.Email,
		BCC:     s.cfg.OpsBCC,
		Subject: subject,
		PlainText: fmt.Sprintf(
			"Hi %s,\n\nThank you for your order %s.\n\n%s\nTotal: %s\n\nWe will ship to:\n%s\n%s, %s %s\n%s\n",
			order.FullName, order.OrderNumber, plain.String(), total,
			order.Address, order.City, order.Province, order.PostalCode, order.Country),
		HTML: fmt.Sprintf(
			"<h2>Thank you for your order</h2><p>Order <strong>%s</strong></p><table>%s</table><p><strong>Total: %s</strong></p><p>Shipping to: %s, %s, %s %s, %s</p>",
			html.EscapeString(order.OrderNumber), rows.String(), total,
			html.EscapeString(order.Address), html.EscapeString(order.City),
			html.EscapeString(order.Province), html.EscapeString(order.PostalCode),
			html.EscapeString(order.Country)),
	}
	return s.sender.Send(ctx, msg)
}

// ContactEnquiry carries a storefront contact-form submission.
type ContactEnquiry struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// SendContactEnquiry notifies the business and confirms receipt to the
// sender. The business email must go through; the user confirmation is
// best-effort.
func (s *Service) SendContactEnquiry(ctx context.Context, enquiry ContactEnquiry) error {
	business := email.Message{
		ToEmail: s.cfg.BusinessTo,
		Subject: fmt.Sprintf("New enquiry from %s", enquiry.Name),
		PlainText: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s\n",
			enquiry.Name, enquiry.Email, enquiry.Phone, enquiry.Message),
	}
	if err := s.sender.Send(ctx, business); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending enquiry notification")
	}

	confirmation := email.Message{
		ToName:  enquiry.Name,
		ToEmail: enquiry.Email,
		Subject: "We received your enquiry",
		PlainText: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We'll get back to you within one business day.\n",
			enquiry.Name),
	}
	if err := s.sender.Send(ctx, confirmation); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("enquiry confirmation email failed: %v", err))
	}
	return nil
}

// HomeVisitBooking carries a request for an at-home showing.
type HomeVisitBooking struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	PreferredDate string
	Requirements  string
}

// SendHomeVisitBooking notifies the business and confirms to the requester.
func (s *Service) SendHomeVisitBooking(ctx context.Context, booking HomeVisitBooking) error {
	business := email.Message{
		ToEmail: s.cfg.BusinessTo,
		Subject: fmt.Sprintf("Home visit request from %s", booking.Name),
		PlainText: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nAddress: %s\nPreferred date: %s\nRequirements: %s\n",
			booking.Name, booking.Email, booking.Phone, booking.Address,
			booking.PreferredDate, booking.Requirements),
	}
	if err := s.sender.Send(ctx, business); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending home visit notification")
	}

	confirmation := email.Message{
		ToName:  booking.Name,
		ToEmail: booking.Email,
		Subject: "Home visit request received",
		PlainText: fmt.Sprintf("Hi %s,\n\nWe received your home visit request for %s and will confirm the appointment shortly.\n",
			booking.Name, booking.PreferredDate),
	}
	if err := s.sender.Send(ctx, confirmation); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("home visit confirmation email failed: %v", err))
	}
	return nil
}

func variantLabel(color, size string) string {
	switch {
	case color != "" && size != "":
		return fmt.Sprintf(" (%s, %s)", color, size)
	case color != "":
		return fmt.Sprintf(" (%s)", color)
	case size != "":
		return fmt.Sprintf(" (%s)", size)
	default:
		return ""
	}
}
