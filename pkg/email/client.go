package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shubhavasar/storefront-backend/pkg/config"
)

// Message is one outbound transactional email.
type Message struct {
	ToName    string
	ToEmail   string
	BCC       string
	Subject   string
	PlainText string
	HTML      string
}

// Sender is the relay surface consumed by the notifier.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client sends transactional mail through Sendgrid.
type Client struct {
	api       *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewClient validates config and builds the Sendgrid client.
func NewClient(cfg config.EmailConfig) (*Client, error) {
	if strings.TrimSpace(cfg.SendgridAPIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("from email is required")
	}
	return &Client{
		api:       sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}, nil
}

// Send relays one message. Non-2xx responses from the relay are errors.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.api == nil {
		return errors.New("email client not initialized")
	}
	if strings.TrimSpace(msg.ToEmail) == "" {
		return errors.New("recipient email is required")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(c.fromName, c.fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.ToEmail))
	if bcc := strings.TrimSpace(msg.BCC); bcc != "" && !strings.EqualFold(bcc, msg.ToEmail) {
		p.AddBCCs(mail.NewEmail("", bcc))
	}
	m.AddPersonalizations(p)

	if msg.PlainText != "" {
		m.AddContent(mail.NewContent("text/plain", msg.PlainText))
	}
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	resp, err := c.api.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
