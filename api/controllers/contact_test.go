package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhavasar/storefront-backend/internal/notify"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/email"
)

type recordingSender struct {
	sent []email.Message
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func newContactHandler(sender *recordingSender) http.HandlerFunc {
	svc := notify.NewService(sender, config.EmailConfig{
		FromEmail:  "noreply@shubhavasar.com",
		BusinessTo: "hello@shubhavasar.com",
		OpsBCC:     "ops@shubhavasar.com",
	}, nil)
	return Contact(svc, nil)
}

func TestContactRelaysBothEmails(t *testing.T) {
	sender := &recordingSender{}
	handler := newContactHandler(sender)

	body, err := json.Marshal(map[string]string{
		"name":    "Priya Sharma",
		"email":   "priya@example.com",
		"phone":   "+1 416 555 0199",
		"message": "Do you ship bridal lehengas to Vancouver?",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, sender.sent, 2, "business notification plus user confirmation")
	assert.Equal(t, "hello@shubhavasar.com", sender.sent[0].ToEmail)
	assert.Equal(t, "priya@example.com", sender.sent[1].ToEmail)
}

func TestContactMissingMessageRejected(t *testing.T) {
	sender := &recordingSender{}
	handler := newContactHandler(sender)

	body, err := json.Marshal(map[string]string{
		"name":  "Priya Sharma",
		"email": "priya@example.com",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sender.sent)
}
