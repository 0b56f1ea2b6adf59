package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v84"
)

const testSigningSecret = "whsec_test_secret"

type fakeEventService struct {
	events []stripego.Event
	err    error
}

func (f *fakeEventService) HandleEvent(_ context.Context, event stripego.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeSigningClient struct{ secret string }

func (f *fakeSigningClient) SigningSecret() string { return f.secret }

func eventPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{"id": "cs_1"},
		},
	})
	require.NoError(t, err)
	return payload
}

func signPayload(payload []byte, secret string, at time.Time) string {
	signed := fmt.Sprintf("%d.%s", at.Unix(), payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(handler http.HandlerFunc, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStripeWebhookValidSignature(t *testing.T) {
	service := &fakeEventService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, nil)

	payload := eventPayload(t)
	rec := postWebhook(handler, payload, signPayload(payload, testSigningSecret, time.Now()))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, service.events, 1)
	assert.Equal(t, "evt_1", service.events[0].ID)
	assert.Equal(t, stripego.EventTypeCheckoutSessionCompleted, service.events[0].Type)
}

func TestStripeWebhookGarbageSignatureRejected(t *testing.T) {
	service := &fakeEventService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, nil)

	rec := postWebhook(handler, eventPayload(t), "t=123,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events, "nothing may be processed on a bad signature")
}

func TestStripeWebhookMissingSignatureRejected(t *testing.T) {
	service := &fakeEventService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, nil)

	rec := postWebhook(handler, eventPayload(t), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events)
}

func TestStripeWebhookWrongSecretRejected(t *testing.T) {
	service := &fakeEventService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, nil)

	payload := eventPayload(t)
	rec := postWebhook(handler, payload, signPayload(payload, "whsec_other", time.Now()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events)
}

func TestStripeWebhookStaleTimestampRejected(t *testing.T) {
	service := &fakeEventService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, nil)

	payload := eventPayload(t)
	stale := time.Now().Add(-time.Hour)
	rec := postWebhook(handler, payload, signPayload(payload, testSigningSecret, stale))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events)
}
