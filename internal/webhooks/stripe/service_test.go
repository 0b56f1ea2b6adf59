package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shubhavasar/storefront-backend/internal/checkout"
	"github.com/shubhavasar/storefront-backend/internal/orders"
	"github.com/shubhavasar/storefront-backend/internal/users"
	"github.com/shubhavasar/storefront-backend/pkg/db/models"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.User{}, &models.WebhookFailure{},
	))
	return conn
}

type fakeNotifier struct {
	confirmed []*models.Order
	err       error
}

func (f *fakeNotifier) OrderConfirmation(_ context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, order)
	return nil
}

type fakeGuardStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeGuardStore() *fakeGuardStore {
	return &fakeGuardStore{seen: map[string]bool{}}
}

func (f *fakeGuardStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeGuardStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (f *fakeGuardStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.seen, key)
	}
	return nil
}

type failingOrderWriter struct{}

func (failingOrderWriter) CreateIfAbsent(context.Context, *models.Order) (bool, error) {
	return false, errors.New("db unavailable")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fixture struct {
	conn     *gorm.DB
	service  *Service
	notifier *fakeNotifier
	orders   *orders.Repository
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()
	conn := openTestDB(t)
	logg := testLogger()
	f := &fixture{
		conn:     conn,
		notifier: &fakeNotifier{},
		orders:   orders.NewRepository(conn),
	}
	f.service = NewService(
		f.orders,
		users.NewRepository(conn),
		f.notifier,
		NewFailureRecorder(conn, logg),
		NewEventGuard(nil, time.Hour, logg),
		nil,
		logg,
	)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func sessionMetadata(userID string) map[string]string {
	meta := checkout.SessionMetadata{
		Version:      checkout.MetadataVersion,
		UserID:       userID,
		FullName:     "Priya Sharma",
		Phone:        "+1 416 555 0199",
		Address:      "12 Queen St W",
		City:         "Toronto",
		Province:     "Ontario",
		Country:      "CA",
		PostalCode:   "M5V 2T6",
		Currency:     "cad",
		ExchangeRate: decimal.NewFromInt(1),
		ItemCount:    1,
		Items: []types.CartLine{
			{ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("100.00"), Size: "M", Qty: 1},
		},
	}
	encoded, err := meta.Encode()
	if err != nil {
		panic(err)
	}
	return encoded
}

func completedEvent(t *testing.T, eventID, sessionID string, metadata map[string]string) stripego.Event {
	t.Helper()
	session := map[string]any{
		"id":           sessionID,
		"amount_total": 11300,
		"currency":     "cad",
		"customer_details": map[string]any{
			"email": "priya@example.com",
		},
		"metadata": metadata,
	}
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	return stripego.Event{
		ID:   eventID,
		Type: stripego.EventTypeCheckoutSessionCompleted,
		Data: &stripego.EventData{Raw: raw},
	}
}

func TestHandleEventRecordsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.service.HandleEvent(ctx, completedEvent(t, "evt_1", "cs_1", sessionMetadata("user-42")))
	require.NoError(t, err)

	order, err := f.orders.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "user-42", order.UserID)
	assert.Equal(t, "priya@example.com", order.Email)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	// Amount comes from the confirmed session (11300 minor units), not from
	// recomputing the cart.
	assert.True(t, order.AmountTotal.Equal(decimal.RequireFromString("113")))
	assert.Equal(t, "cad", order.Currency)
	require.Regexp(t, `^ORD-\d{14}$`, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Silk Saree", order.Items[0].Name)

	// Profile flag was upserted.
	var user models.User
	require.NoError(t, f.conn.First(&user, "id = ?", "user-42").Error)
	assert.True(t, user.HasMadeOrder)
	require.NotNil(t, user.LastOrderAt)

	// Confirmation email went out.
	require.Len(t, f.notifier.confirmed, 1)
	assert.Equal(t, order.OrderNumber, f.notifier.confirmed[0].OrderNumber)
}

func TestHandleEventRedeliveryIsNoOp(t *testing.T) {
	// No redis guard wired: the conditional insert alone must keep the order
	// count at one.
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.HandleEvent(ctx, completedEvent(t, "evt_1", "cs_1", sessionMetadata("user-42"))))
	require.NoError(t, f.service.HandleEvent(ctx, completedEvent(t, "evt_2", "cs_1", sessionMetadata("user-42"))))

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	// Only the first delivery sends mail.
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestHandleEventGuardFiltersRepeatedEventID(t *testing.T) {
	store := newFakeGuardStore()
	f := newFixture(t, func(f *fixture) {
		f.service.guard = NewEventGuard(store, time.Hour, testLogger())
	})
	ctx := context.Background()

	event := completedEvent(t, "evt_1", "cs_1", sessionMetadata("user-42"))
	require.NoError(t, f.service.HandleEvent(ctx, event))
	require.NoError(t, f.service.HandleEvent(ctx, event))

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	f := newFixture(t)

	err := f.service.HandleEvent(context.Background(), stripego.Event{
		ID:   "evt_1",
		Type: stripego.EventTypePaymentIntentCreated,
		Data: &stripego.EventData{Raw: []byte(`{}`)},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleEventGuestSessionSkipsOrder(t *testing.T) {
	f := newFixture(t)

	err := f.service.HandleEvent(context.Background(), completedEvent(t, "evt_1", "cs_1", sessionMetadata("")))
	require.NoError(t, err)

	var orderCount, failureCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.conn.Model(&models.WebhookFailure{}).Count(&failureCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, failureCount)
	assert.Empty(t, f.notifier.confirmed)
}

func TestHandleEventBadMetadataDeadLetters(t *testing.T) {
	f := newFixture(t)

	metadata := sessionMetadata("user-42")
	metadata["version"] = "99"
	err := f.service.HandleEvent(context.Background(), completedEvent(t, "evt_1", "cs_1", metadata))
	require.NoError(t, err, "downstream failures must still ack")

	var failure models.WebhookFailure
	require.NoError(t, f.conn.First(&failure).Error)
	assert.Equal(t, "evt_1", failure.EventID)
	assert.Equal(t, "cs_1", failure.SessionID)
	assert.Equal(t, StepDecodeMetadata, failure.Step)
	assert.NotEmpty(t, failure.Payload)
}

func TestHandleEventPersistFailureDeadLettersAndReleasesGuard(t *testing.T) {
	store := newFakeGuardStore()
	f := newFixture(t, func(f *fixture) {
		f.service.orders = failingOrderWriter{}
		f.service.guard = NewEventGuard(store, time.Hour, testLogger())
	})

	err := f.service.HandleEvent(context.Background(), completedEvent(t, "evt_1", "cs_1", sessionMetadata("user-42")))
	require.NoError(t, err, "persistence failures are dead-lettered, not bounced")

	var failure models.WebhookFailure
	require.NoError(t, f.conn.First(&failure).Error)
	assert.Equal(t, StepPersistOrder, failure.Step)

	// The guard slot is released so the processor's retry gets through once
	// the database recovers.
	assert.Empty(t, store.seen)
}
