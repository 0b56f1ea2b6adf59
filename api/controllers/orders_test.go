package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shubhavasar/storefront-backend/api/middleware"
	"github.com/shubhavasar/storefront-backend/internal/orders"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/db/models"
)

var testJWT = config.JWTConfig{Secret: "unit-test-secret", Issuer: "storefront-auth"}

func openOrdersDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return conn
}

func seedOrder(t *testing.T, repo *orders.Repository, sessionID, userID string) *models.Order {
	t.Helper()
	order := &models.Order{
		StripeSessionID: sessionID,
		OrderNumber:     "ORD-20250801120000",
		UserID:          userID,
		Email:           "priya@example.com",
		Currency:        "cad",
		ExchangeRate:    decimal.NewFromInt(1),
		AmountTotal:     decimal.RequireFromString("113.00"),
		ItemCount:       1,
		Status:          models.OrderStatusPaid,
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Silk Saree", Qty: 1, UnitPrice: decimal.RequireFromString("100.00")},
		},
	}
	created, err := repo.CreateIfAbsent(context.Background(), order)
	require.NoError(t, err)
	require.True(t, created)
	return order
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": testJWT.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWT.Secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func ordersRouter(repo *orders.Repository) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OptionalAuth(testJWT, nil))
	r.Get("/orders", OrdersList(repo, nil))
	r.Get("/orders/{orderId}", OrdersDetail(repo, nil))
	return r
}

func TestOrdersListRequiresUserID(t *testing.T) {
	router := ordersRouter(orders.NewRepository(openOrdersDB(t)))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersListReturnsHistory(t *testing.T) {
	repo := orders.NewRepository(openOrdersDB(t))
	seedOrder(t, repo, "cs_1", "user-1")
	router := ordersRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var envelope struct {
		Data []orders.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "ORD-20250801120000", envelope.Data[0].OrderNumber)
	require.Len(t, envelope.Data[0].Items, 1)
}

func TestOrdersListTokenMismatchForbidden(t *testing.T) {
	repo := orders.NewRepository(openOrdersDB(t))
	seedOrder(t, repo, "cs_1", "user-1")
	router := ordersRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders?user_id=user-1", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-2"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrdersDetailOwnerOnly(t *testing.T) {
	repo := orders.NewRepository(openOrdersDB(t))
	order := seedOrder(t, repo, "cs_1", "user-1")
	router := ordersRouter(repo)

	// Owner sees the order.
	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Another signed-in user does not.
	req = httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil)
	req.Header.Set("Authorization", bearerFor(t, "user-2"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrdersDetailInvalidID(t *testing.T) {
	router := ordersRouter(orders.NewRepository(openOrdersDB(t)))

	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
