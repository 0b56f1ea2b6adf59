package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhavasar/storefront-backend/internal/cart"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

type memoryCartStore struct {
	values map[string]string
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{values: map[string]string{}}
}

func (m *memoryCartStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryCartStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryCartStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryCartStore) CartKey(sessionID string) string { return "cart:" + sessionID }

func cartRequest(t *testing.T, method, path string, body any, sessionID string) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set("X-Cart-Session", sessionID)
	}
	return req
}

func decodeCart(t *testing.T, body []byte) cart.Snapshot {
	t.Helper()
	var envelope struct {
		Data cart.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestCartFetchMissingSessionHeader(t *testing.T) {
	handler := CartFetch(cart.NewService(newMemoryCartStore()), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, cartRequest(t, http.MethodGet, "/api/v1/cart", nil, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartFetchEmptyCart(t *testing.T) {
	handler := CartFetch(cart.NewService(newMemoryCartStore()), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, cartRequest(t, http.MethodGet, "/api/v1/cart", nil, "sess-1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeCart(t, rec.Body.Bytes()).Lines)
}

func TestCartAddThenMerge(t *testing.T) {
	svc := cart.NewService(newMemoryCartStore())
	add := CartAdd(svc, nil)

	line := types.CartLine{
		ProductID: "p1",
		Name:      "Silk Saree",
		UnitPrice: decimal.RequireFromString("100.00"),
		Color:     "Red",
		Size:      "M",
		Qty:       1,
	}
	body := map[string]any{"item": line}

	rec := httptest.NewRecorder()
	add.ServeHTTP(rec, cartRequest(t, http.MethodPost, "/api/v1/cart/items", body, "sess-1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Same variant again merges instead of duplicating.
	rec = httptest.NewRecorder()
	add.ServeHTTP(rec, cartRequest(t, http.MethodPost, "/api/v1/cart/items", body, "sess-1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	snapshot := decodeCart(t, rec.Body.Bytes())
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].Qty)
}

func TestCartUpdateQuantity(t *testing.T) {
	svc := cart.NewService(newMemoryCartStore())
	_, err := svc.Add(context.Background(), "sess-1", types.CartLine{
		ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("100.00"), Size: "M", Qty: 1,
	})
	require.NoError(t, err)

	handler := CartUpdateQuantity(svc, nil)
	body := map[string]any{"product_id": "p1", "size": "M", "qty": 3}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, cartRequest(t, http.MethodPatch, "/api/v1/cart/items", body, "sess-1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snapshot := decodeCart(t, rec.Body.Bytes())
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 3, snapshot.Lines[0].Qty)
}

func TestCartUpdateMissingLine(t *testing.T) {
	handler := CartUpdateQuantity(cart.NewService(newMemoryCartStore()), nil)

	body := map[string]any{"product_id": "missing", "qty": 2}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, cartRequest(t, http.MethodPatch, "/api/v1/cart/items", body, "sess-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRemoveAndClear(t *testing.T) {
	store := newMemoryCartStore()
	svc := cart.NewService(store)
	_, err := svc.Add(context.Background(), "sess-1", types.CartLine{
		ProductID: "p1", Name: "Silk Saree", UnitPrice: decimal.RequireFromString("100.00"), Qty: 1,
	})
	require.NoError(t, err)

	remove := CartRemove(svc, nil)
	rec := httptest.NewRecorder()
	remove.ServeHTTP(rec, cartRequest(t, http.MethodDelete, "/api/v1/cart/items", map[string]any{"product_id": "p1"}, "sess-1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeCart(t, rec.Body.Bytes()).Lines)

	clear := CartClear(svc, nil)
	rec = httptest.NewRecorder()
	clear.ServeHTTP(rec, cartRequest(t, http.MethodDelete, "/api/v1/cart", nil, "sess-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.values)
}
