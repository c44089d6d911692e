package createorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/services/fulfillment"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type stubService struct {
	got fulfillment.CreateOrderInput
	ord *order.Order
	err error
}

func (s *stubService) CreateOrder(
	_ context.Context,
	in fulfillment.CreateOrderInput,
) (*order.Order, error) {
	s.got = in

	return s.ord, s.err
}

const validBody = `{
	"customer": {"name": "Alice", "phone": "+1", "address": "1 Test St"},
	"items": [{"productId": 1, "quantity": 5}]
}`

func TestCreateOrder_Created(t *testing.T) {
	stub := &stubService{ord: &order.Order{
		ID:          1,
		Status:      order.StatusPending,
		TotalAmount: decimal.RequireFromString("50.00"),
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
	CreateOrder(rec, req, stub)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)
	require.Len(t, stub.got.Items, 1)
	assert.Equal(t, int64(1), stub.got.Items[0].ProductID)
	assert.Equal(t, "Alice", stub.got.Customer.Name)
}

func TestCreateOrder_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"customer":`},
		{name: "missing items", body: `{"customer": {"name": "A", "phone": "1", "address": "x"}}`},
		{name: "zero quantity", body: `{
			"customer": {"name": "A", "phone": "1", "address": "x"},
			"items": [{"productId": 1, "quantity": 0}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubService{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			CreateOrder(rec, req, stub)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unknown product",
			err:        &apperr.NotFoundError{Resource: "product", ID: 9},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "out of stock",
			err:        &apperr.InsufficientStockError{ProductID: 1, Requested: 5, Available: 0},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubService{err: tt.err}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validBody))
			CreateOrder(rec, req, stub)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
