package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/services/fulfillment"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, in fulfillment.CreateOrderInput) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// customerInCreateOrderRequest represents the customer in a create order request.
type customerInCreateOrderRequest struct {
	Name    string `json:"name"    validate:"required"`
	Phone   string `json:"phone"   validate:"required"`
	Address string `json:"address" validate:"required"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Customer customerInCreateOrderRequest `json:"customer" validate:"required"`
	Items    []itemInCreateOrderRequest   `json:"items"    validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toInput() fulfillment.CreateOrderInput {
	items := make([]fulfillment.CreateOrderItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = fulfillment.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return fulfillment.CreateOrderInput{
		Customer: customer.Customer{
			Name:    r.Customer.Name,
			Phone:   r.Customer.Phone,
			Address: r.Customer.Address,
		},
		Items: items,
	}
}

// CreateOrder handles the order placement request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderReq := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "malformed request body"})
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := orderReq.Validate(); err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: err.Error()})
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), orderReq.toInput())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
