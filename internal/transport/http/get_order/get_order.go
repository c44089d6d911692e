package getorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type service interface {
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
}

// GetOrder handles the get order request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "order id must be an integer"})

		return
	}

	ord, err := service.GetOrder(r.Context(), orderID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting order", "order_id", orderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ord); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
