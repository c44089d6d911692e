package updatestatus

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
	UpdateStatus(ctx context.Context, orderID int64, next order.Status) (*order.Order, error)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles the order status transition request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "order id must be an integer"})

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "malformed request body"})
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}

	next, err := order.ParseStatus(req.Status)
	if err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "unknown status " + req.Status})

		return
	}

	updated, err := service.UpdateStatus(r.Context(), orderID, next)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order status", "order_id", orderID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
