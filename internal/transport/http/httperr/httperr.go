package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type errorResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"productId,omitempty"`
	Available int    `json:"available,omitempty"`
}

// Write maps a service error onto the HTTP surface. PersistenceError stays a
// generic 500: storage diagnostics never reach the caller.
func Write(w http.ResponseWriter, err error) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		stock      *apperr.InsufficientStockError
		conflict   *apperr.ConflictError
	)

	status := http.StatusInternalServerError
	resp := errorResponse{Error: "internal server error"}

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		resp.Error = validation.Error()
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		resp.Error = notFound.Error()
	case errors.As(err, &stock):
		status = http.StatusConflict
		resp.Error = stock.Error()
		resp.ProductID = stock.ProductID
		resp.Available = stock.Available
	case errors.As(err, &conflict):
		status = http.StatusConflict
		resp.Error = conflict.Error()
	default:
		slog.Error("Unhandled service error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.Error("Error writing error response", "error", encErr)
	}
}
