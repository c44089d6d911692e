package getproduct

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type service interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
}

// GetProduct handles the get product request.
func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "product id must be an integer"})

		return
	}

	p, err := service.GetProduct(r.Context(), productID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting product", "product_id", productID, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
