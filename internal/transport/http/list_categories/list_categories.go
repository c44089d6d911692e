package listcategories

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/storekit/fulfillment-svc/internal/service/models/category"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
)

type service interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
}

// ListCategories handles the category listing request.
func ListCategories(w http.ResponseWriter, r *http.Request, service service) {
	categories, err := service.ListCategories(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing categories", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(categories); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
