package listproducts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/internal/transport/http/httperr"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

type service interface {
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type queryProductsRequest struct {
	Ids         []int64 `schema:"ids,omitempty"`
	CategoryIds []int64 `schema:"categoryIds,omitempty"`
	Limit       int     `schema:"limit,omitempty"`
	Offset      int     `schema:"offset,omitempty"`
}

func (q *queryProductsRequest) ToModel() *product.QueryProductsModel {
	return &product.QueryProductsModel{
		Ids:         q.Ids,
		CategoryIds: q.CategoryIds,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
}

// ListProducts handles the storefront product listing request.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.Write(w, &apperr.ValidationError{Reason: "malformed query parameters"})
		slog.Error("Error decoding request", "error", err)

		return
	}

	products, err := service.ListProducts(r.Context(), query.ToModel())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing products", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
