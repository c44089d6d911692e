package iproductrepo

import (
	"context"

	"github.com/storekit/fulfillment-svc/internal/service/models/product"
)

// IProductRepository is an interface for the product postgres repository.
type IProductRepository interface {
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)

	// ConditionalDecrementStock subtracts quantity from the product's stock as
	// one indivisible operation, failing without mutation when stock is short.
	// It returns the remaining stock on success, apperr.NotFoundError for an
	// unknown product and apperr.InsufficientStockError on a short row.
	ConditionalDecrementStock(ctx context.Context, productID int64, quantity int) (int, error)
}
