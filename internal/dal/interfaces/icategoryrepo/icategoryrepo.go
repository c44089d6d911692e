package icategoryrepo

import (
	"context"

	"github.com/storekit/fulfillment-svc/internal/service/models/category"
)

// ICategoryRepository is an interface for the category postgres repository.
type ICategoryRepository interface {
	Query(ctx context.Context) ([]category.Category, error)
}
