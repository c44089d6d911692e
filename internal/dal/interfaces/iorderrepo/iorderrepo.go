package iorderrepo

import (
	"context"

	"github.com/storekit/fulfillment-svc/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// GetStatusForUpdate reads the current status under a row lock so the
	// transition check and the update form one serialized step.
	GetStatusForUpdate(ctx context.Context, id int64) (order.Status, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
}
