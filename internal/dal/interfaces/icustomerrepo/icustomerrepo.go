package icustomerrepo

import (
	"context"

	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
)

// ICustomerRepository is an interface for the customer postgres repository.
type ICustomerRepository interface {
	Insert(ctx context.Context, c customer.Customer) (customer.Customer, error)
	Query(ctx context.Context, ids []int64) ([]customer.Customer, error)
}
