package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/icustomerrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iproductrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	customerrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/customer/postgres"
	orderrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/storekit/fulfillment-svc/internal/dal/repositories/product/postgres"
)

// unitOfWork scopes all fulfillment repositories to one pgx transaction.
// Before Begin the repositories run against the pool; Begin rebinds them onto
// the transaction so every write between Begin and Commit is all-or-nothing.
type unitOfWork struct {
	client *postgres.Client
	tx     pgx.Tx

	productRepo   iproductrepo.IProductRepository
	customerRepo  icustomerrepo.ICustomerRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work bound to the pool.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	u := &unitOfWork{client: client}
	u.bind(client.Pool())

	return u
}

func (u *unitOfWork) bind(conn postgres.GenericConn) {
	u.productRepo = productrepo.NewPostgresProductRepository(conn)
	u.customerRepo = customerrepo.NewPostgresCustomerRepository(conn)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.outboxRepo = outboxrepo.NewOutboxRepository(conn)
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) CustomerRepository() icustomerrepo.ICustomerRepository {
	return u.customerRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
