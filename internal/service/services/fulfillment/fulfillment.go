package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/icustomerrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iproductrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/postgres"
	"github.com/storekit/fulfillment-svc/internal/dal/uow"
	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/models/orderitem"
	"github.com/storekit/fulfillment-svc/internal/service/models/outbox"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// Service coordinates order placement: validation, pricing, stock reservation
// and atomic persistence of the order aggregate.
type Service struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.IProductRepository
	CustomerRepository() icustomerrepo.ICustomerRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// option is a function that configures the Service.
type option func(*Service)

// MustNewService creates a new fulfillment Service.
func MustNewService(opts ...option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the Service.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *Service) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how units of work are produced.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *Service) {
		s.newUOW = factory
	}
}

// CreateOrderItemInput is one requested line item.
type CreateOrderItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput is the full order placement request.
type CreateOrderInput struct {
	Customer customer.Customer
	Items    []CreateOrderItemInput
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return &apperr.ValidationError{Reason: "order must contain at least one item"}
	}
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return &apperr.ValidationError{
				Reason: fmt.Sprintf("item %d: product id must be positive", i),
			}
		}
		if item.Quantity <= 0 {
			return &apperr.ValidationError{
				Reason: fmt.Sprintf("item %d: quantity must be positive", i),
			}
		}
	}

	return nil
}

// CreateOrder places an order: it resolves and price-snapshots every requested
// product, verifies stock, then persists customer, order header, stock
// decrements, items and the outbox event in one transaction. Any failure rolls
// the whole unit back; duplicate product ids stay separate line items.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*order.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	work := s.newUOW()

	// Resolve products and lock in prices before opening the transaction.
	// The pre-check keeps obviously doomed orders out of the write path; the
	// conditional decrement below remains the real oversell guard.
	products, err := s.resolveProducts(ctx, work.ProductRepository(), in.Items)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	items := make([]orderitem.OrderItem, len(in.Items))
	total := decimal.Zero
	for i, reqItem := range in.Items {
		p := products[reqItem.ProductID]
		items[i] = orderitem.OrderItem{
			ProductID:       reqItem.ProductID,
			Quantity:        reqItem.Quantity,
			PriceAtPurchase: p.Price,
		}
		total = total.Add(items[i].Subtotal())
	}

	if err := work.Begin(ctx); err != nil {
		return nil, apperr.Wrap(err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Failed to roll back order transaction", "error", rbErr)
		}
	}()

	cust, err := work.CustomerRepository().Insert(ctx, in.Customer)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	ord, err := work.OrderRepository().Insert(ctx, order.Order{
		CustomerID:  cust.ID,
		Status:      order.StatusPending,
		TotalAmount: total,
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	// Per-line conditional decrements. A concurrent order that consumed the
	// stock between the pre-check and this point fails here and aborts the
	// whole unit, leaving the store untouched.
	for i := range items {
		remaining, err := work.ProductRepository().ConditionalDecrementStock(
			ctx, items[i].ProductID, items[i].Quantity,
		)
		if err != nil {
			return nil, apperr.Wrap(err)
		}

		snapshot := *products[items[i].ProductID]
		snapshot.StockQuantity = remaining
		products[items[i].ProductID] = &snapshot
		items[i].OrderID = ord.ID
	}

	items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}
	ord.Items = items
	ord.Customer = &cust

	if err := s.stageOrderCreatedEvent(ctx, work.OutboxRepository(), ord); err != nil {
		return nil, apperr.Wrap(err)
	}

	if err := work.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err)
	}
	committed = true

	return &ord, nil
}

// resolveProducts fetches every distinct requested product and runs the
// initial stock check. Duplicate product ids in the request share one fetch
// but are validated per line.
func (s *Service) resolveProducts(
	ctx context.Context,
	repo iproductrepo.IProductRepository,
	items []CreateOrderItemInput,
) (map[int64]*product.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := repo.Query(ctx, &product.QueryProductsModel{Ids: ids})
	if err != nil {
		return nil, err
	}

	products := make(map[int64]*product.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, &apperr.NotFoundError{Resource: "product", ID: item.ProductID}
		}
		if item.Quantity > p.StockQuantity {
			return nil, &apperr.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: p.StockQuantity,
			}
		}
	}

	return products, nil
}

func (s *Service) stageOrderCreatedEvent(
	ctx context.Context,
	repo ioutboxrepo.IOutboxRepository,
	ord order.Order,
) error {
	payload, err := json.Marshal(ord)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	queueName := viper.GetString("rabbitmq.order_created_queue")
	if queueName == "" {
		queueName = "fulfillment.order.created"
	}
	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return repo.Insert(ctx, outbox.OutboxMessage{
		QueueName:   queueName,
		RoutingKey:  queueName,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}

// UpdateStatus moves an order along the status state machine. The current
// status is read under a row lock so concurrent transitions serialize.
func (s *Service) UpdateStatus(
	ctx context.Context,
	orderID int64,
	next order.Status,
) (*order.Order, error) {
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, apperr.Wrap(err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Failed to roll back status transaction", "error", rbErr)
		}
	}()

	current, err := work.OrderRepository().GetStatusForUpdate(ctx, orderID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	if !current.CanTransitionTo(next) {
		return nil, &apperr.ConflictError{From: current.String(), To: next.String()}
	}

	if err := work.OrderRepository().UpdateStatus(ctx, orderID, next); err != nil {
		return nil, apperr.Wrap(err)
	}

	if err := work.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err)
	}
	committed = true

	return s.GetOrder(ctx, orderID)
}

// GetOrder returns one order aggregate.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	orders, err := s.ListOrders(ctx, &order.QueryOrdersModel{Ids: []int64{orderID}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &apperr.NotFoundError{Resource: "order", ID: orderID}
	}

	return &orders[0], nil
}

// ListOrders retrieves order aggregates (headers, items, product snapshots and
// customers) matching the filter.
func (s *Service) ListOrders(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIds := make([]int64, len(orders))
	customerIds := make([]int64, len(orders))
	for i, o := range orders {
		orderIds[i] = o.ID
		customerIds[i] = o.CustomerID
	}

	items, err := work.OrderItemRepository().Query(
		ctx,
		&orderitem.QueryOrderItemsModel{OrderIds: orderIds},
	)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	productIds := make([]int64, 0, len(items))
	for _, item := range items {
		productIds = append(productIds, item.ProductID)
	}

	products := map[int64]*product.Product{}
	if len(productIds) > 0 {
		found, err := work.ProductRepository().Query(
			ctx,
			&product.QueryProductsModel{Ids: productIds},
		)
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	customers, err := work.CustomerRepository().Query(ctx, customerIds)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	customersByID := make(map[int64]*customer.Customer, len(customers))
	for i := range customers {
		customersByID[customers[i].ID] = &customers[i]
	}

	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].Items = append(orders[i].Items, item)
			}
		}
		orders[i].Customer = customersByID[orders[i].CustomerID]
	}

	return orders, nil
}
