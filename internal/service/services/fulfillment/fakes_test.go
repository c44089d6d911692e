package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/icustomerrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iorderrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/storekit/fulfillment-svc/internal/dal/interfaces/iproductrepo"
	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/models/orderitem"
	"github.com/storekit/fulfillment-svc/internal/service/models/outbox"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

// fakeDB is an in-memory stand-in for Postgres. A fakeUOW holds the store
// mutex from Begin to Commit/Rollback, mirroring the serialization the real
// conditional UPDATE gets from row locks; Rollback restores the snapshot taken
// at Begin so failed units leave the store byte-identical.
type fakeDB struct {
	mu sync.Mutex

	products  map[int64]product.Product
	customers map[int64]customer.Customer
	orders    map[int64]order.Order
	items     map[int64]orderitem.OrderItem
	outbox    []outbox.OutboxMessage

	nextID  int64
	failOps map[string]error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		products:  map[int64]product.Product{},
		customers: map[int64]customer.Customer{},
		orders:    map[int64]order.Order{},
		items:     map[int64]orderitem.OrderItem{},
		failOps:   map[string]error{},
	}
}

func (db *fakeDB) genID() int64 {
	db.nextID++

	return db.nextID
}

type dbState struct {
	products  map[int64]product.Product
	customers map[int64]customer.Customer
	orders    map[int64]order.Order
	items     map[int64]orderitem.OrderItem
	outbox    []outbox.OutboxMessage
	nextID    int64
}

func (db *fakeDB) snapshot() dbState {
	s := dbState{
		products:  make(map[int64]product.Product, len(db.products)),
		customers: make(map[int64]customer.Customer, len(db.customers)),
		orders:    make(map[int64]order.Order, len(db.orders)),
		items:     make(map[int64]orderitem.OrderItem, len(db.items)),
		outbox:    append([]outbox.OutboxMessage(nil), db.outbox...),
		nextID:    db.nextID,
	}
	for k, v := range db.products {
		s.products[k] = v
	}
	for k, v := range db.customers {
		s.customers[k] = v
	}
	for k, v := range db.orders {
		s.orders[k] = v
	}
	for k, v := range db.items {
		s.items[k] = v
	}

	return s
}

func (db *fakeDB) restore(s dbState) {
	db.products = s.products
	db.customers = s.customers
	db.orders = s.orders
	db.items = s.items
	db.outbox = s.outbox
	db.nextID = s.nextID
}

type fakeUOW struct {
	db   *fakeDB
	inTx bool
	snap dbState
}

func newFakeUOW(db *fakeDB) *fakeUOW {
	return &fakeUOW{db: db}
}

// lock acquires the store mutex for a single out-of-transaction operation.
// Inside a transaction the mutex is already held.
func (u *fakeUOW) lock() func() {
	if u.inTx {
		return func() {}
	}
	u.db.mu.Lock()

	return u.db.mu.Unlock
}

func (u *fakeUOW) fail(op string) error {
	return u.db.failOps[op]
}

func (u *fakeUOW) Begin(_ context.Context) error {
	u.db.mu.Lock()
	u.snap = u.db.snapshot()
	u.inTx = true

	return nil
}

func (u *fakeUOW) Commit(_ context.Context) error {
	if !u.inTx {
		return nil
	}
	u.inTx = false
	u.db.mu.Unlock()

	return nil
}

func (u *fakeUOW) Rollback(_ context.Context) error {
	if !u.inTx {
		return nil
	}
	u.db.restore(u.snap)
	u.inTx = false
	u.db.mu.Unlock()

	return nil
}

func (u *fakeUOW) ProductRepository() iproductrepo.IProductRepository {
	return &fakeProductRepo{u: u}
}

func (u *fakeUOW) CustomerRepository() icustomerrepo.ICustomerRepository {
	return &fakeCustomerRepo{u: u}
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{u: u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeOrderItemRepo{u: u}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{u: u}
}

type fakeProductRepo struct {
	u *fakeUOW
}

func (r *fakeProductRepo) Query(
	_ context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	defer r.u.lock()()
	if err := r.u.fail("product.query"); err != nil {
		return nil, err
	}

	var result []product.Product
	if len(filter.Ids) == 0 {
		for _, p := range r.u.db.products {
			result = append(result, p)
		}

		return result, nil
	}
	for _, id := range filter.Ids {
		if p, ok := r.u.db.products[id]; ok {
			result = append(result, p)
		}
	}

	return result, nil
}

func (r *fakeProductRepo) ConditionalDecrementStock(
	_ context.Context,
	productID int64,
	quantity int,
) (int, error) {
	defer r.u.lock()()
	if err := r.u.fail("product.decrement"); err != nil {
		return 0, err
	}

	p, ok := r.u.db.products[productID]
	if !ok {
		return 0, &apperr.NotFoundError{Resource: "product", ID: productID}
	}
	if p.StockQuantity < quantity {
		return 0, &apperr.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: p.StockQuantity,
		}
	}

	p.StockQuantity -= quantity
	r.u.db.products[productID] = p

	return p.StockQuantity, nil
}

type fakeCustomerRepo struct {
	u *fakeUOW
}

func (r *fakeCustomerRepo) Insert(
	_ context.Context,
	c customer.Customer,
) (customer.Customer, error) {
	defer r.u.lock()()
	if err := r.u.fail("customer.insert"); err != nil {
		return customer.Customer{}, err
	}

	c.ID = r.u.db.genID()
	r.u.db.customers[c.ID] = c

	return c, nil
}

func (r *fakeCustomerRepo) Query(_ context.Context, ids []int64) ([]customer.Customer, error) {
	defer r.u.lock()()

	var result []customer.Customer
	for _, id := range ids {
		if c, ok := r.u.db.customers[id]; ok {
			result = append(result, c)
		}
	}

	return result, nil
}

type fakeOrderRepo struct {
	u *fakeUOW
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	defer r.u.lock()()
	if err := r.u.fail("order.insert"); err != nil {
		return order.Order{}, err
	}

	o.ID = r.u.db.genID()
	o.CreatedAt = time.Now()
	stored := o
	stored.Items = nil
	stored.Customer = nil
	r.u.db.orders[o.ID] = stored

	return o, nil
}

func (r *fakeOrderRepo) Query(
	_ context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	defer r.u.lock()()
	if err := r.u.fail("order.query"); err != nil {
		return nil, err
	}

	var result []order.Order
	for _, o := range r.u.db.orders {
		if len(filter.Ids) > 0 && !containsID(filter.Ids, o.ID) {
			continue
		}
		if len(filter.CustomerIds) > 0 && !containsID(filter.CustomerIds, o.CustomerID) {
			continue
		}
		o.Items = []orderitem.OrderItem{}
		result = append(result, o)
	}

	return result, nil
}

func (r *fakeOrderRepo) GetStatusForUpdate(_ context.Context, id int64) (order.Status, error) {
	defer r.u.lock()()

	o, ok := r.u.db.orders[id]
	if !ok {
		return "", &apperr.NotFoundError{Resource: "order", ID: id}
	}

	return o.Status, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	defer r.u.lock()()

	o, ok := r.u.db.orders[id]
	if !ok {
		return &apperr.NotFoundError{Resource: "order", ID: id}
	}
	o.Status = status
	r.u.db.orders[id] = o

	return nil
}

type fakeOrderItemRepo struct {
	u *fakeUOW
}

func (r *fakeOrderItemRepo) BulkInsert(
	_ context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	defer r.u.lock()()
	if err := r.u.fail("orderitem.bulkinsert"); err != nil {
		return nil, err
	}

	result := make([]orderitem.OrderItem, len(orderItems))
	for i, item := range orderItems {
		item.ID = r.u.db.genID()
		stored := item
		stored.Product = nil
		r.u.db.items[item.ID] = stored
		result[i] = item
	}

	return result, nil
}

func (r *fakeOrderItemRepo) Query(
	_ context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	defer r.u.lock()()

	var result []orderitem.OrderItem
	for _, item := range r.u.db.items {
		if len(filter.OrderIds) > 0 && !containsID(filter.OrderIds, item.OrderID) {
			continue
		}
		result = append(result, item)
	}

	return result, nil
}

type fakeOutboxRepo struct {
	u *fakeUOW
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	defer r.u.lock()()
	if err := r.u.fail("outbox.insert"); err != nil {
		return err
	}

	msg.ID = r.u.db.genID()
	r.u.db.outbox = append(r.u.db.outbox, msg)

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(
	_ context.Context,
	limit int,
) ([]outbox.OutboxMessage, error) {
	defer r.u.lock()()

	if limit > len(r.u.db.outbox) {
		limit = len(r.u.db.outbox)
	}

	return append([]outbox.OutboxMessage(nil), r.u.db.outbox[:limit]...), nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	defer r.u.lock()()

	for i, msg := range r.u.db.outbox {
		if msg.ID == id {
			r.u.db.outbox = append(r.u.db.outbox[:i], r.u.db.outbox[i+1:]...)

			return nil
		}
	}

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	defer r.u.lock()()

	for i := range r.u.db.outbox {
		if r.u.db.outbox[i].ID == id {
			r.u.db.outbox[i].RetryCount = retryCount
			r.u.db.outbox[i].LastError = lastError
			r.u.db.outbox[i].NextRetryAt = nextRetryAt
		}
	}

	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}
