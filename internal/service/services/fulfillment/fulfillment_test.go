package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
	"github.com/storekit/fulfillment-svc/internal/service/models/order"
	"github.com/storekit/fulfillment-svc/internal/service/models/product"
	"github.com/storekit/fulfillment-svc/pkg/apperr"
)

func newTestService(db *fakeDB) *Service {
	return MustNewService(WithUnitOfWorkFactory(func() unitOfWork {
		return newFakeUOW(db)
	}))
}

func seedProduct(db *fakeDB, id int64, price string, stock int) {
	db.products[id] = product.Product{
		ID:            id,
		Name:          "test product",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	if id > db.nextID {
		db.nextID = id
	}
}

func testCustomer() customer.Customer {
	return customer.Customer{Name: "Alice", Phone: "+123456", Address: "1 Test St"}
}

func TestCreateOrder_Success(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	svc := newTestService(db)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 5}},
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("50.00").Equal(ord.TotalAmount),
		"total should be 50.00, got %s", ord.TotalAmount)
	assert.Equal(t, order.StatusPending, ord.Status)
	require.Len(t, ord.Items, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(ord.Items[0].PriceAtPurchase))
	assert.Equal(t, 5, ord.Items[0].Quantity)
	require.NotNil(t, ord.Customer)
	assert.Equal(t, "Alice", ord.Customer.Name)

	assert.Equal(t, 45, db.products[1].StockQuantity)
	assert.Len(t, db.customers, 1)
	assert.Len(t, db.orders, 1)
	assert.Len(t, db.items, 1)
	assert.Len(t, db.outbox, 1, "order.created event should be staged")
}

func TestCreateOrder_DuplicateProductLines(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "2.50", 10)
	svc := newTestService(db)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items: []CreateOrderItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 1, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// Duplicate product ids stay independent line items, not merged.
	require.Len(t, ord.Items, 2)
	assert.True(t, decimal.RequireFromString("12.50").Equal(ord.TotalAmount))
	assert.Equal(t, 5, db.products[1].StockQuantity)
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		items []CreateOrderItemInput
	}{
		{name: "empty items", items: nil},
		{name: "zero quantity", items: []CreateOrderItemInput{{ProductID: 1, Quantity: 0}}},
		{name: "negative quantity", items: []CreateOrderItemInput{{ProductID: 1, Quantity: -2}}},
		{name: "bad product id", items: []CreateOrderItemInput{{ProductID: 0, Quantity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newFakeDB()
			seedProduct(db, 1, "10.00", 50)
			svc := newTestService(db)
			before := db.snapshot()

			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				Customer: testCustomer(),
				Items:    tt.items,
			})

			var validation *apperr.ValidationError
			require.ErrorAs(t, err, &validation)
			assertUnchanged(t, db, before)
		})
	}
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	svc := newTestService(db)
	before := db.snapshot()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items: []CreateOrderItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 1},
		},
	})

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(99), notFound.ID)
	assertUnchanged(t, db, before)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	svc := newTestService(db)
	before := db.snapshot()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 1000}},
	})

	var stock *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, int64(1), stock.ProductID)
	assert.Equal(t, 50, stock.Available)
	assertUnchanged(t, db, before)
}

func TestCreateOrder_DecrementRaceGuardRollsBack(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	// Stock vanished between the pre-check and the in-transaction decrement.
	db.failOps["product.decrement"] = &apperr.InsufficientStockError{
		ProductID: 1, Requested: 5, Available: 0,
	}
	svc := newTestService(db)
	before := db.snapshot()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 5}},
	})

	var stock *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assertUnchanged(t, db, before)
}

func TestCreateOrder_StorageFailureRollsBack(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	db.failOps["orderitem.bulkinsert"] = errors.New("connection reset")
	svc := newTestService(db)
	before := db.snapshot()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 5}},
	})

	var storage *apperr.PersistenceError
	require.ErrorAs(t, err, &storage)
	assert.Equal(t, "internal storage failure", storage.Error(),
		"storage diagnostics must not leak")
	assertUnchanged(t, db, before)
}

func TestCreateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	const (
		stock    = 50
		quantity = 30
		callers  = 10
	)

	db := newFakeDB()
	seedProduct(db, 1, "10.00", stock)
	svc := newTestService(db)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				Customer: testCustomer(),
				Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: quantity}},
			})
			if err != nil {
				var stockErr *apperr.InsufficientStockError
				assert.ErrorAs(t, err, &stockErr)

				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// stock/quantity rounds down to one winner; the rest must fail cleanly.
	assert.Equal(t, 1, successes)
	assert.Equal(t, stock-quantity, db.products[1].StockQuantity)
	assert.GreaterOrEqual(t, db.products[1].StockQuantity, 0)
	assert.Len(t, db.orders, 1)
	assert.Len(t, db.customers, 1)
}

func TestCreateOrder_PriceImmutability(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "10.00", 50)
	svc := newTestService(db)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 5}},
	})
	require.NoError(t, err)

	// Catalog price change after the order exists.
	p := db.products[1]
	p.Price = decimal.RequireFromString("99.99")
	db.products[1] = p

	reread, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)

	require.Len(t, reread.Items, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(reread.Items[0].PriceAtPurchase))
	assert.True(t, decimal.RequireFromString("50.00").Equal(reread.TotalAmount))
}

func TestUpdateStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		db := newFakeDB()
		seedProduct(db, 1, "10.00", 50)
		svc := newTestService(db)

		created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			Customer: testCustomer(),
			Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		})
		require.NoError(t, err)

		updated, err := svc.UpdateStatus(context.Background(), created.ID, order.StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, updated.Status)
		assert.Equal(t, order.StatusShipped, db.orders[created.ID].Status)
	})

	t.Run("skipping shipped is a conflict", func(t *testing.T) {
		db := newFakeDB()
		seedProduct(db, 1, "10.00", 50)
		svc := newTestService(db)

		created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			Customer: testCustomer(),
			Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(context.Background(), created.ID, order.StatusDelivered)

		var conflict *apperr.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, order.StatusPending, db.orders[created.ID].Status,
			"status must stay unchanged on conflict")
	})

	t.Run("unknown order", func(t *testing.T) {
		db := newFakeDB()
		svc := newTestService(db)

		_, err := svc.UpdateStatus(context.Background(), 404, order.StatusShipped)

		var notFound *apperr.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestGetOrder(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "3.00", 10)
	svc := newTestService(db)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: testCustomer(),
		Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1), got.Items[0].ProductID)
	require.NotNil(t, got.Items[0].Product)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Alice", got.Customer.Name)

	_, err = svc.GetOrder(context.Background(), 404)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListOrders(t *testing.T) {
	db := newFakeDB()
	seedProduct(db, 1, "3.00", 100)
	svc := newTestService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			Customer: testCustomer(),
			Items:    []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	orders, err := svc.ListOrders(context.Background(), &order.QueryOrdersModel{})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.Len(t, o.Items, 1)
		assert.NotNil(t, o.Customer)
	}
}

// assertUnchanged verifies the no-op-on-rejection property: a failed call
// leaves every table and the stock exactly as before.
func assertUnchanged(t *testing.T, db *fakeDB, before dbState) {
	t.Helper()

	assert.Equal(t, before.products, db.products)
	assert.Equal(t, before.customers, db.customers)
	assert.Equal(t, before.orders, db.orders)
	assert.Equal(t, before.items, db.items)
	assert.Equal(t, before.outbox, db.outbox)
}
