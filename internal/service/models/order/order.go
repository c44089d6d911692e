package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storekit/fulfillment-svc/internal/service/models/customer"
	"github.com/storekit/fulfillment-svc/internal/service/models/orderitem"
)

// Order is the fulfillment aggregate: header plus owned items plus the customer
// captured at placement. TotalAmount equals the exact sum of
// quantity * priceAtPurchase over Items at creation time.
type Order struct {
	ID          int64                 `json:"id"`
	CustomerID  int64                 `json:"customerId"`
	Status      Status                `json:"status"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	CreatedAt   time.Time             `json:"createdAt"`
	Items       []orderitem.OrderItem `json:"items"`
	Customer    *customer.Customer    `json:"customer,omitempty"`
}
