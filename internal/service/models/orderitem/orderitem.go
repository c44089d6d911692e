package orderitem

import (
	"github.com/shopspring/decimal"

	"github.com/storekit/fulfillment-svc/internal/service/models/product"
)

// OrderItem is one line of an order. PriceAtPurchase is copied from the product
// at placement and never changes afterwards, so the order stays a historical
// price snapshot regardless of later catalog edits.
type OrderItem struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"orderId"`
	ProductID       int64            `json:"productId"`
	Quantity        int              `json:"quantity"`
	PriceAtPurchase decimal.Decimal  `json:"priceAtPurchase"`
	Product         *product.Product `json:"product,omitempty"`
}

// Subtotal is quantity times the locked-in unit price, exact decimal arithmetic.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
