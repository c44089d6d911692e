package product

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog record. StockQuantity never goes below zero: the only
// mutation path is the repository's conditional decrement.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	CategoryID    int64           `json:"categoryId,omitempty"`
}
