// Package catalog implements the customer-facing catalog pipeline: filtering, sorting and
// paginating an in-memory product list according to user-selected criteria.
//
// Everything in this package is pure. Functions never mutate their inputs and never read
// shared state; the same inputs always yield the same output.
package catalog

import (
	"context"

	"github.com/samber/lo"
)

// Product is a read-only catalog record.
// Optional numeric fields use their zero value for "missing".
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         int64    `json:"price"` // whole francs, no minor unit
	Category      string   `json:"category,omitempty"`
	StockQuantity int32    `json:"stock_quantity,omitempty"`
	ReviewCount   int32    `json:"review_count,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// Source provides the full product list for a catalog view.
// Any order is accepted and optional fields may be missing.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// MaxPrice returns the highest price in products, or 0 for an empty set.
func MaxPrice(products []Product) int64 {
	return lo.Max(lo.Map(products, func(p Product, _ int) int64 {
		return p.Price
	}))
}
