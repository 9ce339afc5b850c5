// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/google/uuid"
)

// Product is a stored product row.
type Product struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	Price         int64     `db:"price"`
	Category      string    `db:"category"`
	StockQuantity int32     `db:"stock_quantity"`
	ReviewCount   int32     `db:"review_count"`
	Images        []string  `db:"images"`
	Version       int32     `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
}

// ToCatalog converts the row to the catalog representation.
func (p Product) ToCatalog() catalog.Product {
	return catalog.Product{
		ID:            p.ID.String(),
		Name:          p.Name,
		Price:         p.Price,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		ReviewCount:   p.ReviewCount,
		Images:        p.Images,
	}
}

// ProductParams holds the mutable fields of a product.
type ProductParams struct {
	Name          string
	Price         int64
	Category      string
	StockQuantity int32
	ReviewCount   int32
	Images        []string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns one page of products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// ListAll returns every product in insertion order. This is the catalog source order.
	ListAll(ctx context.Context) ([]Product, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, params ProductParams) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, id uuid.UUID, params ProductParams, version int32) (*Product, error)

	// UpdateStock adjusts the stock quantity of a product.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

// CatalogSource exposes a ProductStore as a catalog.Source.
type CatalogSource struct {
	Store ProductStore
}

var _ catalog.Source = CatalogSource{}

func (s CatalogSource) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, len(rows))
	for i, row := range rows {
		out[i] = row.ToCatalog()
	}
	return out, nil
}

func normalizeImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
