package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, price, category, stock_quantity, review_count, images, version, created_at"

const (
	findByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	findAllQuery = `SELECT ` + productColumns + ` FROM products
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

	listAllQuery = `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`

	createQuery = `INSERT INTO products (name, price, category, stock_quantity, review_count, images)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

	updateQuery = `UPDATE products
SET name = $2, price = $3, category = $4, stock_quantity = $5, review_count = $6, images = $7, version = version + 1
WHERE id = $1 AND version = $8
RETURNING ` + productColumns

	updateStockQuery = `UPDATE products
SET stock_quantity = $2, version = version + 1
WHERE id = $1 AND version = $3
RETURNING ` + productColumns

	deleteQuery = `DELETE FROM products WHERE id = $1 AND version = $2`
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// queryOne runs a statement returning exactly one product row.
// pgx.ErrNoRows is reported as ErrProductNotFound.
func (p *PgStore) queryOne(ctx context.Context, op, sql string, args ...any) (*Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &product, nil
}

func (p *PgStore) queryMany(ctx context.Context, op, sql string, args ...any) ([]Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return p.queryOne(ctx, "find product by ID", findByIDQuery, id)
}

// FindAll retrieves one page of products, newest first.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	return p.queryMany(ctx, "find all products", findAllQuery, limit, offset)
}

// ListAll retrieves every product in insertion order.
func (p *PgStore) ListAll(ctx context.Context) ([]Product, error) {
	return p.queryMany(ctx, "list products", listAllQuery)
}

// Create adds a new product to the system.
func (p *PgStore) Create(ctx context.Context, params ProductParams) (*Product, error) {
	return p.queryOne(ctx, "create product", createQuery,
		params.Name, params.Price, params.Category, params.StockQuantity, params.ReviewCount, normalizeImages(params.Images))
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, params ProductParams, version int32) (*Product, error) {
	return p.queryOne(ctx, "update product", updateQuery,
		id, params.Name, params.Price, params.Category, params.StockQuantity, params.ReviewCount, normalizeImages(params.Images), version)
}

// UpdateStock adjusts the stock quantity of a product.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*Product, error) {
	return p.queryOne(ctx, "update product stock", updateStockQuery, id, stock, version)
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}
