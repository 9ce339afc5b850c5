// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Browse runs the catalog pipeline over the full product list.
	// Returns ErrInvalidBrowseQuery for an unknown sort mode.
	Browse(ctx context.Context, query BrowseQuery) (*BrowseResult, error)

	// EnsureListed returns ErrProductNotFound unless the catalog source lists a product with this ID.
	EnsureListed(ctx context.Context, id string) error

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns one page of products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, product ProductDto) (*ProductDto, error)

	// UpdateStock adjusts the stock quantity of a product.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

var _ ProductService = (*Service)(nil)

// Options tune the catalog behaviour of a Service.
type Options struct {
	// Source overrides where Browse reads products from. Defaults to the store.
	Source catalog.Source
	// Pipeline sets the collation used for name sorting. Defaults to catalog.DefaultLanguage.
	Pipeline *catalog.Pipeline
	// PageSize is used when a browse query does not set one.
	PageSize int
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository     store.ProductStore
	source         catalog.Source
	pipeline       *catalog.Pipeline
	pageSize       int
	publisher      messaging.Publisher
	browseCounter  metric.Int64Counter
	productCounter metric.Int64Counter
	now            func() time.Time
}

// NewService creates a new instance of ProductService.
func NewService(repo store.ProductStore, publisher messaging.Publisher, opts Options) *Service {
	meter := otel.Meter("catalog-service")
	browseCounter, err := meter.Int64Counter("catalog_browse_requests", metric.WithDescription("Total number of catalog browse requests"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_browse_requests counter: %v", err))
	}
	productCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}

	if opts.Source == nil {
		opts.Source = store.CatalogSource{Store: repo}
	}
	if opts.Pipeline == nil {
		opts.Pipeline = catalog.NewPipeline(catalog.DefaultLanguage)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = catalog.DefaultPageSize
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		repository:     repo,
		source:         opts.Source,
		pipeline:       opts.Pipeline,
		pageSize:       opts.PageSize,
		publisher:      publisher,
		browseCounter:  browseCounter,
		productCounter: productCounter,
		now:            time.Now,
	}
}

// BrowseQuery is one request against the catalog. Nil bounds keep the defaults.
type BrowseQuery struct {
	Category string
	PriceMin *int64
	PriceMax *int64
	Sort     string
	Page     int
	PageSize int
}

// BrowseResult is one catalog page plus the state needed to render the filter controls.
type BrowseResult struct {
	catalog.PageResult
	Criteria           catalog.Criteria `json:"criteria"`
	MaxSelectablePrice int64            `json:"max_selectable_price"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name        string   `json:"name"         validate:"required,max=100"`
	Price       int64    `json:"price"        validate:"min=0"`
	Category    string   `json:"category"     validate:"max=100"`
	Stock       int32    `json:"stock"        validate:"min=0"`
	ReviewCount int32    `json:"review_count" validate:"min=0"`
	Images      []string `json:"images"       validate:"omitempty,dive,url"`
}

// ProductDto represents the data transfer object for a product.
// Version is read-only and used for optimistic concurrency control.
type ProductDto struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"         validate:"required,max=100"`
	Price       int64    `json:"price"        validate:"min=0"`
	Category    string   `json:"category"     validate:"max=100"`
	Stock       int32    `json:"stock"        validate:"min=0"`
	ReviewCount int32    `json:"review_count" validate:"min=0"`
	Images      []string `json:"images"       validate:"omitempty,dive,url"`
	Version     int32    `json:"version"      validate:"required,min=1"`
}

// StockUpdateDto represents the data transfer object for updating product stock.
type StockUpdateDto struct {
	Stock   int32 `json:"stock"   validate:"min=0"`
	Version int32 `json:"version" validate:"required,min=1"`
}

// Browse loads the product list once, then applies the query through a catalog.View in the order
// category, min, max, sort, page. A later bound wins when min and max conflict.
func (s *Service) Browse(ctx context.Context, query BrowseQuery) (*BrowseResult, error) {
	mode, err := catalog.ParseSortMode(query.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidBrowseQuery, err)
	}

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	view := catalog.NewViewWithPipeline(s.pipeline, products, pageSize)
	if query.Category != "" {
		view.SetCategory(query.Category)
	}
	if query.PriceMin != nil {
		view.SetPriceMin(*query.PriceMin)
	}
	if query.PriceMax != nil {
		view.SetPriceMax(*query.PriceMax)
	}
	view.SetSort(mode)
	view.SetPage(query.Page)

	page := view.Result()
	s.browseCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("sort", mode.String())))

	return &BrowseResult{
		PageResult:         page,
		Criteria:           view.Criteria(),
		MaxSelectablePrice: view.MaxSelectablePrice(),
	}, nil
}

// EnsureListed checks id against the same source Browse reads, so products of a remote
// catalog can be referenced by their remote IDs.
func (s *Service) EnsureListed(ctx context.Context, id string) error {
	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if !lo.ContainsBy(products, func(p catalog.Product) bool { return p.ID == id }) {
		return fmt.Errorf("product %s is not listed: %w", id, perrors.ErrProductNotFound)
	}
	return nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll retrieves a page of products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toDto(&products[i])
	}
	return productDTOs, nil
}

// Create stores a new product and announces it with a ProductCreatedEvent.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, store.ProductParams{
		Name:          product.Name,
		Price:         product.Price,
		Category:      product.Category,
		StockQuantity: product.Stock,
		ReviewCount:   product.ReviewCount,
		Images:        product.Images,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreatedEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		CreatedAt: p.CreatedAt,
	})
	s.productCounter.Add(ctx, 1)

	return toDto(p), nil
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) Update(ctx context.Context, product ProductDto) (*ProductDto, error) {
	id, err := uuid.Parse(product.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID %q: %w", product.ID, perrors.ErrProductNotFound)
	}
	updated, err := s.repository.Update(ctx, id, store.ProductParams{
		Name:          product.Name,
		Price:         product.Price,
		Category:      product.Category,
		StockQuantity: product.Stock,
		ReviewCount:   product.ReviewCount,
		Images:        product.Images,
	}, product.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", product.ID, err)
	}
	s.publishIfOutOfStock(ctx, updated)
	return toDto(updated), nil
}

// UpdateStock adjusts the stock quantity of a product and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*ProductDto, error) {
	product, err := s.repository.UpdateStock(ctx, id, stock, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for product with ID %s: %w", id, err)
	}
	s.publishIfOutOfStock(ctx, product)
	return toDto(product), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	if err := s.repository.DeleteByID(ctx, id, version); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	return nil
}

func (s *Service) publishIfOutOfStock(ctx context.Context, p *store.Product) {
	if p.StockQuantity != 0 {
		return
	}
	s.publish(ctx, events.ProductOutOfStockEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Version:    p.Version,
		OccurredAt: s.now().UTC(),
	})
}

// publish never fails the caller: the product change is already committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Price:       product.Price,
		Category:    product.Category,
		Stock:       product.StockQuantity,
		ReviewCount: product.ReviewCount,
		Images:      product.Images,
		Version:     product.Version,
	}
}
