// Package source reads catalog products from a remote storefront backend.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/samber/lo"
)

// DefaultListPath is the backend listing endpoint.
const DefaultListPath = "/api/products"

// JSONGetter is the subset of httpclient.Client used by HTTPSource.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, dst any) error
}

var _ catalog.Source = (*HTTPSource)(nil)

// HTTPSource fetches the product list with one GET request.
type HTTPSource struct {
	client JSONGetter
	path   string
}

// NewHTTPSource returns a source reading from path, or DefaultListPath when path is empty.
func NewHTTPSource(client JSONGetter, path string) *HTTPSource {
	if path == "" {
		path = DefaultListPath
	}
	return &HTTPSource{client: client, path: path}
}

// remoteProduct accepts both the camelCase and snake_case spellings the backend has used.
type remoteProduct struct {
	ID                 string      `json:"id"`
	MongoID            string      `json:"_id"`
	Name               string      `json:"name"`
	Price              json.Number `json:"price"`
	Category           string      `json:"category"`
	StockQuantity      *int32      `json:"stockQuantity"`
	StockQuantitySnake *int32      `json:"stock_quantity"`
	ReviewCount        *int32      `json:"reviewCount"`
	ReviewCountSnake   *int32      `json:"review_count"`
	Images             []string    `json:"images"`
}

func (r remoteProduct) toCatalog() (catalog.Product, error) {
	price, err := parsePrice(r.Price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %q: %w", r.Name, err)
	}
	return catalog.Product{
		ID:            lo.CoalesceOrEmpty(r.ID, r.MongoID),
		Name:          r.Name,
		Price:         price,
		Category:      r.Category,
		StockQuantity: max(0, lo.FromPtr(lo.CoalesceOrEmpty(r.StockQuantity, r.StockQuantitySnake))),
		ReviewCount:   max(0, lo.FromPtr(lo.CoalesceOrEmpty(r.ReviewCount, r.ReviewCountSnake))),
		Images:        lo.Compact(r.Images),
	}, nil
}

// parsePrice accepts integral numbers, including ones written with a zero fraction.
// A missing price is 0.
func parsePrice(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative price %s", n)
		}
		return v, nil
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid price %s", n)
	}
	return int64(f), nil
}

// ListProducts fetches and converts the remote listing. The response may be a bare array
// or an object with a "products" field.
func (s *HTTPSource) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, s.path, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	var remote []remoteProduct
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Products []remoteProduct `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		remote = envelope.Products
	} else if err := json.Unmarshal(trimmed, &remote); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]catalog.Product, 0, len(remote))
	for _, r := range remote {
		p, err := r.toCatalog()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
