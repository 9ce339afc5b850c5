package store

import (
	"context"
	"slices"
	"sync"
	"time"

	perrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/google/uuid"
)

var _ ProductStore = (*InMemory)(nil)

// InMemory implements ProductStore using an in-memory map. Insertion order is kept for ListAll.
type InMemory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
	order    []uuid.UUID
	now      func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemory {
	return &InMemory{
		products: make(map[uuid.UUID]Product),
		now:      time.Now,
	}
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return clone(p), nil
}

func (s *InMemory) FindAll(_ context.Context, offset, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, min(int(limit), len(s.order)))
	for i := len(s.order) - 1 - int(offset); i >= 0 && len(list) < int(limit); i-- {
		list = append(list, *clone(s.products[s.order[i]]))
	}
	return list, nil
}

func (s *InMemory) ListAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *clone(s.products[id]))
	}
	return list, nil
}

func (s *InMemory) Create(_ context.Context, params ProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Product{ID: uuid.New(), Version: 1, CreatedAt: s.now()}
	apply(&p, params)
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	return clone(p), nil
}

func (s *InMemory) Update(_ context.Context, id uuid.UUID, params ProductParams, version int32) (*Product, error) {
	return s.mutate(id, version, func(p *Product) { apply(p, params) })
}

func (s *InMemory) UpdateStock(_ context.Context, id uuid.UUID, stock int32, version int32) (*Product, error) {
	return s.mutate(id, version, func(p *Product) { p.StockQuantity = stock })
}

func (s *InMemory) DeleteByID(_ context.Context, id uuid.UUID, version int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.Version != version {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *InMemory) mutate(id uuid.UUID, version int32, fn func(p *Product)) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.Version != version {
		return nil, perrors.ErrProductNotFound
	}
	fn(&p)
	p.Version++
	s.products[id] = p
	return clone(p), nil
}

func apply(p *Product, params ProductParams) {
	p.Name = params.Name
	p.Price = params.Price
	p.Category = params.Category
	p.StockQuantity = params.StockQuantity
	p.ReviewCount = params.ReviewCount
	p.Images = slices.Clone(normalizeImages(params.Images))
}

func clone(p Product) *Product {
	p.Images = slices.Clone(p.Images)
	return &p
}
