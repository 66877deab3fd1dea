package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/kicks-pos/internal/domain/product"
)

var _ product.Repository = (*ProductStore)(nil)

// ProductStore implements product.Repository in process memory. Products
// are kept in insertion order.
type ProductStore struct {
	mu       sync.RWMutex
	products []product.Product
	newID    func() string
}

// NewProductStore returns a ProductStore seeded with initial. Seed products
// go through the same validation as Add.
func NewProductStore(initial ...product.Product) (*ProductStore, error) {
	s := &ProductStore{newID: uuid.NewString}
	for _, p := range initial {
		if _, err := s.add(p); err != nil {
			return nil, errors.Wrapf(err, "seed product %q", p.SKU)
		}
	}
	return s, nil
}

// List returns all products.
func (s *ProductStore) List(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out, nil
}

// Search returns products whose brand, model or SKU contains term. With
// availableOnly set, products without any stock are skipped.
func (s *ProductStore) Search(_ context.Context, term string, availableOnly bool) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []product.Product
	for _, p := range s.products {
		if availableOnly && !p.InStock() {
			continue
		}
		if p.Matches(term) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// GetByID returns the product with the given id.
func (s *ProductStore) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, product.ErrNotFound
	}
	p := s.products[i].Clone()
	return &p, nil
}

// Add validates p, assigns an id when p has none, and appends it.
func (s *ProductStore) Add(_ context.Context, p product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.add(p)
}

func (s *ProductStore) add(p product.Product) (*product.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if s.indexOf(p.ID) >= 0 {
		return nil, errors.Wrapf(product.ErrInvalidProduct, "id %q already exists", p.ID)
	}
	if s.skuTaken(p.SKU, "") {
		return nil, errors.Wrapf(product.ErrDuplicateSKU, "sku %q", p.SKU)
	}

	p = p.Clone()
	s.products = append(s.products, p)
	out := p.Clone()
	return &out, nil
}

// Update merges patch into the product with the given id.
func (s *ProductStore) Update(_ context.Context, id string, patch product.Patch) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, product.ErrNotFound
	}

	updated := patch.Apply(s.products[i])
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if s.skuTaken(updated.SKU, id) {
		return nil, errors.Wrapf(product.ErrDuplicateSKU, "sku %q", updated.SKU)
	}

	s.products[i] = updated
	out := updated.Clone()
	return &out, nil
}

// Remove deletes the product with the given id.
func (s *ProductStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return product.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

// AdjustStock adds delta to the stock of one size. A result below zero is
// rejected with *product.InsufficientStockError and nothing changes.
func (s *ProductStore) AdjustStock(ctx context.Context, id, size string, delta int) (*product.Product, error) {
	if err := s.AdjustStockBatch(ctx, []product.StockDelta{{ProductID: id, Size: size, Delta: delta}}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// AdjustStockBatch applies all deltas or none of them. Deltas on the same
// product size accumulate in order.
func (s *ProductStore) AdjustStockBatch(_ context.Context, deltas []product.StockDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		idx  int
		size string
	}
	next := make(map[key]int, len(deltas))
	order := make([]key, 0, len(deltas))

	for _, d := range deltas {
		i := s.indexOf(d.ProductID)
		if i < 0 {
			return errors.Wrapf(product.ErrNotFound, "product %s", d.ProductID)
		}
		k := key{idx: i, size: d.Size}
		cur, seen := next[k]
		if !seen {
			stock, ok := s.products[i].StockFor(d.Size)
			if !ok {
				return errors.Wrapf(product.ErrSizeNotFound, "product %s size %q", d.ProductID, d.Size)
			}
			cur = stock
			order = append(order, k)
		}
		if cur+d.Delta < 0 {
			return &product.InsufficientStockError{
				ProductID: d.ProductID,
				Size:      d.Size,
				Available: cur,
				Requested: -d.Delta,
			}
		}
		next[k] = cur + d.Delta
	}

	for _, k := range order {
		s.setStock(k.idx, k.size, next[k])
	}
	return nil
}

// SetStock replaces the stock of one size with an absolute value.
func (s *ProductStore) SetStock(_ context.Context, id, size string, stock int) (*product.Product, error) {
	if stock < 0 {
		return nil, errors.Wrapf(product.ErrInvalidProduct, "negative stock for size %q", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, product.ErrNotFound
	}
	if _, ok := s.products[i].StockFor(size); !ok {
		return nil, errors.Wrapf(product.ErrSizeNotFound, "product %s size %q", id, size)
	}
	s.setStock(i, size, stock)

	out := s.products[i].Clone()
	return &out, nil
}

// setStock writes through a fresh Sizes slice so clones handed out earlier
// never observe the change. Caller must hold s.mu.
func (s *ProductStore) setStock(i int, size string, stock int) {
	p := s.products[i].Clone()
	for j := range p.Sizes {
		if p.Sizes[j].Label == size {
			p.Sizes[j].Stock = stock
		}
	}
	s.products[i] = p
}

func (s *ProductStore) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// skuTaken reports whether a product other than exceptID uses sku.
func (s *ProductStore) skuTaken(sku, exceptID string) bool {
	if sku == "" {
		return false
	}
	for _, p := range s.products {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}
