package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSizeNotFound is returned when a product has no entry for a size label.
	ErrSizeNotFound = errors.New("size not found")
	// ErrInsufficientStock is returned when a size cannot cover a requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateSKU is returned when a SKU is already used by another product.
	ErrDuplicateSKU = errors.New("duplicate sku")
	// ErrInvalidProduct is returned when product fields fail validation.
	ErrInvalidProduct = errors.New("invalid product")
)

// InsufficientStockError reports the stock available for a product size
// when a decrement or cart addition asks for more.
type InsufficientStockError struct {
	ProductID string
	Size      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductID + " size " + e.Size
}

// Is reports ErrInsufficientStock as the sentinel of this error.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Size is the stock count of one size label.
type Size struct {
	Label string
	Stock int
}

// Product is a catalog entry with per-size stock.
type Product struct {
	ID    string
	SKU   string
	Brand string
	Model string
	Color string
	Price decimal.Decimal
	Sizes []Size
}

// TotalStock returns the sum of stock across all sizes.
func (p Product) TotalStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

// StockFor returns the stock of the given size label.
func (p Product) StockFor(label string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Label == label {
			return s.Stock, true
		}
	}
	return 0, false
}

// InStock reports whether any size has sellable units.
func (p Product) InStock() bool {
	for _, s := range p.Sizes {
		if s.Stock > 0 {
			return true
		}
	}
	return false
}

// OutOfStock reports whether every size has zero stock. A product without
// sizes is out of stock.
func (p Product) OutOfStock() bool {
	for _, s := range p.Sizes {
		if s.Stock != 0 {
			return false
		}
	}
	return true
}

// Matches reports whether term is a case-insensitive substring of the
// brand, model or SKU.
func (p Product) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Model), term) ||
		strings.Contains(strings.ToLower(p.SKU), term)
}

// DisplayName is the label used for the product in reports.
func (p Product) DisplayName() string {
	return p.Brand + " " + p.Model + " - " + p.Color
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	c.Sizes = append([]Size(nil), p.Sizes...)
	return c
}

// Validate checks price and size invariants.
func (p Product) Validate() error {
	if p.Price.IsNegative() {
		return errors.Wrap(ErrInvalidProduct, "price must not be negative")
	}
	seen := make(map[string]struct{}, len(p.Sizes))
	for _, s := range p.Sizes {
		if s.Label == "" {
			return errors.Wrap(ErrInvalidProduct, "size label required")
		}
		if _, ok := seen[s.Label]; ok {
			return errors.Wrapf(ErrInvalidProduct, "duplicate size %q", s.Label)
		}
		seen[s.Label] = struct{}{}
		if s.Stock < 0 {
			return errors.Wrapf(ErrInvalidProduct, "negative stock for size %q", s.Label)
		}
	}
	return nil
}

// Patch lists the fields to replace on update. Nil fields are left as is.
type Patch struct {
	SKU   *string
	Brand *string
	Model *string
	Color *string
	Price *decimal.Decimal
	Sizes []Size
}

// Apply returns p with the patch fields merged in.
func (pt Patch) Apply(p Product) Product {
	out := p.Clone()
	if pt.SKU != nil {
		out.SKU = *pt.SKU
	}
	if pt.Brand != nil {
		out.Brand = *pt.Brand
	}
	if pt.Model != nil {
		out.Model = *pt.Model
	}
	if pt.Color != nil {
		out.Color = *pt.Color
	}
	if pt.Price != nil {
		out.Price = *pt.Price
	}
	if pt.Sizes != nil {
		out.Sizes = append([]Size(nil), pt.Sizes...)
	}
	return out
}

// StockDelta is a signed stock change for one product size.
type StockDelta struct {
	ProductID string
	Size      string
	Delta     int
}

// Repository defines catalog and stock operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, term string, availableOnly bool) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Add(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id string, patch Patch) (*Product, error)
	Remove(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id, size string, delta int) (*Product, error)
	AdjustStockBatch(ctx context.Context, deltas []StockDelta) error
	SetStock(ctx context.Context, id, size string, stock int) (*Product, error)
}
