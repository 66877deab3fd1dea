package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

// LineKey addresses a cart line. A cart holds at most one line per key.
type LineKey struct {
	ProductID string
	Size      string
}

// Cart is the transient working set of line items before a ticket exists.
// A Cart is not safe for concurrent use; Sessions serializes access.
type Cart struct {
	items      []ticket.Item
	customerID string
}

// Add puts one unit of the product size in the cart. Repeated adds of the
// same product size increment the existing line. The product's current
// stock for the size bounds the line quantity.
func (c *Cart) Add(p product.Product, size string) error {
	stock, ok := p.StockFor(size)
	if !ok || stock <= 0 {
		return &product.InsufficientStockError{ProductID: p.ID, Size: size, Available: stock, Requested: 1}
	}

	if i := c.index(LineKey{ProductID: p.ID, Size: size}); i >= 0 {
		qty := c.items[i].Quantity + 1
		if qty > stock {
			return &product.InsufficientStockError{ProductID: p.ID, Size: size, Available: stock, Requested: qty}
		}
		c.setQuantity(i, qty)
		return nil
	}

	c.items = append(c.items, ticket.Item{
		ProductID: p.ID,
		SKU:       p.SKU,
		Brand:     p.Brand,
		Model:     p.Model,
		Color:     p.Color,
		Size:      size,
		Price:     p.Price,
		Quantity:  1,
		Subtotal:  p.Price,
	})
	return nil
}

// ChangeQuantity applies a signed delta to a line. A line whose quantity
// drops to zero or below is removed.
func (c *Cart) ChangeQuantity(key LineKey, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	qty := c.items[i].Quantity + delta
	if qty <= 0 {
		c.removeAt(i)
		return nil
	}
	c.setQuantity(i, qty)
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(key LineKey) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	return nil
}

// Line returns the line for key.
func (c *Cart) Line(key LineKey) (ticket.Item, bool) {
	if i := c.index(key); i >= 0 {
		return c.items[i], true
	}
	return ticket.Item{}, false
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []ticket.Item {
	return append([]ticket.Item(nil), c.items...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Total returns the sum of line subtotals.
func (c *Cart) Total() decimal.Decimal {
	return ticket.Total(c.items)
}

// CustomerID returns the selected customer, or "" when none is selected.
func (c *Cart) CustomerID() string {
	return c.customerID
}

// Clear empties the cart and drops the selected customer.
func (c *Cart) Clear() {
	c.items = nil
	c.customerID = ""
}

func (c *Cart) setQuantity(i, qty int) {
	c.items[i].Quantity = qty
	c.items[i].Subtotal = c.items[i].Price.Mul(decimal.NewFromInt(int64(qty)))
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}

func (c *Cart) index(key LineKey) int {
	for i, it := range c.items {
		if it.ProductID == key.ProductID && it.Size == key.Size {
			return i
		}
	}
	return -1
}
