package customer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrInvalidCustomer is returned when customer fields fail validation.
	ErrInvalidCustomer = errors.New("invalid customer")
)

// Customer is a directory entry with purchase aggregates. TotalPurchases
// and TotalSpent only move through Repository.RecordPurchase.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	CreatedAt      time.Time
	TotalPurchases int
	TotalSpent     decimal.Decimal
}

// Matches reports whether term is a case-insensitive substring of the
// name or email, or a substring of the phone.
func (c Customer) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Email), term) ||
		strings.Contains(c.Phone, term)
}

// Active reports whether the customer has at least one purchase.
func (c Customer) Active() bool {
	return c.TotalPurchases > 0
}

// Patch lists the contact fields to replace on update. Purchase stats
// have no patch field.
type Patch struct {
	Name  *string
	Email *string
	Phone *string
}

// Apply returns c with the patch fields merged in.
func (p Patch) Apply(c Customer) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	return c
}

// Validate checks the required contact fields.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.Wrap(ErrInvalidCustomer, "name required")
	}
	return nil
}

// Repository defines customer directory operations.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	Search(ctx context.Context, term string) ([]Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	Add(ctx context.Context, c Customer) (*Customer, error)
	Update(ctx context.Context, id string, patch Patch) (*Customer, error)
	Remove(ctx context.Context, id string) error
	RecordPurchase(ctx context.Context, id string, amount decimal.Decimal) (*Customer, error)
}
