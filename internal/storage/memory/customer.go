package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kicks-pos/internal/domain/customer"
)

var _ customer.Repository = (*CustomerStore)(nil)

// CustomerStore implements customer.Repository in process memory.
type CustomerStore struct {
	mu        sync.RWMutex
	customers []customer.Customer
	newID     func() string
	now       func() time.Time
}

// NewCustomerStore returns a CustomerStore seeded with initial. Seeded
// customers keep their id, creation time and stats when present.
func NewCustomerStore(initial ...customer.Customer) (*CustomerStore, error) {
	s := &CustomerStore{newID: uuid.NewString, now: time.Now}
	for _, c := range initial {
		if err := c.Validate(); err != nil {
			return nil, errors.Wrapf(err, "seed customer %q", c.Name)
		}
		if c.ID == "" {
			c.ID = s.newID()
		}
		if s.indexOf(c.ID) >= 0 {
			return nil, errors.Wrapf(customer.ErrInvalidCustomer, "seed customer id %q already exists", c.ID)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		s.customers = append(s.customers, c)
	}
	return s, nil
}

// List returns all customers in insertion order.
func (s *CustomerStore) List(_ context.Context) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]customer.Customer(nil), s.customers...), nil
}

// Search returns customers matching term, in insertion order. An empty
// term matches everyone.
func (s *CustomerStore) Search(_ context.Context, term string) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []customer.Customer
	for _, c := range s.customers {
		if c.Matches(term) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetByID returns the customer with the given id.
func (s *CustomerStore) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, customer.ErrNotFound
	}
	c := s.customers[i]
	return &c, nil
}

// Add assigns an id and creation time, zeroes the purchase stats, and
// appends the customer.
func (s *CustomerStore) Add(_ context.Context, c customer.Customer) (*customer.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.newID()
	c.CreatedAt = s.now()
	c.TotalPurchases = 0
	c.TotalSpent = decimal.Zero
	s.customers = append(s.customers, c)
	return &c, nil
}

// Update merges the contact fields of patch.
func (s *CustomerStore) Update(_ context.Context, id string, patch customer.Patch) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, customer.ErrNotFound
	}
	updated := patch.Apply(s.customers[i])
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	s.customers[i] = updated
	return &updated, nil
}

// Remove deletes the customer with the given id.
func (s *CustomerStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return customer.ErrNotFound
	}
	s.customers = append(s.customers[:i], s.customers[i+1:]...)
	return nil
}

// RecordPurchase counts one purchase of amount against the customer.
func (s *CustomerStore) RecordPurchase(_ context.Context, id string, amount decimal.Decimal) (*customer.Customer, error) {
	if amount.IsNegative() {
		return nil, errors.Wrap(customer.ErrInvalidCustomer, "purchase amount must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, customer.ErrNotFound
	}
	c := &s.customers[i]
	c.TotalPurchases++
	c.TotalSpent = c.TotalSpent.Add(amount)

	out := *c
	return &out, nil
}

func (s *CustomerStore) indexOf(id string) int {
	for i, c := range s.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}
