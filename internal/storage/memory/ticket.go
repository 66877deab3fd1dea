package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

var _ ticket.Repository = (*TicketStore)(nil)

// TicketStore implements ticket.Repository in process memory. The ticket
// number counter lives with the tickets and restarts with the process.
type TicketStore struct {
	mu      sync.RWMutex
	tickets []ticket.Ticket
	counter int
	newID   func() string
	now     func() time.Time
}

// NewTicketStore returns a TicketStore seeded with initial. The next ticket
// number follows the seeded tickets.
func NewTicketStore(initial ...ticket.Ticket) *TicketStore {
	s := &TicketStore{
		counter: len(initial) + 1,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, t := range initial {
		s.tickets = append(s.tickets, t.Clone())
	}
	return s
}

// Create snapshots req.Items into a new PENDING ticket and assigns the next
// ticket number.
func (s *TicketStore) Create(_ context.Context, req ticket.NewTicket) (*ticket.Ticket, error) {
	if len(req.Items) == 0 {
		return nil, ticket.ErrEmptyItems
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := append([]ticket.Item(nil), req.Items...)
	t := ticket.Ticket{
		ID:         s.newID(),
		Number:     ticket.FormatNumber(s.counter),
		Date:       s.now(),
		Items:      items,
		Total:      ticket.Total(items),
		Status:     ticket.StatusPending,
		CreatedBy:  req.CreatedBy,
		CustomerID: req.CustomerID,
	}
	s.tickets = append(s.tickets, t)
	s.counter++

	out := t.Clone()
	return &out, nil
}

// MarkPaid moves a PENDING ticket to PAID and attaches payment.
func (s *TicketStore) MarkPaid(_ context.Context, id string, payment ticket.Payment) (*ticket.Ticket, error) {
	return s.transition(id, ticket.StatusPaid, func(t *ticket.Ticket) {
		p := payment
		t.Payment = &p
	})
}

// Cancel moves a PENDING ticket to CANCELLED.
func (s *TicketStore) Cancel(_ context.Context, id string) (*ticket.Ticket, error) {
	return s.transition(id, ticket.StatusCancelled, nil)
}

func (s *TicketStore) transition(id string, to ticket.Status, apply func(*ticket.Ticket)) (*ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.Wrapf(ticket.ErrNotFound, "ticket %s", id)
	}
	t := &s.tickets[i]
	if t.Status != ticket.StatusPending {
		return nil, &ticket.TransitionError{TicketID: id, From: t.Status, To: to}
	}
	t.Status = to
	if apply != nil {
		apply(t)
	}

	out := t.Clone()
	return &out, nil
}

// GetByID returns the ticket with the given id.
func (s *TicketStore) GetByID(_ context.Context, id string) (*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.Wrapf(ticket.ErrNotFound, "ticket %s", id)
	}
	out := s.tickets[i].Clone()
	return &out, nil
}

// List returns all tickets in creation order.
func (s *TicketStore) List(ctx context.Context) ([]ticket.Ticket, error) {
	return s.ListByStatus(ctx, "")
}

// ListByStatus returns tickets in the given status, or all tickets when
// status is empty.
func (s *TicketStore) ListByStatus(_ context.Context, status ticket.Status) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ticket.Ticket
	for _, t := range s.tickets {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *TicketStore) indexOf(id string) int {
	for i, t := range s.tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
