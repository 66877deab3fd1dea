package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	// StatusPending is the state of a freshly created ticket awaiting payment.
	StatusPending Status = "PENDING"
	// StatusPaid is terminal: the sale was committed and stock decremented.
	StatusPaid Status = "PAID"
	// StatusCancelled is terminal: the ticket was voided before payment.
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts s to a Status. The empty string is accepted and
// means "any status" to list operations.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case "", StatusPending, StatusPaid, StatusCancelled:
		return st, nil
	default:
		return "", errors.Errorf("unknown ticket status %q", s)
	}
}

// PaymentMethod is the tender used at the cashier.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "EFECTIVO"
	MethodCard     PaymentMethod = "TARJETA"
	MethodTransfer PaymentMethod = "TRANSFERENCIA"
)

// Methods lists the accepted payment methods in display order.
func Methods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodCard, MethodTransfer}
}

// ParsePaymentMethod converts s to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownPaymentMethod, "%q", s)
}

var (
	// ErrNotFound is returned when a requested ticket does not exist.
	ErrNotFound = errors.New("ticket not found")
	// ErrEmptyItems is returned when creating a ticket without line items.
	ErrEmptyItems = errors.New("ticket items required")
	// ErrNotPending is returned when a transition is attempted on a ticket
	// that already reached a terminal state.
	ErrNotPending = errors.New("ticket is not pending")
	// ErrUnknownPaymentMethod is returned for unsupported payment methods.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// TransitionError describes a rejected status transition.
type TransitionError struct {
	TicketID string
	From     Status
	To       Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("ticket %s: cannot transition from %s to %s", e.TicketID, e.From, e.To)
}

// Is reports ErrNotPending as the sentinel of this error.
func (e *TransitionError) Is(target error) bool {
	return target == ErrNotPending
}

// Item is a line of a ticket: a snapshot of the product taken when it was
// added to the cart.
type Item struct {
	ProductID string
	SKU       string
	Brand     string
	Model     string
	Color     string
	Size      string
	Price     decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// Payment records how a ticket was settled.
type Payment struct {
	Method         PaymentMethod
	AmountReceived decimal.Decimal
	Change         decimal.Decimal
	PaidAt         time.Time
	PaidBy         string
}

// Ticket is an immutable cart snapshot with a status lifecycle.
type Ticket struct {
	ID         string
	Number     string
	Date       time.Time
	Items      []Item
	Total      decimal.Decimal
	Status     Status
	CreatedBy  string
	CustomerID string
	Payment    *Payment
}

// Clone returns a deep copy of t.
func (t Ticket) Clone() Ticket {
	c := t
	c.Items = append([]Item(nil), t.Items...)
	if t.Payment != nil {
		p := *t.Payment
		c.Payment = &p
	}
	return c
}

// Total sums the subtotals of items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

// FormatNumber renders the human-facing ticket number for counter n.
func FormatNumber(n int) string {
	return fmt.Sprintf("TKT-%03d", n)
}

// NewTicket is the input for creating a ticket.
type NewTicket struct {
	Items      []Item
	CreatedBy  string
	CustomerID string
}

// Repository defines ticket persistence and lifecycle transitions.
type Repository interface {
	Create(ctx context.Context, req NewTicket) (*Ticket, error)
	MarkPaid(ctx context.Context, id string, payment Payment) (*Ticket, error)
	Cancel(ctx context.Context, id string) (*Ticket, error)
	GetByID(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context) ([]Ticket, error)
	ListByStatus(ctx context.Context, status Status) ([]Ticket, error)
}
