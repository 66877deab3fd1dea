package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

var (
	// ErrEmptyCart is returned when generating a ticket from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrLineNotFound is returned when a cart line key is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInsufficientPayment is returned when cash received is below the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInvalidQuantity is returned for a zero quantity change.
	ErrInvalidQuantity = errors.New("quantity change must not be zero")
)

// InsufficientPaymentError reports the ticket total and the amount offered.
type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return "amount received " + e.Received.StringFixed(2) + " is below total " + e.Total.StringFixed(2)
}

// Is reports ErrInsufficientPayment as the sentinel of this error.
func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

// IsValidation reports whether err is a caller-input failure of the
// checkout workflow. Such failures never leave partial state behind.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInsufficientPayment) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, product.ErrInsufficientStock) ||
		errors.Is(err, ticket.ErrUnknownPaymentMethod)
}
