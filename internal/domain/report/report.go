// Package report aggregates sales and stock figures for the reports screen.
// Everything here is a pure read over ticket and product snapshots.
package report

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

const (
	topProductsLimit = 5
	lowStockMax      = 5
)

// ErrUnknownRange is returned for a date range outside Ranges.
var ErrUnknownRange = errors.New("unknown date range")

// Range selects the paid tickets a summary covers.
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

// ParseRange parses a range name. The empty string selects today.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeToday, nil
	case RangeToday, RangeWeek, RangeMonth, RangeAll:
		return r, nil
	default:
		return "", errors.Wrapf(ErrUnknownRange, "%q", s)
	}
}

// Start returns the earliest ticket date in the range. RangeAll returns the
// zero time.
func (r Range) Start(now time.Time) time.Time {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// TopProduct is the sales figure of one brand, model and color.
type TopProduct struct {
	Name     string
	Quantity int
	Revenue  decimal.Decimal
}

// productKey groups ticket lines of the same brand, model and color across
// sizes.
type productKey struct {
	Brand string
	Model string
	Color string
}

// MethodTotal is the paid revenue of one payment method.
type MethodTotal struct {
	Method ticket.PaymentMethod
	Total  decimal.Decimal
}

// LowStock is a product running out.
type LowStock struct {
	ProductID  string
	SKU        string
	Name       string
	TotalStock int
}

// Summary is the reports screen for one range.
type Summary struct {
	Range         Range
	From          time.Time
	Revenue       decimal.Decimal
	PaidTickets   int
	AverageTicket decimal.Decimal
	TopProducts   []TopProduct
	ByMethod      []MethodTotal
	LowStock      []LowStock
	OutOfStock    int

	// Pending figures cover every PENDING ticket regardless of range.
	PendingTickets int
	PendingTotal   decimal.Decimal
}

// Summarize computes the summary of tickets and products for r at now.
func Summarize(tickets []ticket.Ticket, products []product.Product, r Range, now time.Time) Summary {
	from := r.Start(now)
	s := Summary{
		Range:         r,
		From:          from,
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		PendingTotal:  decimal.Zero,
	}

	byMethod := make(map[ticket.PaymentMethod]decimal.Decimal)
	var (
		top   []TopProduct
		index = make(map[productKey]int)
	)
	for _, t := range tickets {
		if t.Status == ticket.StatusPending {
			s.PendingTickets++
			s.PendingTotal = s.PendingTotal.Add(t.Total)
			continue
		}
		if t.Status != ticket.StatusPaid || t.Date.Before(from) {
			continue
		}

		s.PaidTickets++
		s.Revenue = s.Revenue.Add(t.Total)
		if t.Payment != nil {
			byMethod[t.Payment.Method] = byMethod[t.Payment.Method].Add(t.Total)
		}

		for _, it := range t.Items {
			key := productKey{Brand: it.Brand, Model: it.Model, Color: it.Color}
			i, ok := index[key]
			if !ok {
				i = len(top)
				index[key] = i
				name := product.Product{Brand: key.Brand, Model: key.Model, Color: key.Color}.DisplayName()
				top = append(top, TopProduct{Name: name, Revenue: decimal.Zero})
			}
			top[i].Quantity += it.Quantity
			top[i].Revenue = top[i].Revenue.Add(it.Subtotal)
		}
	}

	if s.PaidTickets > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(s.PaidTickets)))
	}

	slices.SortStableFunc(top, func(a, b TopProduct) int {
		return b.Quantity - a.Quantity
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}
	s.TopProducts = top

	for _, m := range ticket.Methods() {
		total, ok := byMethod[m]
		if !ok {
			total = decimal.Zero
		}
		s.ByMethod = append(s.ByMethod, MethodTotal{Method: m, Total: total})
	}

	s.LowStock, s.OutOfStock = StockAlerts(products)
	return s
}

// StockAlerts returns the products with total stock in (0, 5], ascending by
// stock, and the number of products with nothing left in any size.
func StockAlerts(products []product.Product) ([]LowStock, int) {
	var (
		low []LowStock
		out int
	)
	for _, p := range products {
		total := p.TotalStock()
		if total > 0 && total <= lowStockMax {
			low = append(low, LowStock{
				ProductID:  p.ID,
				SKU:        p.SKU,
				Name:       p.DisplayName(),
				TotalStock: total,
			})
		}
		if p.OutOfStock() {
			out++
		}
	}
	slices.SortStableFunc(low, func(a, b LowStock) int {
		return a.TotalStock - b.TotalStock
	})
	return low, out
}

// CustomerOverview counts customers for the customers screen.
type CustomerOverview struct {
	Total        int
	Active       int
	NewThisMonth int
}

// Customers computes the overview of customers at now. A customer is new
// when created in the calendar month of now.
func Customers(customers []customer.Customer, now time.Time) CustomerOverview {
	y, m, _ := now.Date()
	o := CustomerOverview{Total: len(customers)}
	for _, c := range customers {
		if c.Active() {
			o.Active++
		}
		cy, cm, _ := c.CreatedAt.In(now.Location()).Date()
		if cy == y && cm == m {
			o.NewThisMonth++
		}
	}
	return o
}

// Service reads the stores and builds reports.
type Service struct {
	products  product.Repository
	tickets   ticket.Repository
	customers customer.Repository
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source that anchors date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a report Service.
func NewService(products product.Repository, tickets ticket.Repository, customers customer.Repository, opts ...Option) *Service {
	s := &Service{
		products:  products,
		tickets:   tickets,
		customers: customers,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summary returns the summary for r.
func (s *Service) Summary(ctx context.Context, r Range) (Summary, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "list tickets")
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "list products")
	}
	return Summarize(tickets, products, r, s.now()), nil
}

// Customers returns the customer overview.
func (s *Service) Customers(ctx context.Context) (CustomerOverview, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return CustomerOverview{}, errors.Wrap(err, "list customers")
	}
	return Customers(customers, s.now()), nil
}
