package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

// PaymentRequest holds the input for paying a ticket.
type PaymentRequest struct {
	TicketID       string
	Method         ticket.PaymentMethod
	AmountReceived decimal.Decimal
	Operator       string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the counters updated on ticket transitions.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer sets the tracer used for checkout spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the time source used for payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs the cart to ticket to payment workflow.
type Service struct {
	products  product.Repository
	customers customer.Repository
	tickets   ticket.Repository
	metrics   *Metrics
	tracer    trace.Tracer
	now       func() time.Time

	// mu serializes ticket generation, payment and cancellation so stock
	// checks and decrements cannot interleave.
	mu sync.Mutex
}

// NewService creates a checkout Service over the given repositories.
func NewService(
	products product.Repository,
	customers customer.Repository,
	tickets ticket.Repository,
	opts ...Option,
) *Service {
	s := &Service{
		products:  products,
		customers: customers,
		tickets:   tickets,
		tracer:    tracenoop.NewTracerProvider().Tracer(""),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		// Registration on the noop meter never fails.
		s.metrics, _ = NewMetrics(nil)
	}
	return s
}

// AddToCart adds one unit of the product size to cart.
func (s *Service) AddToCart(ctx context.Context, cart *Cart, productID, size string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return errors.Wrapf(err, "get product %s", productID)
	}
	return cart.Add(*p, size)
}

// ChangeQuantity applies delta to a cart line. Increases are bounded by the
// product's current stock for the size.
func (s *Service) ChangeQuantity(ctx context.Context, cart *Cart, key LineKey, delta int) error {
	line, ok := cart.Line(key)
	if !ok {
		return ErrLineNotFound
	}
	if delta > 0 {
		p, err := s.products.GetByID(ctx, key.ProductID)
		if err != nil {
			return errors.Wrapf(err, "get product %s", key.ProductID)
		}
		stock, _ := p.StockFor(key.Size)
		if want := line.Quantity + delta; want > stock {
			return &product.InsufficientStockError{
				ProductID: key.ProductID,
				Size:      key.Size,
				Available: stock,
				Requested: want,
			}
		}
	}
	return cart.ChangeQuantity(key, delta)
}

// SelectCustomer attaches an existing customer to cart. An empty id clears
// the selection.
func (s *Service) SelectCustomer(ctx context.Context, cart *Cart, customerID string) error {
	if customerID != "" {
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return errors.Wrapf(err, "get customer %s", customerID)
		}
	}
	cart.customerID = customerID
	return nil
}

// GenerateTicket turns cart into a PENDING ticket created by operator and
// clears the cart. Stock is re-checked against the catalog but not
// decremented; that happens at payment. Customer purchase stats are not
// touched here either, so a cancelled ticket never counts as a purchase.
func (s *Service) GenerateTicket(ctx context.Context, cart *Cart, operator string) (_ *ticket.Ticket, rerr error) {
	ctx, span := s.tracer.Start(ctx, "checkout.GenerateTicket",
		trace.WithAttributes(attribute.String("pos.operator", operator)),
	)
	defer func() { endSpan(span, rerr) }()

	if cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := cart.Items()
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "get product %s", it.ProductID)
		}
		if stock, ok := p.StockFor(it.Size); !ok || stock < it.Quantity {
			return nil, &product.InsufficientStockError{
				ProductID: it.ProductID,
				Size:      it.Size,
				Available: stock,
				Requested: it.Quantity,
			}
		}
	}

	customerID := cart.CustomerID()
	if customerID != "" {
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return nil, errors.Wrapf(err, "get customer %s", customerID)
		}
	}

	t, err := s.tickets.Create(ctx, ticket.NewTicket{
		Items:      items,
		CreatedBy:  operator,
		CustomerID: customerID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create ticket")
	}
	cart.Clear()

	s.metrics.ticketCreated(ctx)
	span.SetAttributes(attribute.String("pos.ticket.number", t.Number))
	zctx.From(ctx).Info("Ticket generated",
		zap.String("ticket_id", t.ID),
		zap.String("number", t.Number),
		zap.String("total", t.Total.StringFixed(2)),
		zap.Int("items", len(t.Items)),
	)
	return t, nil
}

// ProcessPayment pays a PENDING ticket. Cash payments must cover the total
// and yield change; other methods are taken as exact. Stock for every line
// is decremented at once, and the customer's purchase stats are updated.
func (s *Service) ProcessPayment(ctx context.Context, req PaymentRequest) (_ *ticket.Ticket, rerr error) {
	ctx, span := s.tracer.Start(ctx, "checkout.ProcessPayment",
		trace.WithAttributes(
			attribute.String("pos.ticket.id", req.TicketID),
			attribute.String("pos.payment.method", string(req.Method)),
		),
	)
	defer func() { endSpan(span, rerr) }()

	method, err := ticket.ParsePaymentMethod(string(req.Method))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if t.Status != ticket.StatusPending {
		return nil, &ticket.TransitionError{TicketID: t.ID, From: t.Status, To: ticket.StatusPaid}
	}

	received := t.Total
	if method == ticket.MethodCash {
		if req.AmountReceived.LessThan(t.Total) {
			return nil, &InsufficientPaymentError{Total: t.Total, Received: req.AmountReceived}
		}
		received = req.AmountReceived
	}

	deltas := make([]product.StockDelta, 0, len(t.Items))
	for _, it := range t.Items {
		deltas = append(deltas, product.StockDelta{ProductID: it.ProductID, Size: it.Size, Delta: -it.Quantity})
	}
	if err := s.products.AdjustStockBatch(ctx, deltas); err != nil {
		return nil, errors.Wrap(err, "decrement stock")
	}

	lg := zctx.From(ctx).With(zap.String("ticket_id", t.ID), zap.String("number", t.Number))

	paid, err := s.tickets.MarkPaid(ctx, t.ID, ticket.Payment{
		Method:         method,
		AmountReceived: received,
		Change:         received.Sub(t.Total),
		PaidAt:         s.now(),
		PaidBy:         req.Operator,
	})
	if err != nil {
		if restoreErr := s.products.AdjustStockBatch(ctx, negate(deltas)); restoreErr != nil {
			lg.Error("Restore stock after failed payment", zap.Error(restoreErr))
		}
		return nil, errors.Wrap(err, "mark paid")
	}

	if paid.CustomerID != "" {
		switch _, err := s.customers.RecordPurchase(ctx, paid.CustomerID, paid.Total); {
		case errors.Is(err, customer.ErrNotFound):
			lg.Warn("Customer removed before payment, stats not recorded",
				zap.String("customer_id", paid.CustomerID),
			)
		case err != nil:
			lg.Error("Record customer purchase", zap.String("customer_id", paid.CustomerID), zap.Error(err))
		}
	}

	s.metrics.ticketPaid(ctx, method, paid.Total)
	lg.Info("Ticket paid",
		zap.String("method", string(method)),
		zap.String("total", paid.Total.StringFixed(2)),
		zap.String("change", paid.Payment.Change.StringFixed(2)),
	)
	return paid, nil
}

// CancelTicket cancels a PENDING ticket. Stock is untouched since it was
// never decremented.
func (s *Service) CancelTicket(ctx context.Context, id string) (_ *ticket.Ticket, rerr error) {
	ctx, span := s.tracer.Start(ctx, "checkout.CancelTicket",
		trace.WithAttributes(attribute.String("pos.ticket.id", id)),
	)
	defer func() { endSpan(span, rerr) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tickets.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.ticketCancelled(ctx)
	zctx.From(ctx).Info("Ticket cancelled", zap.String("ticket_id", t.ID), zap.String("number", t.Number))
	return t, nil
}

func negate(deltas []product.StockDelta) []product.StockDelta {
	out := make([]product.StockDelta, len(deltas))
	for i, d := range deltas {
		d.Delta = -d.Delta
		out[i] = d
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
