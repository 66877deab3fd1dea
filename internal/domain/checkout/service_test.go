package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
	"github.com/xenking/kicks-pos/internal/storage/memory"
)

// --- Fixtures ---

type fixture struct {
	products  *memory.ProductStore
	customers *memory.CustomerStore
	tickets   ticket.Repository
	svc       *Service
}

func airMax() product.Product {
	return product.Product{
		ID:    "1",
		SKU:   "NIK-AM-001",
		Brand: "Nike",
		Model: "Air Max 90",
		Color: "Blanco/Negro",
		Price: decimal.RequireFromString("450.00"),
		Sizes: []product.Size{
			{Label: "38", Stock: 5},
			{Label: "39", Stock: 10},
			{Label: "40", Stock: 8},
			{Label: "41", Stock: 6},
			{Label: "42", Stock: 4},
		},
	}
}

func stanSmith() product.Product {
	return product.Product{
		ID:    "2",
		SKU:   "ADI-SS-002",
		Brand: "Adidas",
		Model: "Stan Smith",
		Color: "Blanco/Verde",
		Price: decimal.RequireFromString("320.00"),
		Sizes: []product.Size{{Label: "40", Stock: 1}, {Label: "41", Stock: 0}},
	}
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	products, err := memory.NewProductStore(airMax(), stanSmith())
	require.NoError(t, err)
	customers, err := memory.NewCustomerStore(customer.Customer{ID: "c1", Name: "Juan Pérez"})
	require.NoError(t, err)
	tickets := memory.NewTicketStore()

	return &fixture{
		products:  products,
		customers: customers,
		tickets:   tickets,
		svc:       NewService(products, customers, tickets, opts...),
	}
}

func (f *fixture) stock(t *testing.T, id, size string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	n, ok := p.StockFor(size)
	require.True(t, ok)
	return n
}

// failingTickets fails MarkPaid while delegating everything else.
type failingTickets struct {
	ticket.Repository
	err error
}

func (f *failingTickets) MarkPaid(context.Context, string, ticket.Payment) (*ticket.Ticket, error) {
	return nil, f.err
}

// --- Tests ---

func TestService_SaleEndToEnd(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return paidAt }))

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))

	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)
	assert.Equal(t, "TKT-001", tk.Number)
	assert.Equal(t, ticket.StatusPending, tk.Status)
	assert.Equal(t, "jota", tk.CreatedBy)
	assert.True(t, decimal.RequireFromString("450.00").Equal(tk.Total))
	assert.Zero(t, cart.Len(), "cart cleared")
	assert.Equal(t, 8, f.stock(t, "1", "40"), "stock untouched until payment")

	paid, err := f.svc.ProcessPayment(ctx, PaymentRequest{
		TicketID:       tk.ID,
		Method:         ticket.MethodCash,
		AmountReceived: decimal.RequireFromString("500.00"),
		Operator:       "jota",
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusPaid, paid.Status)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, ticket.MethodCash, paid.Payment.Method)
	assert.True(t, decimal.RequireFromString("500.00").Equal(paid.Payment.AmountReceived))
	assert.True(t, decimal.RequireFromString("50.00").Equal(paid.Payment.Change))
	assert.Equal(t, paidAt, paid.Payment.PaidAt)
	assert.Equal(t, "jota", paid.Payment.PaidBy)
	assert.Equal(t, 7, f.stock(t, "1", "40"))
}

func TestService_GenerateTicketEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateTicket(context.Background(), &Cart{}, "jota")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.True(t, IsValidation(err))

	all, err := f.tickets.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_GenerateTicketRevalidatesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "2", "40"))
	_, err := f.products.SetStock(ctx, "2", "40", 0)
	require.NoError(t, err)

	_, err = f.svc.GenerateTicket(ctx, &cart, "jota")
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 1, cart.Len(), "cart kept on failure")
}

func TestService_GenerateTicketWithCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "38"))
	require.NoError(t, f.svc.SelectCustomer(ctx, &cart, "c1"))

	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)
	assert.Equal(t, "c1", tk.CustomerID)

	c, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, c.TotalPurchases, "stats recorded at payment")
}

func TestService_SelectCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.ErrorIs(t, f.svc.SelectCustomer(ctx, &cart, "nope"), customer.ErrNotFound)
	assert.Empty(t, cart.CustomerID())

	require.NoError(t, f.svc.SelectCustomer(ctx, &cart, "c1"))
	assert.Equal(t, "c1", cart.CustomerID())
	require.NoError(t, f.svc.SelectCustomer(ctx, &cart, ""))
	assert.Empty(t, cart.CustomerID())
}

func TestService_ChangeQuantityBoundedByStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := LineKey{ProductID: "1", Size: "42"}

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "42"))
	require.NoError(t, f.svc.ChangeQuantity(ctx, &cart, key, 3))

	err := f.svc.ChangeQuantity(ctx, &cart, key, 1)
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	line, _ := cart.Line(key)
	assert.Equal(t, 4, line.Quantity)

	require.NoError(t, f.svc.ChangeQuantity(ctx, &cart, key, -4))
	assert.Zero(t, cart.Len())
	require.ErrorIs(t, f.svc.ChangeQuantity(ctx, &cart, key, 1), ErrLineNotFound)
}

func TestService_AddToCartUnknownProduct(t *testing.T) {
	f := newFixture(t)

	err := f.svc.AddToCart(context.Background(), &Cart{}, "404", "40")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestService_ProcessPaymentValidation(t *testing.T) {
	tests := []struct {
		name   string
		method ticket.PaymentMethod
		amount string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "cash below total",
			method: ticket.MethodCash,
			amount: "449.99",
			check: func(t *testing.T, err error) {
				var payErr *InsufficientPaymentError
				require.ErrorAs(t, err, &payErr)
				assert.True(t, decimal.RequireFromString("450.00").Equal(payErr.Total))
				assert.True(t, decimal.RequireFromString("449.99").Equal(payErr.Received))
			},
		},
		{
			name:   "cash missing amount",
			method: ticket.MethodCash,
			amount: "0",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInsufficientPayment)
			},
		},
		{
			name:   "unknown method",
			method: "CHEQUE",
			amount: "450",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ticket.ErrUnknownPaymentMethod)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			var cart Cart
			require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))
			tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
			require.NoError(t, err)

			_, err = f.svc.ProcessPayment(ctx, PaymentRequest{
				TicketID:       tk.ID,
				Method:         tt.method,
				AmountReceived: decimal.RequireFromString(tt.amount),
			})
			tt.check(t, err)
			assert.True(t, IsValidation(err))

			got, err := f.tickets.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.Equal(t, ticket.StatusPending, got.Status)
			assert.Nil(t, got.Payment)
			assert.Equal(t, 8, f.stock(t, "1", "40"))
		})
	}
}

func TestService_ProcessPaymentNonCashIsExact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, method := range []ticket.PaymentMethod{ticket.MethodCard, ticket.MethodTransfer} {
		var cart Cart
		require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "39"))
		tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
		require.NoError(t, err)

		paid, err := f.svc.ProcessPayment(ctx, PaymentRequest{
			TicketID:       tk.ID,
			Method:         method,
			AmountReceived: decimal.RequireFromString("1000"),
		})
		require.NoError(t, err)
		assert.True(t, paid.Total.Equal(paid.Payment.AmountReceived), method)
		assert.True(t, paid.Payment.Change.IsZero(), method)
	}
	assert.Equal(t, 8, f.stock(t, "1", "39"))
}

func TestService_ProcessPaymentTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))
	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)

	req := PaymentRequest{TicketID: tk.ID, Method: ticket.MethodCard}
	_, err = f.svc.ProcessPayment(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.ProcessPayment(ctx, req)
	var trErr *ticket.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, ticket.StatusPaid, trErr.From)
	assert.Equal(t, 7, f.stock(t, "1", "40"), "stock decremented once")
}

func TestService_ProcessPaymentStockGoneIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "2", "40"))
	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)

	// Another sale empties the Stan Smith before this ticket is paid.
	_, err = f.products.SetStock(ctx, "2", "40", 0)
	require.NoError(t, err)

	_, err = f.svc.ProcessPayment(ctx, PaymentRequest{TicketID: tk.ID, Method: ticket.MethodCard})
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	assert.Equal(t, 8, f.stock(t, "1", "40"), "no partial decrement")
	got, err := f.tickets.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusPending, got.Status)
}

func TestService_ProcessPaymentRestoresStockWhenMarkPaidFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tickets := &failingTickets{Repository: f.tickets, err: errors.New("disk full")}
	svc := NewService(f.products, f.customers, tickets)

	var cart Cart
	require.NoError(t, svc.AddToCart(ctx, &cart, "1", "40"))
	tk, err := svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)

	_, err = svc.ProcessPayment(ctx, PaymentRequest{TicketID: tk.ID, Method: ticket.MethodCard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark paid")
	assert.Equal(t, 8, f.stock(t, "1", "40"))
}

func TestService_ProcessPaymentRecordsCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for range 2 {
		var cart Cart
		require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "41"))
		require.NoError(t, f.svc.SelectCustomer(ctx, &cart, "c1"))
		tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
		require.NoError(t, err)
		_, err = f.svc.ProcessPayment(ctx, PaymentRequest{TicketID: tk.ID, Method: ticket.MethodTransfer})
		require.NoError(t, err)
	}

	c, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalPurchases)
	assert.True(t, decimal.RequireFromString("900.00").Equal(c.TotalSpent))
}

func TestService_ProcessPaymentCustomerRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "41"))
	require.NoError(t, f.svc.SelectCustomer(ctx, &cart, "c1"))
	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)
	require.NoError(t, f.customers.Remove(ctx, "c1"))

	paid, err := f.svc.ProcessPayment(ctx, PaymentRequest{TicketID: tk.ID, Method: ticket.MethodCard})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusPaid, paid.Status)
}

func TestService_CancelTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cart Cart
	require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))
	tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
	require.NoError(t, err)

	cancelled, err := f.svc.CancelTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusCancelled, cancelled.Status)
	assert.Equal(t, 8, f.stock(t, "1", "40"))

	_, err = f.svc.ProcessPayment(ctx, PaymentRequest{TicketID: tk.ID, Method: ticket.MethodCard})
	require.ErrorIs(t, err, ticket.ErrNotPending)
	_, err = f.svc.CancelTicket(ctx, tk.ID)
	require.ErrorIs(t, err, ticket.ErrNotPending)
	_, err = f.svc.CancelTicket(ctx, "missing")
	require.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestService_TicketNumbersIncrease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var numbers []string
	for range 3 {
		var cart Cart
		require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "39"))
		tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
		require.NoError(t, err)
		numbers = append(numbers, tk.Number)
	}
	assert.Equal(t, []string{"TKT-001", "TKT-002", "TKT-003"}, numbers)
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("checkout"))
	require.NoError(t, err)
	f := newFixture(t, WithMetrics(m))

	for i := range 2 {
		var cart Cart
		require.NoError(t, f.svc.AddToCart(ctx, &cart, "1", "40"))
		tk, err := f.svc.GenerateTicket(ctx, &cart, "jota")
		require.NoError(t, err)
		if i == 0 {
			_, err = f.svc.ProcessPayment(ctx, PaymentRequest{
				TicketID:       tk.ID,
				Method:         ticket.MethodCash,
				AmountReceived: decimal.NewFromInt(500),
			})
		} else {
			_, err = f.svc.CancelTicket(ctx, tk.ID)
		}
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	got := map[string]float64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					got[md.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					got[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{
		"pos.tickets.created":   2,
		"pos.tickets.paid":      1,
		"pos.tickets.cancelled": 1,
		"pos.revenue":           450,
	}, got)
}
