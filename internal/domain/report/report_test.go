package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
	"github.com/xenking/kicks-pos/internal/storage/memory"
)

var now = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func item(brand, model string, qty int, price string) ticket.Item {
	p := decimal.RequireFromString(price)
	return ticket.Item{
		Brand:    brand,
		Model:    model,
		Color:    "Negro",
		Price:    p,
		Quantity: qty,
		Subtotal: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func paid(date time.Time, method ticket.PaymentMethod, items ...ticket.Item) ticket.Ticket {
	return ticket.Ticket{
		Date:    date,
		Items:   items,
		Total:   ticket.Total(items),
		Status:  ticket.StatusPaid,
		Payment: &ticket.Payment{Method: method},
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "", want: RangeToday},
		{in: "today", want: RangeToday},
		{in: "week", want: RangeWeek},
		{in: "month", want: RangeMonth},
		{in: "all", want: RangeAll},
		{in: "year", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_Start(t *testing.T) {
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), RangeToday.Start(now))
	assert.Equal(t, time.Date(2026, 3, 8, 14, 30, 0, 0, time.UTC), RangeWeek.Start(now))
	assert.Equal(t, time.Date(2026, 2, 13, 14, 30, 0, 0, time.UTC), RangeMonth.Start(now))
	assert.True(t, RangeAll.Start(now).IsZero())
}

func TestSummarize_Revenue(t *testing.T) {
	tickets := []ticket.Ticket{
		paid(now.Add(-time.Hour), ticket.MethodCash, item("Nike", "Air Max", 1, "450.00")),
		paid(now.Add(-2*time.Hour), ticket.MethodCard, item("Adidas", "Stan Smith", 1, "320.00")),
		paid(now.AddDate(0, 0, -3), ticket.MethodCash, item("Nike", "Air Max", 2, "450.00")),
		{Date: now, Status: ticket.StatusCancelled, Total: decimal.NewFromInt(1000)},
		{Date: now, Status: ticket.StatusPending, Total: decimal.NewFromInt(250)},
		{Date: now.AddDate(0, -6, 0), Status: ticket.StatusPending, Total: decimal.NewFromInt(100)},
	}

	tests := []struct {
		name    string
		r       Range
		revenue string
		count   int
		average string
	}{
		{name: "today", r: RangeToday, revenue: "770.00", count: 2, average: "385.00"},
		{name: "week", r: RangeWeek, revenue: "1670.00", count: 3, average: "556.6666666666666667"},
		{name: "all", r: RangeAll, revenue: "1670.00", count: 3, average: "556.6666666666666667"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tickets, nil, tt.r, now)

			assert.Equal(t, tt.count, s.PaidTickets)
			assert.True(t, decimal.RequireFromString(tt.revenue).Equal(s.Revenue), s.Revenue.String())
			assert.True(t, decimal.RequireFromString(tt.average).Equal(s.AverageTicket), s.AverageTicket.String())
			assert.Equal(t, 2, s.PendingTickets)
			assert.True(t, decimal.NewFromInt(350).Equal(s.PendingTotal))
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, RangeToday, now)

	assert.Zero(t, s.PaidTickets)
	assert.True(t, s.Revenue.IsZero())
	assert.True(t, s.AverageTicket.IsZero())
	assert.Empty(t, s.TopProducts)
	require.Len(t, s.ByMethod, 3)
	for _, m := range s.ByMethod {
		assert.True(t, m.Total.IsZero(), m.Method)
	}
}

func TestSummarize_ByMethod(t *testing.T) {
	tickets := []ticket.Ticket{
		paid(now, ticket.MethodCash, item("Nike", "Air Max", 1, "100")),
		paid(now, ticket.MethodCash, item("Nike", "Air Max", 1, "50")),
		paid(now, ticket.MethodTransfer, item("Nike", "Air Max", 1, "25")),
	}

	s := Summarize(tickets, nil, RangeAll, now)

	want := []MethodTotal{
		{Method: ticket.MethodCash, Total: decimal.NewFromInt(150)},
		{Method: ticket.MethodCard, Total: decimal.Zero},
		{Method: ticket.MethodTransfer, Total: decimal.NewFromInt(25)},
	}
	require.Len(t, s.ByMethod, len(want))
	for i := range want {
		assert.Equal(t, want[i].Method, s.ByMethod[i].Method)
		assert.True(t, want[i].Total.Equal(s.ByMethod[i].Total), want[i].Method)
	}
}

func TestSummarize_TopProducts(t *testing.T) {
	tickets := []ticket.Ticket{
		paid(now, ticket.MethodCash,
			item("A", "1", 1, "10"),
			item("B", "2", 3, "10"),
			item("C", "3", 1, "10"),
		),
		paid(now, ticket.MethodCash,
			item("D", "4", 2, "10"),
			item("E", "5", 1, "10"),
			item("F", "6", 1, "10"),
			item("A", "1", 1, "10"),
		),
	}

	s := Summarize(tickets, nil, RangeAll, now)

	var names []string
	for _, p := range s.TopProducts {
		names = append(names, p.Name)
	}
	// Ties keep discovery order.
	assert.Equal(t, []string{
		"B 2 - Negro",
		"A 1 - Negro",
		"D 4 - Negro",
		"C 3 - Negro",
		"E 5 - Negro",
	}, names)
	assert.Equal(t, 3, s.TopProducts[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(s.TopProducts[0].Revenue))
}

func TestStockAlerts(t *testing.T) {
	sizes := func(stock ...int) []product.Size {
		var out []product.Size
		for i, n := range stock {
			out = append(out, product.Size{Label: string(rune('A' + i)), Stock: n})
		}
		return out
	}
	products := []product.Product{
		{ID: "1", Brand: "Nike", Model: "Air", Color: "Rojo", Sizes: sizes(2, 3)},
		{ID: "2", Brand: "Vans", Model: "Old", Color: "Azul", Sizes: sizes(0, 0)},
		{ID: "3", Brand: "Puma", Model: "Suede", Color: "Gris", Sizes: sizes(1)},
		{ID: "4", Brand: "Asics", Model: "Gel", Color: "Blanco", Sizes: sizes(4, 2)},
		{ID: "5", Brand: "Nb", Model: "574", Color: "Verde", Sizes: sizes(5, 0)},
	}

	low, out := StockAlerts(products)

	assert.Equal(t, 1, out)
	var ids []string
	for _, l := range low {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"3", "1", "5"}, ids)
	assert.Equal(t, "Puma Suede - Gris", low[0].Name)
	assert.Equal(t, 1, low[0].TotalStock)
}

func TestSummarize_TopProductsGroupByFields(t *testing.T) {
	line := func(brand, model, color string, sizeLabel string) ticket.Item {
		it := item(brand, model, 1, "10")
		it.Color = color
		it.Size = sizeLabel
		return it
	}
	tickets := []ticket.Ticket{
		paid(now, ticket.MethodCash,
			line("A", "B - C", "D", "40"),
			line("A", "B", "C - D", "40"),
			line("A", "B", "C - D", "41"),
		),
	}

	s := Summarize(tickets, nil, RangeAll, now)

	// Both render as "A B - C - D" but are different products.
	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, 2, s.TopProducts[0].Quantity)
	assert.Equal(t, 1, s.TopProducts[1].Quantity)
	assert.Equal(t, s.TopProducts[0].Name, s.TopProducts[1].Name)
}

func TestCustomers(t *testing.T) {
	customers := []customer.Customer{
		{ID: "1", CreatedAt: now.AddDate(0, 0, -2), TotalPurchases: 3},
		{ID: "2", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "3", CreatedAt: time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), TotalPurchases: 1},
		{ID: "4", CreatedAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	o := Customers(customers, now)

	assert.Equal(t, CustomerOverview{Total: 4, Active: 2, NewThisMonth: 2}, o)
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	products, err := memory.NewProductStore(product.Product{
		ID: "1", SKU: "X", Brand: "Nike", Model: "Air", Color: "Rojo",
		Price: decimal.NewFromInt(10),
		Sizes: []product.Size{{Label: "40", Stock: 0}},
	})
	require.NoError(t, err)
	customers, err := memory.NewCustomerStore(customer.Customer{Name: "Ana", CreatedAt: now})
	require.NoError(t, err)
	tickets := memory.NewTicketStore(paid(now, ticket.MethodCard, item("Nike", "Air", 1, "10")))

	svc := NewService(products, tickets, customers, WithClock(func() time.Time { return now }))

	s, err := svc.Summary(ctx, RangeToday)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PaidTickets)
	assert.Equal(t, 1, s.OutOfStock)

	o, err := svc.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, CustomerOverview{Total: 1, NewThisMonth: 1}, o)
}
