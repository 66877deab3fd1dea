package codec

import (
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/kicks-pos/internal/domain/report"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

func TestEncodeSummary(t *testing.T) {
	s := report.Summary{
		Range:         report.RangeToday,
		From:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Revenue:       decimal.NewFromInt(900),
		PaidTickets:   2,
		AverageTicket: decimal.NewFromInt(450),
		TopProducts: []report.TopProduct{
			{Name: "Nike Air Max 90 - Blanco/Negro", Quantity: 2, Revenue: decimal.NewFromInt(900)},
		},
		ByMethod: []report.MethodTotal{
			{Method: ticket.MethodCash, Total: decimal.NewFromInt(900)},
		},
		LowStock:       []report.LowStock{{ProductID: "3", SKU: "PUM-SU-003", Name: "Puma Suede - Rojo", TotalStock: 4}},
		OutOfStock:     1,
		PendingTickets: 1,
		PendingTotal:   decimal.RequireFromString("89.9"),
	}

	var e jx.Encoder
	EncodeSummary(&e, s)

	assert.JSONEq(t, `{
		"range": "today", "from": "2026-03-01T00:00:00Z",
		"revenue": 900.00, "paid_tickets": 2, "average_ticket": 450.00,
		"top_products": [{"name": "Nike Air Max 90 - Blanco/Negro", "quantity": 2, "revenue": 900.00}],
		"by_method": [{"method": "EFECTIVO", "total": 900.00}],
		"low_stock": [{"product_id": "3", "sku": "PUM-SU-003", "name": "Puma Suede - Rojo", "total_stock": 4}],
		"out_of_stock": 1, "pending_tickets": 1, "pending_total": 89.90
	}`, string(e.Bytes()))
}

func TestEncodeSummary_Empty(t *testing.T) {
	var e jx.Encoder
	EncodeSummary(&e, report.Summary{Range: report.RangeAll})

	assert.JSONEq(t, `{
		"range": "all", "from": null, "revenue": 0.00, "paid_tickets": 0, "average_ticket": 0.00,
		"top_products": [], "by_method": [], "low_stock": [],
		"out_of_stock": 0, "pending_tickets": 0, "pending_total": 0.00
	}`, string(e.Bytes()))
}

func TestEncodeCustomerOverview(t *testing.T) {
	var e jx.Encoder
	EncodeCustomerOverview(&e, report.CustomerOverview{Total: 3, Active: 1, NewThisMonth: 2})
	assert.JSONEq(t, `{"total": 3, "active": 1, "new_this_month": 2}`, string(e.Bytes()))
}
