package codec

import (
	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/domain/report"
)

// EncodeSummary writes a report summary.
func EncodeSummary(e *jx.Encoder, s report.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("range", func(e *jx.Encoder) { e.Str(string(s.Range)) })
		e.Field("from", func(e *jx.Encoder) { Time(e, s.From) })
		e.Field("revenue", func(e *jx.Encoder) { Money(e, s.Revenue) })
		e.Field("paid_tickets", func(e *jx.Encoder) { e.Int(s.PaidTickets) })
		e.Field("average_ticket", func(e *jx.Encoder) { Money(e, s.AverageTicket) })
		e.Field("top_products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range s.TopProducts {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(p.Quantity) })
						e.Field("revenue", func(e *jx.Encoder) { Money(e, p.Revenue) })
					})
				}
			})
		})
		e.Field("by_method", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, m := range s.ByMethod {
					e.Obj(func(e *jx.Encoder) {
						e.Field("method", func(e *jx.Encoder) { e.Str(string(m.Method)) })
						e.Field("total", func(e *jx.Encoder) { Money(e, m.Total) })
					})
				}
			})
		})
		e.Field("low_stock", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range s.LowStock {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product_id", func(e *jx.Encoder) { e.Str(l.ProductID) })
						e.Field("sku", func(e *jx.Encoder) { e.Str(l.SKU) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						e.Field("total_stock", func(e *jx.Encoder) { e.Int(l.TotalStock) })
					})
				}
			})
		})
		e.Field("out_of_stock", func(e *jx.Encoder) { e.Int(s.OutOfStock) })
		e.Field("pending_tickets", func(e *jx.Encoder) { e.Int(s.PendingTickets) })
		e.Field("pending_total", func(e *jx.Encoder) { Money(e, s.PendingTotal) })
	})
}

// EncodeCustomerOverview writes the customer counts.
func EncodeCustomerOverview(e *jx.Encoder, o report.CustomerOverview) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("total", func(e *jx.Encoder) { e.Int(o.Total) })
		e.Field("active", func(e *jx.Encoder) { e.Int(o.Active) })
		e.Field("new_this_month", func(e *jx.Encoder) { e.Int(o.NewThisMonth) })
	})
}
