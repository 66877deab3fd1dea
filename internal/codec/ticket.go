package codec

import (
	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

// EncodeItem writes a ticket or cart line.
func EncodeItem(e *jx.Encoder, it ticket.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(it.SKU) })
		e.Field("brand", func(e *jx.Encoder) { e.Str(it.Brand) })
		e.Field("model", func(e *jx.Encoder) { e.Str(it.Model) })
		e.Field("color", func(e *jx.Encoder) { e.Str(it.Color) })
		e.Field("size", func(e *jx.Encoder) { e.Str(it.Size) })
		e.Field("price", func(e *jx.Encoder) { Money(e, it.Price) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { Money(e, it.Subtotal) })
	})
}

// EncodeItems writes a JSON array of lines.
func EncodeItems(e *jx.Encoder, items []ticket.Item) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			EncodeItem(e, it)
		}
	})
}

// EncodeTicket writes t. The payment field is null until t is paid.
func EncodeTicket(e *jx.Encoder, t ticket.Ticket) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(t.ID) })
		e.Field("ticket_number", func(e *jx.Encoder) { e.Str(t.Number) })
		e.Field("date", func(e *jx.Encoder) { Time(e, t.Date) })
		e.Field("items", func(e *jx.Encoder) { EncodeItems(e, t.Items) })
		e.Field("total", func(e *jx.Encoder) { Money(e, t.Total) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(t.Status)) })
		e.Field("created_by", func(e *jx.Encoder) { e.Str(t.CreatedBy) })
		e.Field("customer_id", func(e *jx.Encoder) {
			if t.CustomerID == "" {
				e.Null()
				return
			}
			e.Str(t.CustomerID)
		})
		e.Field("payment_info", func(e *jx.Encoder) {
			if t.Payment == nil {
				e.Null()
				return
			}
			encodePayment(e, *t.Payment)
		})
	})
}

// EncodeTickets writes a JSON array of tickets.
func EncodeTickets(e *jx.Encoder, ts []ticket.Ticket) {
	e.Arr(func(e *jx.Encoder) {
		for _, t := range ts {
			EncodeTicket(e, t)
		}
	})
}

func encodePayment(e *jx.Encoder, p ticket.Payment) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("method", func(e *jx.Encoder) { e.Str(string(p.Method)) })
		e.Field("amount_received", func(e *jx.Encoder) { Money(e, p.AmountReceived) })
		e.Field("change", func(e *jx.Encoder) { Money(e, p.Change) })
		e.Field("paid_at", func(e *jx.Encoder) { Time(e, p.PaidAt) })
		e.Field("paid_by", func(e *jx.Encoder) { e.Str(p.PaidBy) })
	})
}
