package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/checkout"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) error {
	status, err := ticket.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		return badRequest(err)
	}
	ts, err := h.Tickets.ListByStatus(r.Context(), status)
	if err != nil {
		return errors.Wrap(err, "list tickets")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { codec.EncodeTickets(e, ts) })
	return nil
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) error {
	t, err := h.Tickets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeTicket(w, http.StatusOK, *t)
	return nil
}

// payTicket settles a ticket. amount_received is only read for cash.
func (h *Handler) payTicket(w http.ResponseWriter, r *http.Request) error {
	var (
		method   string
		received decimal.Decimal
	)
	if err := decodeBody(w, r, func(d *jx.Decoder) error {
		return decodeFields(d, map[string]func(*jx.Decoder) error{
			"method":          func(d *jx.Decoder) (err error) { method, err = d.Str(); return err },
			"amount_received": func(d *jx.Decoder) (err error) { received, err = codec.DecodeDecimal(d); return err },
		})
	}); err != nil {
		return err
	}

	t, err := h.Checkout.ProcessPayment(r.Context(), checkout.PaymentRequest{
		TicketID:       r.PathValue("id"),
		Method:         ticket.PaymentMethod(method),
		AmountReceived: received,
		Operator:       operatorFrom(r.Context()).Username,
	})
	if err != nil {
		return err
	}
	writeTicket(w, http.StatusOK, *t)
	return nil
}

func (h *Handler) cancelTicket(w http.ResponseWriter, r *http.Request) error {
	t, err := h.Checkout.CancelTicket(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeTicket(w, http.StatusOK, *t)
	return nil
}

func writeTicket(w http.ResponseWriter, code int, t ticket.Ticket) {
	writeJSON(w, code, func(e *jx.Encoder) { codec.EncodeTicket(e, t) })
}
