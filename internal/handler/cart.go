package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/checkout"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

// withCart runs fn on the operator's cart and responds with the cart as fn
// left it.
func (h *Handler) withCart(w http.ResponseWriter, r *http.Request, fn func(*checkout.Cart) error) error {
	op := operatorFrom(r.Context())
	var body []byte
	err := h.Sessions.With(op.Username, func(cart *checkout.Cart) error {
		if err := fn(cart); err != nil {
			return err
		}
		var e jx.Encoder
		encodeCart(&e, cart)
		body = e.Bytes()
		return nil
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { e.Raw(body) })
	return nil
}

func encodeCart(e *jx.Encoder, cart *checkout.Cart) {
	items := cart.Items()
	units := 0
	for _, it := range items {
		units += it.Quantity
	}
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { codec.EncodeItems(e, items) })
		e.Field("units", func(e *jx.Encoder) { e.Int(units) })
		e.Field("total", func(e *jx.Encoder) { codec.Money(e, cart.Total()) })
		e.Field("customer_id", func(e *jx.Encoder) {
			if id := cart.CustomerID(); id != "" {
				e.Str(id)
				return
			}
			e.Null()
		})
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) error {
	return h.withCart(w, r, func(*checkout.Cart) error { return nil })
}

type lineRequest struct {
	key   checkout.LineKey
	delta int
}

func decodeLine(w http.ResponseWriter, r *http.Request, withDelta bool) (lineRequest, error) {
	var req lineRequest
	fields := map[string]func(*jx.Decoder) error{
		"product_id": func(d *jx.Decoder) (err error) { req.key.ProductID, err = codec.DecodeID(d); return err },
		"size":       func(d *jx.Decoder) (err error) { req.key.Size, err = codec.DecodeID(d); return err },
	}
	if withDelta {
		fields["delta"] = func(d *jx.Decoder) (err error) { req.delta, err = d.Int(); return err }
	}
	if err := decodeBody(w, r, func(d *jx.Decoder) error { return decodeFields(d, fields) }); err != nil {
		return req, err
	}
	if req.key.ProductID == "" || req.key.Size == "" {
		return req, badRequest(errors.New("product_id and size required"))
	}
	return req, nil
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeLine(w, r, false)
	if err != nil {
		return err
	}
	return h.withCart(w, r, func(cart *checkout.Cart) error {
		return h.Checkout.AddToCart(r.Context(), cart, req.key.ProductID, req.key.Size)
	})
}

func (h *Handler) changeCartItem(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeLine(w, r, true)
	if err != nil {
		return err
	}
	return h.withCart(w, r, func(cart *checkout.Cart) error {
		return h.Checkout.ChangeQuantity(r.Context(), cart, req.key, req.delta)
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	key := checkout.LineKey{ProductID: q.Get("product_id"), Size: q.Get("size")}
	if key.ProductID == "" || key.Size == "" {
		return badRequest(errors.New("product_id and size required"))
	}
	return h.withCart(w, r, func(cart *checkout.Cart) error {
		return cart.Remove(key)
	})
}

func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) error {
	var id string
	if err := decodeBody(w, r, func(d *jx.Decoder) error {
		return decodeFields(d, map[string]func(*jx.Decoder) error{
			"customer_id": func(d *jx.Decoder) (err error) { id, err = codec.DecodeID(d); return err },
		})
	}); err != nil {
		return err
	}
	if id == "" {
		return badRequest(errors.New("customer_id required"))
	}
	return h.withCart(w, r, func(cart *checkout.Cart) error {
		return h.Checkout.SelectCustomer(r.Context(), cart, id)
	})
}

func (h *Handler) clearCustomer(w http.ResponseWriter, r *http.Request) error {
	return h.withCart(w, r, func(cart *checkout.Cart) error {
		return h.Checkout.SelectCustomer(r.Context(), cart, "")
	})
}

// generateTicket turns the operator's cart into a PENDING ticket.
func (h *Handler) generateTicket(w http.ResponseWriter, r *http.Request) error {
	op := operatorFrom(r.Context())
	var t *ticket.Ticket
	if err := h.Sessions.With(op.Username, func(cart *checkout.Cart) (err error) {
		t, err = h.Checkout.GenerateTicket(r.Context(), cart, op.Username)
		return err
	}); err != nil {
		return err
	}
	writeTicket(w, http.StatusCreated, *t)
	return nil
}
