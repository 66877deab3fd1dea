package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/customer"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) error {
	var (
		cs  []customer.Customer
		err error
	)
	if term := r.URL.Query().Get("q"); term != "" {
		cs, err = h.Customers.Search(r.Context(), term)
	} else {
		cs, err = h.Customers.List(r.Context())
	}
	if err != nil {
		return errors.Wrap(err, "list customers")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { codec.EncodeCustomers(e, cs) })
	return nil
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) error {
	c, err := h.Customers.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeCustomer(w, http.StatusOK, *c)
	return nil
}

// addCustomer registers a customer. Only the contact fields of the body
// are used; the store assigns the id and zeroes the stats.
func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) error {
	var patch customer.Patch
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		patch, err = codec.DecodeCustomerPatch(d)
		return err
	}); err != nil {
		return err
	}
	created, err := h.Customers.Add(r.Context(), patch.Apply(customer.Customer{}))
	if err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Customer added", zap.String("customer_id", created.ID))
	writeCustomer(w, http.StatusCreated, *created)
	return nil
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) error {
	var patch customer.Patch
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		patch, err = codec.DecodeCustomerPatch(d)
		return err
	}); err != nil {
		return err
	}
	updated, err := h.Customers.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		return err
	}
	writeCustomer(w, http.StatusOK, *updated)
	return nil
}

func (h *Handler) removeCustomer(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if err := h.Customers.Remove(r.Context(), id); err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Customer removed", zap.String("customer_id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func writeCustomer(w http.ResponseWriter, code int, c customer.Customer) {
	writeJSON(w, code, func(e *jx.Encoder) { codec.EncodeCustomer(e, c) })
}
