package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/report"
)

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) error {
	rng, err := report.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		return err
	}
	s, err := h.Reports.Summary(r.Context(), rng)
	if err != nil {
		return errors.Wrap(err, "summary")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { codec.EncodeSummary(e, s) })
	return nil
}

func (h *Handler) reportCustomers(w http.ResponseWriter, r *http.Request) error {
	o, err := h.Reports.Customers(r.Context())
	if err != nil {
		return errors.Wrap(err, "customer overview")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { codec.EncodeCustomerOverview(e, o) })
	return nil
}
