package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kicks-pos/internal/domain/auth"
	"github.com/xenking/kicks-pos/internal/domain/checkout"
	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/report"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
)

const maxBodySize = 1 << 20

// apiFunc is an endpoint that reports failures as errors.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// serve renders the error of fn, if any, as an API error response.
func (h *Handler) serve(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

// requestError is a malformed request: bad JSON, a missing field or an
// unparsable query parameter.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

// statusOf maps a domain error to its HTTP status.
func statusOf(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrSizeNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, ticket.ErrNotFound),
		errors.Is(err, checkout.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, ticket.ErrNotPending),
		errors.Is(err, product.ErrDuplicateSKU):
		return http.StatusConflict
	case checkout.IsValidation(err),
		errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, customer.ErrInvalidCustomer),
		errors.Is(err, ticket.ErrEmptyItems),
		errors.Is(err, report.ErrUnknownRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		msg = "internal error"
	}
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="pos"`)
	}
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// decodeBody runs decode over the request body. Every failure, including
// an empty body, is a bad request.
func decodeBody(w http.ResponseWriter, r *http.Request, decode func(d *jx.Decoder) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return badRequest(errors.Wrap(err, "read body"))
	}
	if err := decode(jx.DecodeBytes(data)); err != nil {
		return badRequest(errors.Wrap(err, "decode body"))
	}
	return nil
}

// decodeFields decodes a flat JSON object, handing each known key to its
// decoder and skipping the rest.
func decodeFields(d *jx.Decoder, fields map[string]func(d *jx.Decoder) error) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		fn, ok := fields[key]
		if !ok {
			return d.Skip()
		}
		if err := fn(d); err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
}
