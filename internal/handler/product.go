package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	available := false
	if v := q.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(errors.Wrap(err, "available"))
		}
		available = b
	}

	var (
		ps  []product.Product
		err error
	)
	if term := q.Get("q"); term != "" || available {
		ps, err = h.Products.Search(r.Context(), term, available)
	} else {
		ps, err = h.Products.List(r.Context())
	}
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { codec.EncodeProducts(e, ps) })
	return nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	p, err := h.Products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	writeProduct(w, http.StatusOK, *p)
	return nil
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) error {
	var p product.Product
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		p, err = codec.DecodeProduct(d)
		return err
	}); err != nil {
		return err
	}
	created, err := h.Products.Add(r.Context(), p)
	if err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Product added", zap.String("product_id", created.ID), zap.String("sku", created.SKU))
	writeProduct(w, http.StatusCreated, *created)
	return nil
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	var patch product.Patch
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		patch, err = codec.DecodeProductPatch(d)
		return err
	}); err != nil {
		return err
	}
	updated, err := h.Products.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		return err
	}
	writeProduct(w, http.StatusOK, *updated)
	return nil
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if err := h.Products.Remove(r.Context(), id); err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Product removed", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// changeStock applies {size, delta} as a relative change or {size, stock}
// as an absolute count.
func (h *Handler) changeStock(w http.ResponseWriter, r *http.Request) error {
	var (
		size         string
		delta, stock *int
	)
	intPtr := func(dst **int) func(*jx.Decoder) error {
		return func(d *jx.Decoder) error {
			v, err := d.Int()
			*dst = &v
			return err
		}
	}
	if err := decodeBody(w, r, func(d *jx.Decoder) error {
		return decodeFields(d, map[string]func(*jx.Decoder) error{
			"size":  func(d *jx.Decoder) (err error) { size, err = codec.DecodeID(d); return err },
			"delta": intPtr(&delta),
			"stock": intPtr(&stock),
		})
	}); err != nil {
		return err
	}
	if size == "" {
		return badRequest(errors.New("size required"))
	}
	if (delta == nil) == (stock == nil) {
		return badRequest(errors.New("exactly one of delta or stock required"))
	}

	id := r.PathValue("id")
	var (
		p   *product.Product
		err error
	)
	if delta != nil {
		p, err = h.Products.AdjustStock(r.Context(), id, size, *delta)
	} else {
		p, err = h.Products.SetStock(r.Context(), id, size, *stock)
	}
	if err != nil {
		return err
	}
	writeProduct(w, http.StatusOK, *p)
	return nil
}

func writeProduct(w http.ResponseWriter, code int, p product.Product) {
	writeJSON(w, code, func(e *jx.Encoder) { codec.EncodeProduct(e, p) })
}
