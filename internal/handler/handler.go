// Package handler exposes the point-of-sale workflow over a JSON HTTP API.
package handler

import (
	"net/http"
	"time"

	authtoken "github.com/xenking/kicks-pos/internal/auth"
	"github.com/xenking/kicks-pos/internal/domain/auth"
	"github.com/xenking/kicks-pos/internal/domain/checkout"
	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
	"github.com/xenking/kicks-pos/internal/domain/report"
	"github.com/xenking/kicks-pos/internal/domain/ticket"
	"github.com/xenking/kicks-pos/pkg/httpmiddleware"
)

// Tokens issues and verifies operator session tokens.
type Tokens interface {
	Issue(op auth.Operator) (string, time.Time, error)
	Verify(token string) (*authtoken.Claims, error)
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Products  product.Repository
	Customers customer.Repository
	Tickets   ticket.Repository
	Checkout  *checkout.Service
	Sessions  *checkout.Sessions
	Reports   *report.Service
	Directory *auth.Directory
	Tokens    Tokens
	// LoginLimit guards POST /api/login. Nil leaves it unlimited.
	LoginLimit httpmiddleware.Middleware
}

// Handler serves the /api routes.
type Handler struct {
	Deps
	mux *http.ServeMux
}

// New creates a Handler and registers its routes.
func New(deps Deps) *Handler {
	h := &Handler{Deps: deps, mux: http.NewServeMux()}
	h.routes()
	return h
}

func (h *Handler) routes() {
	login := http.Handler(h.serve(h.login))
	if h.LoginLimit != nil {
		login = h.LoginLimit(login)
	}
	h.mux.Handle("POST /api/login", login)
	h.mux.Handle("POST /api/logout", h.operator(h.logout))

	h.mux.Handle("GET /api/products", h.operator(h.listProducts))
	h.mux.Handle("POST /api/products", h.admin(h.addProduct))
	h.mux.Handle("GET /api/products/{id}", h.operator(h.getProduct))
	h.mux.Handle("PATCH /api/products/{id}", h.admin(h.updateProduct))
	h.mux.Handle("DELETE /api/products/{id}", h.admin(h.removeProduct))
	h.mux.Handle("POST /api/products/{id}/stock", h.admin(h.changeStock))

	h.mux.Handle("GET /api/customers", h.operator(h.listCustomers))
	h.mux.Handle("POST /api/customers", h.operator(h.addCustomer))
	h.mux.Handle("GET /api/customers/{id}", h.operator(h.getCustomer))
	h.mux.Handle("PATCH /api/customers/{id}", h.operator(h.updateCustomer))
	h.mux.Handle("DELETE /api/customers/{id}", h.operator(h.removeCustomer))

	h.mux.Handle("GET /api/cart", h.operator(h.getCart))
	h.mux.Handle("POST /api/cart/items", h.operator(h.addCartItem))
	h.mux.Handle("PATCH /api/cart/items", h.operator(h.changeCartItem))
	h.mux.Handle("DELETE /api/cart/items", h.operator(h.removeCartItem))
	h.mux.Handle("PUT /api/cart/customer", h.operator(h.selectCustomer))
	h.mux.Handle("DELETE /api/cart/customer", h.operator(h.clearCustomer))
	h.mux.Handle("POST /api/cart/ticket", h.operator(h.generateTicket))

	h.mux.Handle("GET /api/tickets", h.operator(h.listTickets))
	h.mux.Handle("GET /api/tickets/{id}", h.operator(h.getTicket))
	h.mux.Handle("POST /api/tickets/{id}/pay", h.operator(h.payTicket))
	h.mux.Handle("POST /api/tickets/{id}/cancel", h.operator(h.cancelTicket))

	h.mux.Handle("GET /api/reports/summary", h.operator(h.reportSummary))
	h.mux.Handle("GET /api/reports/customers", h.operator(h.reportCustomers))
}

// ServeHTTP dispatches to the registered routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}
