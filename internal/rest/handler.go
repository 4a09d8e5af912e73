package rest

import (
	"net/http"
	"time"

	"boutique-be/internal/apperr"
	"boutique-be/internal/auth"
	"boutique-be/internal/cart"
	"boutique-be/internal/metrics"
	"boutique-be/internal/order"
	"boutique-be/internal/payment"
	"boutique-be/internal/product"
	"boutique-be/internal/stats"
	"boutique-be/internal/user"
)

type Deps struct {
	Products product.Service
	Users    user.Service
	Carts    cart.Service
	Orders   order.Service
	Payments payment.Service
	Stats    stats.Service
	Counters *metrics.Payments

	// Production hides provider details and marks the cookie Secure.
	Production bool
}

// Handler serves the JSON API on top of the domain services.
type Handler struct {
	products   product.Service
	users      user.Service
	carts      cart.Service
	orders     order.Service
	payments   payment.Service
	stats      stats.Service
	counters   *metrics.Payments
	production bool
	startedAt  time.Time
}

func NewHandler(d Deps) *Handler {
	counters := d.Counters
	if counters == nil {
		counters = &metrics.Payments{}
	}
	return &Handler{
		products:   d.Products,
		users:      d.Users,
		carts:      d.Carts,
		orders:     d.Orders,
		payments:   d.Payments,
		stats:      d.Stats,
		counters:   counters,
		production: d.Production,
		startedAt:  time.Now(),
	}
}

type principalHandler func(w http.ResponseWriter, r *http.Request, p auth.Principal)

// authed passes the caller explicitly; anonymous requests get 401.
func (h *Handler) authed(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			h.writeError(w, r, apperr.ErrUnauthenticated)
			return
		}
		next(w, r, p)
	}
}

func (h *Handler) adminOnly(next principalHandler) http.HandlerFunc {
	return h.authed(func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if !p.IsAdmin() {
			h.writeError(w, r, apperr.ErrForbidden)
			return
		}
		next(w, r, p)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "OK",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"metrics": h.counters.Snapshot(),
	})
}
