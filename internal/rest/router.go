package rest

import "net/http"

// NewRouter registers the API routes. webhook serves the provider callback.
func NewRouter(h *Handler, webhook http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/me", h.authed(h.Me))

	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("GET /products/{id}", h.GetProduct)

	mux.HandleFunc("GET /cart", h.authed(h.GetCart))
	mux.HandleFunc("POST /cart", h.authed(h.SetCartItem))
	mux.HandleFunc("DELETE /cart/{productId}", h.authed(h.RemoveCartItem))
	mux.HandleFunc("DELETE /cart", h.authed(h.ClearCart))

	mux.HandleFunc("POST /orders", h.authed(h.CreateOrder))
	mux.HandleFunc("GET /orders/myorders", h.authed(h.MyOrders))
	mux.HandleFunc("GET /orders/stats", h.adminOnly(h.Dashboard))
	mux.HandleFunc("GET /orders/{id}", h.authed(h.GetOrder))
	mux.HandleFunc("GET /orders", h.adminOnly(h.ListOrders))
	mux.HandleFunc("PUT /orders/{id}/status", h.adminOnly(h.UpdateOrderStatus))
	mux.HandleFunc("DELETE /orders/{id}", h.adminOnly(h.DeleteOrder))

	mux.HandleFunc("POST /payments/paymee", h.authed(h.InitiatePayment))
	mux.HandleFunc("GET /payments/verify/{token}", h.authed(h.VerifyPayment))
	if webhook != nil {
		mux.HandleFunc("POST /payments/paymee/webhook", webhook)
	}

	return mux
}
