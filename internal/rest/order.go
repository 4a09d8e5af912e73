package rest

import (
	"net/http"

	"boutique-be/internal/auth"
	"boutique-be/internal/order"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in order.CreateOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), p.UserID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	orders, err := h.orders.GetUserOrders(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	o, err := h.orders.GetOrderByID(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request, _ auth.Principal) {
	orders, err := h.orders.GetAllOrders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, _ auth.Principal) {
	var in updateStatusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), in.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request, _ auth.Principal) {
	if err := h.orders.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Commande supprimée"})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, _ auth.Principal) {
	d, err := h.stats.Dashboard(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
