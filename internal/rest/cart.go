package rest

import (
	"net/http"

	"boutique-be/internal/auth"
	"boutique-be/internal/cart"
)

type setCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	c, err := h.carts.GetCart(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) SetCartItem(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in setCartItemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.carts.SetItemQuantity(r.Context(), cart.SetItemParams{
		UserID:    p.UserID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	c, err := h.carts.RemoveItem(r.Context(), p.UserID, r.PathValue("productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	c, err := h.carts.ClearCart(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
