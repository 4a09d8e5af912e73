package rest

import (
	"net/http"

	"boutique-be/internal/auth"
)

type initiatePaymentRequest struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	var in initiatePaymentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.payments.Initiate(r.Context(), in.OrderID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	res, err := h.payments.Confirm(r.Context(), r.PathValue("token"), r.URL.Query().Get("orderId"), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
