package webhook

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"boutique-be/internal/apperr"
	"boutique-be/internal/logger"
	"boutique-be/internal/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

// Handler receives Paymee payment notifications.
type Handler struct {
	PaymentSvc payment.Service
}

func NewWebhookHandler(paymentSvc payment.Service) *Handler {
	return &Handler{PaymentSvc: paymentSvc}
}

// PaymeeWebhookHandler accepts the form-encoded or JSON notification.
// Redelivered notifications answer 200 without effect.
func (h *Handler) PaymeeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("layer", "webhook"))

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)

	n, err := parseNotification(r)
	if err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": apperr.ErrInvalidBody.Message})
		return
	}

	log.Info("paymee webhook received",
		zap.String("token", n.Token),
		zap.String("order_id", n.OrderID),
		zap.Bool("paid", n.PaymentStatus),
	)

	if err := h.PaymentSvc.HandleWebhook(r.Context(), n); err != nil {
		msg := apperr.ErrInternal.Message
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
			msg = ae.Message
		}
		writeJSON(w, apperr.HTTPStatus(apperr.KindOf(err)), map[string]string{"message": msg})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// webhookForm mirrors the fields Paymee posts.
type webhookForm struct {
	Token         string          `json:"token"`
	CheckSum      string          `json:"check_sum"`
	PaymentStatus json.RawMessage `json:"payment_status"`
	OrderID       json.RawMessage `json:"order_id"`
	TransactionID json.RawMessage `json:"transaction_id"`
	Amount        json.RawMessage `json:"amount"`
}

func parseNotification(r *http.Request) (payment.WebhookNotification, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return parseJSON(r)
	}
	return parseForm(r)
}

func parseForm(r *http.Request) (payment.WebhookNotification, error) {
	if err := r.ParseForm(); err != nil {
		return payment.WebhookNotification{}, err
	}

	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return payment.WebhookNotification{}, err
	}

	n := payment.WebhookNotification{
		Token:         r.PostForm.Get("token"),
		CheckSum:      r.PostForm.Get("check_sum"),
		PaymentStatus: parseBool(r.PostForm.Get("payment_status")),
		OrderID:       r.PostForm.Get("order_id"),
		TransactionID: r.PostForm.Get("transaction_id"),
		Payload:       payload,
	}
	if amt, err := decimal.NewFromString(r.PostForm.Get("amount")); err == nil {
		n.Amount = amt
	}
	return n, nil
}

func parseJSON(r *http.Request) (payment.WebhookNotification, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return payment.WebhookNotification{}, err
	}

	var f webhookForm
	if err := json.Unmarshal(raw, &f); err != nil {
		return payment.WebhookNotification{}, err
	}

	n := payment.WebhookNotification{
		Token:         f.Token,
		CheckSum:      f.CheckSum,
		PaymentStatus: parseBool(scalar(f.PaymentStatus)),
		OrderID:       scalar(f.OrderID),
		TransactionID: scalar(f.TransactionID),
		Payload:       raw,
	}
	if amt, err := decimal.NewFromString(scalar(f.Amount)); err == nil {
		n.Amount = amt
	}
	return n, nil
}

// scalar renders a JSON string, number or bool as plain text.
func scalar(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
