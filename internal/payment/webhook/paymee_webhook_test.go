package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"boutique-be/internal/auth"
	"boutique-be/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Initiate(ctx context.Context, orderID string, requester auth.Principal) (*payment.InitiateResult, error) {
	args := m.Called(ctx, orderID, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.InitiateResult), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, token, orderID string, requester auth.Principal) (*payment.ConfirmResult, error) {
	args := m.Called(ctx, token, orderID, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ConfirmResult), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, n payment.WebhookNotification) error {
	return m.Called(ctx, n).Error(0)
}

func TestHandler_PaymeeWebhookHandler(t *testing.T) {
	form := url.Values{
		"token":          {"tok-1"},
		"check_sum":      {"abc"},
		"payment_status": {"1"},
		"order_id":       {"ord-1"},
		"transaction_id": {"5340"},
		"amount":         {"129.9"},
	}

	t.Run("FormSuccess", func(t *testing.T) {
		svc := new(MockPaymentService)
		h := NewWebhookHandler(svc)

		svc.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(n payment.WebhookNotification) bool {
			return n.Token == "tok-1" && n.CheckSum == "abc" && n.PaymentStatus &&
				n.OrderID == "ord-1" && n.TransactionID == "5340" &&
				n.Amount.Equal(decimal.RequireFromString("129.9")) &&
				strings.Contains(string(n.Payload), `"token":"tok-1"`)
		})).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/payments/paymee/webhook", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		h.PaymeeWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("JSONSuccess", func(t *testing.T) {
		svc := new(MockPaymentService)
		h := NewWebhookHandler(svc)

		svc.On("HandleWebhook", mock.Anything, mock.MatchedBy(func(n payment.WebhookNotification) bool {
			return n.Token == "tok-2" && !n.PaymentStatus && n.OrderID == "ord-2" && n.TransactionID == "77"
		})).Return(nil)

		body := `{"token":"tok-2","check_sum":"x","payment_status":false,"order_id":"ord-2","transaction_id":77}`
		req := httptest.NewRequest(http.MethodPost, "/payments/paymee/webhook", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		h.PaymeeWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		svc := new(MockPaymentService)
		h := NewWebhookHandler(svc)
		svc.On("HandleWebhook", mock.Anything, mock.Anything).Return(payment.ErrInvalidSignature)

		req := httptest.NewRequest(http.MethodPost, "/payments/paymee/webhook", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		h.PaymeeWebhookHandler(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), payment.ErrInvalidSignature.Message)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		svc := new(MockPaymentService)
		h := NewWebhookHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/payments/paymee/webhook", bytes.NewBufferString(`{bad`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		h.PaymeeWebhookHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything)
	})
}
