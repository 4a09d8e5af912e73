package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const ProviderPaymee = "paymee"

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

type Payment struct {
	ID            int64
	OrderID       string
	Provider      string
	Token         string
	PaymentURL    string
	Amount        decimal.Decimal
	Status        Status
	TransactionID string
	RawResponse   json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Payer identifies the customer to the provider.
type Payer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type CreateRequest struct {
	OrderID string
	Amount  decimal.Decimal
	Note    string
	Payer   Payer
}

type CreateResponse struct {
	Token       string
	PaymentURL  string
	RawResponse json.RawMessage
}

type CheckResult struct {
	Token         string
	Paid          bool
	OrderID       string
	TransactionID string
	Amount        decimal.Decimal
}

// WebhookNotification is the provider's asynchronous payment callback.
type WebhookNotification struct {
	Token         string
	CheckSum      string
	PaymentStatus bool
	OrderID       string
	TransactionID string
	Amount        decimal.Decimal
	Payload       json.RawMessage
}

type InitiateResult struct {
	Token      string `json:"token"`
	PaymentURL string `json:"paymentUrl"`
}

type ConfirmResult struct {
	OrderID       string `json:"orderId"`
	Status        Status `json:"status"`
	AlreadyPaid   bool   `json:"alreadyPaid"`
	TransactionID string `json:"transactionId,omitempty"`
}
