package payment

import "context"

// Gateway is the external payment provider.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	CheckPayment(ctx context.Context, token string) (*CheckResult, error)
	VerifyWebhook(n WebhookNotification) error
}
