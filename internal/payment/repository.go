package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"boutique-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	GetPaymentByToken(ctx context.Context, token string) (*Payment, error)
	MarkPaymentPaid(ctx context.Context, token, transactionID string) error
	MarkPaymentFailed(ctx context.Context, token string) error

	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// jsonArg sends raw JSON as text so lib/pq does not encode it as bytea.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SavePayment"),
		zap.String("order_id", p.OrderID),
	)

	if p.Provider == "" {
		p.Provider = ProviderPaymee
	}
	if p.Status == "" {
		p.Status = StatusPending
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (
			order_id,
			provider,
			token,
			payment_url,
			amount,
			status,
			raw_response
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		p.OrderID, p.Provider, p.Token, p.PaymentURL, p.Amount, p.Status, jsonArg(p.RawResponse),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		log.Error("db: failed to insert payment", zap.Error(err))
		return err
	}
	return nil
}

// GetPaymentByToken returns nil, nil when the token is unknown.
func (r *repository) GetPaymentByToken(ctx context.Context, token string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, token, payment_url, amount, status,
		       COALESCE(transaction_id, ''), created_at, updated_at
		FROM payments WHERE token = $1
	`, token)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.Token, &p.PaymentURL, &p.Amount,
		&p.Status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) MarkPaymentPaid(ctx context.Context, token, transactionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, transaction_id = NULLIF($2, ''), updated_at = now()
		WHERE token = $3 AND status <> $1
	`, StatusPaid, transactionID, token)
	return err
}

// MarkPaymentFailed never downgrades a paid payment.
func (r *repository) MarkPaymentFailed(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, updated_at = now()
		WHERE token = $2 AND status = $3
	`, StatusFailed, token, StatusPending)
	return err
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		externalID,
		signatureValid,
		jsonArg(payload),
	).Scan(&id)

	if err != nil {
		// conflict: already delivered
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
